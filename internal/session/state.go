package session

// State represents the lifecycle of a sorting session.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	// StateAwaitingNextClip holds the final frame of a finished clip until
	// the operator decides what to do with it.
	StateAwaitingNextClip State = "awaiting_next_clip"
	StateExhausted        State = "exhausted"
)

// speedSteps is the playback speed cycle. Sessions enter it at normal
// speed and tab wraps past the top back to the slowest step.
var speedSteps = []float64{0.5, 1.0, 1.5, 2.0, 4.0, 6.0, 8.0, 10.0}

const normalSpeedIndex = 1
