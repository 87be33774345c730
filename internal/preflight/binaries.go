package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"clipsort/internal/config"
)

// Requirement defines an external binary clipsort relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a required binary.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// SystemRequirements lists the external binaries the configured session
// needs. The player entry drops out when previewing is disabled.
func SystemRequirements(cfg *config.Config) []Requirement {
	var requirements []Requirement
	if cfg.Player.Enabled {
		requirements = append(requirements, Requirement{
			Name:        "Player",
			Command:     cfg.PlayerBinary(),
			Description: "Plays clips during the sorting session",
		})
	}
	requirements = append(requirements, Requirement{
		Name:        "FFprobe",
		Command:     cfg.FFprobeBinary(),
		Description: "Validates clips before they are offered",
		Optional:    true,
	})
	return requirements
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(command); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
