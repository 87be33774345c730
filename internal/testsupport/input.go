package testsupport

import "clipsort/internal/input"

// ScriptedInput replays a fixed key sequence and then reports closure,
// standing in for a terminal in session tests.
type ScriptedInput struct {
	keys chan input.Key
}

// NewScript builds a ScriptedInput that delivers the given keys in order.
func NewScript(keys ...input.Key) *ScriptedInput {
	ch := make(chan input.Key, len(keys))
	for _, key := range keys {
		ch <- key
	}
	close(ch)
	return &ScriptedInput{keys: ch}
}

// Keys implements input.Source.
func (s *ScriptedInput) Keys() <-chan input.Key { return s.keys }

// Close implements input.Source.
func (s *ScriptedInput) Close() error { return nil }

// Runes converts each rune into a plain key press.
func Runes(runes string) []input.Key {
	out := make([]input.Key, 0, len(runes))
	for _, r := range runes {
		out = append(out, input.Key{Kind: input.KindRune, Rune: r})
	}
	return out
}

// Key builds a named key press.
func Key(kind input.Kind) input.Key {
	return input.Key{Kind: kind}
}
