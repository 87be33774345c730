package labels

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipsort/internal/config"
)

// ErrConfig marks label rule problems that make a session impossible to
// start.
var ErrConfig = errors.New("label config error")

// reservedKeys are claimed by session controls and cannot label clips.
var reservedKeys = map[string]string{
	"s": "skip",
	"q": "quit",
}

// Rule maps one hotkey to a destination directory. Dest is absolute once the
// rule went through Build.
type Rule struct {
	Key  string
	Name string
	Dest string
}

// Registry holds the ordered label rules of one session.
type Registry struct {
	rules []Rule
	byKey map[string]int
}

// Build resolves config label definitions into a validated registry.
// Relative destinations are joined to sortedRoot; keys are matched
// case-insensitively.
func Build(defs []config.Label, sortedRoot string) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no label rules configured", ErrConfig)
	}
	if strings.TrimSpace(sortedRoot) == "" {
		return nil, fmt.Errorf("%w: sorted root is empty", ErrConfig)
	}

	registry := &Registry{
		rules: make([]Rule, 0, len(defs)),
		byKey: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		rule, err := buildRule(def, sortedRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %w", ErrConfig, i+1, err)
		}
		if _, exists := registry.byKey[rule.Key]; exists {
			return nil, fmt.Errorf("%w: rule %d: duplicate key %q", ErrConfig, i+1, rule.Key)
		}
		registry.byKey[rule.Key] = len(registry.rules)
		registry.rules = append(registry.rules, rule)
	}
	return registry, nil
}

func buildRule(def config.Label, sortedRoot string) (Rule, error) {
	key := strings.ToLower(strings.TrimSpace(def.Key))
	if key == "" {
		return Rule{}, errors.New("key is empty")
	}
	if utf8.RuneCountInString(key) != 1 {
		return Rule{}, fmt.Errorf("key %q must be a single character", def.Key)
	}
	if r, _ := utf8.DecodeRuneInString(key); !unicode.IsGraphic(r) || unicode.IsSpace(r) {
		return Rule{}, fmt.Errorf("key %q is not a printable character", def.Key)
	}
	if control, reserved := reservedKeys[key]; reserved {
		return Rule{}, fmt.Errorf("key %q is reserved for %s", key, control)
	}

	name := strings.TrimSpace(def.Name)
	dest := strings.TrimSpace(def.Dest)
	if dest == "" {
		dest = name
	}
	if dest == "" {
		return Rule{}, fmt.Errorf("key %q has neither name nor dest", key)
	}
	if name == "" {
		name = displayName(dest)
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(sortedRoot, dest)
	}
	return Rule{Key: key, Name: name, Dest: filepath.Clean(dest)}, nil
}

// Resolve returns the rule bound to key, or nil when the key labels nothing.
func (r *Registry) Resolve(key string) *Rule {
	if r == nil {
		return nil
	}
	idx, ok := r.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil
	}
	rule := r.rules[idx]
	return &rule
}

// Rules returns the registry content in declaration order.
func (r *Registry) Rules() []Rule {
	if r == nil {
		return nil
	}
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len reports the number of rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// displayName turns a destination like "not_sure" into "Not Sure".
func displayName(dest string) string {
	base := filepath.Base(dest)
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return base
	}
	return cases.Title(language.Und).String(name)
}
