package labels_test

import (
	"errors"
	"path/filepath"
	"testing"

	"clipsort/internal/config"
	"clipsort/internal/labels"
)

func TestBuildResolvesDestinations(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sorted")
	defs := []config.Label{
		{Key: "1", Name: "Not Sure", Dest: "Not Sure"},
		{Key: "g", Name: "Goal", Dest: "/archive/goals"},
		{Key: "2", Dest: "near_miss"},
		{Key: "3", Name: "Crowd"},
	}

	registry, err := labels.Build(defs, root)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if registry.Len() != 4 {
		t.Fatalf("expected 4 rules, got %d", registry.Len())
	}

	rules := registry.Rules()
	if rules[0].Dest != filepath.Join(root, "Not Sure") {
		t.Fatalf("unexpected relative dest resolution: %q", rules[0].Dest)
	}
	if rules[1].Dest != "/archive/goals" {
		t.Fatalf("expected absolute dest preserved, got %q", rules[1].Dest)
	}
	if rules[2].Name != "Near Miss" {
		t.Fatalf("expected derived display name, got %q", rules[2].Name)
	}
	if rules[3].Dest != filepath.Join(root, "Crowd") {
		t.Fatalf("expected dest derived from name, got %q", rules[3].Dest)
	}
}

func TestBuildKeepsDeclarationOrder(t *testing.T) {
	defs := []config.Label{
		{Key: "3", Dest: "c"},
		{Key: "1", Dest: "a"},
		{Key: "2", Dest: "b"},
	}
	registry, err := labels.Build(defs, t.TempDir())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	var keys []string
	for _, rule := range registry.Rules() {
		keys = append(keys, rule.Key)
	}
	want := []string{"3", "1", "2"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("rule order = %v, want %v", keys, want)
		}
	}
}

func TestBuildRejectsDuplicateKeys(t *testing.T) {
	defs := []config.Label{
		{Key: "1", Dest: "a"},
		{Key: "1", Dest: "b"},
	}
	_, err := labels.Build(defs, t.TempDir())
	if !errors.Is(err, labels.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestBuildRejectsCaseCollidingKeys(t *testing.T) {
	defs := []config.Label{
		{Key: "g", Dest: "a"},
		{Key: "G", Dest: "b"},
	}
	if _, err := labels.Build(defs, t.TempDir()); !errors.Is(err, labels.ErrConfig) {
		t.Fatalf("expected ErrConfig for case-colliding keys, got %v", err)
	}
}

func TestBuildRejectsReservedKeys(t *testing.T) {
	for _, key := range []string{"s", "S", "q"} {
		_, err := labels.Build([]config.Label{{Key: key, Dest: "a"}}, t.TempDir())
		if !errors.Is(err, labels.ErrConfig) {
			t.Fatalf("expected ErrConfig for reserved key %q, got %v", key, err)
		}
	}
}

func TestBuildRejectsInvalidRules(t *testing.T) {
	cases := []struct {
		name string
		defs []config.Label
	}{
		{name: "empty registry", defs: nil},
		{name: "empty key", defs: []config.Label{{Key: "", Dest: "a"}}},
		{name: "multi character key", defs: []config.Label{{Key: "ab", Dest: "a"}}},
		{name: "missing name and dest", defs: []config.Label{{Key: "1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := labels.Build(tc.defs, t.TempDir()); !errors.Is(err, labels.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestResolveMatchesCaseInsensitively(t *testing.T) {
	registry, err := labels.Build([]config.Label{{Key: "g", Name: "Goal", Dest: "goals"}}, t.TempDir())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	rule := registry.Resolve("G")
	if rule == nil {
		t.Fatal("expected uppercase lookup to match")
	}
	if rule.Name != "Goal" {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if registry.Resolve("x") != nil {
		t.Fatal("expected unknown key to resolve to nil")
	}
}
