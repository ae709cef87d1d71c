package variant

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mirage/internal/item"
)

func seededItem(prompt string, slots map[string]any) item.CanonicalItem {
	return item.CanonicalItem{
		ID:       "A-0001",
		Track:    item.TrackNoisyPerception,
		Prompt:   prompt,
		Variants: item.VariantSlots{Seeded: true, Slots: slots},
	}
}

// TestGenerateDeterministic verifies a fixed (item, seed) pair reproduces
// identical output across invocations and engine instances.
func TestGenerateDeterministic(t *testing.T) {
	it := seededItem("{{name}} said so.", map[string]any{
		"name": []string{"Alex", "Sam"},
	})

	first, firstSubs := NewEngine(nil).Generate(it, 7)
	second, secondSubs := NewEngine(nil).Generate(it, 7)
	if first != second {
		t.Fatalf("same seed produced different prompts: %q vs %q", first, second)
	}
	if !reflect.DeepEqual(firstSubs, secondSubs) {
		t.Fatalf("same seed produced different substitutions: %v vs %v", firstSubs, secondSubs)
	}
	if firstSubs["name"] != "Alex" && firstSubs["name"] != "Sam" {
		t.Fatalf("selected value not in candidate list: %q", firstSubs["name"])
	}
	if strings.Contains(first, "{{") {
		t.Fatalf("unresolved marker in %q", first)
	}
}

// TestGenerateNoOpWhenNotSeeded verifies disabled variation returns the
// original prompt and an empty substitution map.
func TestGenerateNoOpWhenNotSeeded(t *testing.T) {
	it := seededItem("{{name}} said so.", map[string]any{"name": []string{"Alex"}})
	it.Variants.Seeded = false

	prompt, subs := NewEngine(map[string]any{"name": []string{"Sam"}}).Generate(it, 7)
	if prompt != it.Prompt {
		t.Fatalf("expected original prompt, got %q", prompt)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no substitutions, got %v", subs)
	}
}

// TestGenerateNoOpWhenCatalogsEmpty verifies an empty merged catalog is a no-op.
func TestGenerateNoOpWhenCatalogsEmpty(t *testing.T) {
	it := seededItem("{{name}} said so.", nil)
	prompt, subs := NewEngine(nil).Generate(it, 7)
	if prompt != it.Prompt || len(subs) != 0 {
		t.Fatalf("expected no-op, got %q with %v", prompt, subs)
	}
}

// TestGenerateItemSlotsOverrideGlobal verifies item-local slots take
// precedence over global slots of the same name.
func TestGenerateItemSlotsOverrideGlobal(t *testing.T) {
	it := seededItem("{{speaker}} was calling.", map[string]any{
		"speaker": []string{"my aunt"},
	})
	engine := NewEngine(map[string]any{
		"speaker": []string{"my dad", "my neighbor"},
	})
	prompt, subs := engine.Generate(it, 3)
	if subs["speaker"] != "my aunt" {
		t.Fatalf("expected item-local value, got %q", subs["speaker"])
	}
	if prompt != "my aunt was calling." {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

// TestGenerateGlobalSlotsApply verifies global catalog slots resolve
// markers that the item does not define locally.
func TestGenerateGlobalSlotsApply(t *testing.T) {
	it := seededItem("I heard the {{noise_source}} running.", nil)
	engine := NewEngine(map[string]any{
		"noise_source": []string{"washing machine"},
	})
	prompt, subs := engine.Generate(it, 1)
	if subs["noise_source"] != "washing machine" {
		t.Fatalf("unexpected substitution: %v", subs)
	}
	if prompt != "I heard the washing machine running." {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

// TestGenerateNormalizesNestedValues verifies dict and list candidates
// bottom out at a string leaf.
func TestGenerateNormalizesNestedValues(t *testing.T) {
	it := seededItem("{{a}}|{{b}}|{{c}}", map[string]any{
		"a": []any{map[string]any{"first": "leaf"}},
		"b": []any{[]any{[]any{"deep"}}},
		"c": []any{map[string]any{}},
	})
	_, subs := NewEngine(nil).Generate(it, 11)
	if subs["a"] != "leaf" {
		t.Fatalf("expected dict first value, got %q", subs["a"])
	}
	if subs["b"] != "deep" {
		t.Fatalf("expected nested list leaf, got %q", subs["b"])
	}
	if subs["c"] != "" {
		t.Fatalf("expected empty leaf for empty container, got %q", subs["c"])
	}
}

// TestGenerateToleratesMarkerWhitespace verifies {{ name }} markers resolve.
func TestGenerateToleratesMarkerWhitespace(t *testing.T) {
	it := seededItem("{{ name }} and {{name}} agree.", map[string]any{
		"name": []string{"Alex"},
	})
	prompt, _ := NewEngine(nil).Generate(it, 5)
	if prompt != "Alex and Alex agree." {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

// TestGenerateLeavesUnknownMarkers verifies markers without catalog entries
// stay unresolved.
func TestGenerateLeavesUnknownMarkers(t *testing.T) {
	it := seededItem("{{name}} met {{stranger}}.", map[string]any{
		"name": []string{"Alex"},
	})
	prompt, subs := NewEngine(nil).Generate(it, 5)
	if !strings.Contains(prompt, "{{stranger}}") {
		t.Fatalf("expected unresolved marker preserved, got %q", prompt)
	}
	if _, ok := subs["stranger"]; ok {
		t.Fatalf("unexpected substitution for unknown slot")
	}
}

// TestLoadCatalogMissingFile verifies a missing catalog file yields an
// empty catalog.
func TestLoadCatalogMissingFile(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("expected empty catalog, got %v", catalog)
	}
}

// TestLoadCatalogParsesObject verifies catalog loading.
func TestLoadCatalogParsesObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots_library.json")
	if err := os.WriteFile(path, []byte(`{"speaker":["my dad","my aunt"]}`), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, ok := catalog["speaker"]; !ok {
		t.Fatalf("expected speaker slot, got %v", catalog)
	}
}

// TestValidateFlagsIdenticalVariant verifies the advisory identity check.
func TestValidateFlagsIdenticalVariant(t *testing.T) {
	it := seededItem("{{name}} said so.", map[string]any{"name": []string{"Alex"}})
	violations := Validate(it, it.Prompt, map[string]string{})
	if len(violations) == 0 {
		t.Fatalf("expected identity violation")
	}
}

// TestValidateFlagsLengthDrift verifies the 50% length drift check.
func TestValidateFlagsLengthDrift(t *testing.T) {
	it := seededItem("short prompt", nil)
	violations := Validate(it, strings.Repeat("x", len(it.Prompt)*2), nil)
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %v", violations)
	}
}

// TestValidateFlagsUnresolvedMarkers verifies leftover markers are reported.
func TestValidateFlagsUnresolvedMarkers(t *testing.T) {
	it := seededItem("{{name}} said so.", nil)
	violations := Validate(it, "{{name}} said so.", nil)
	if len(violations) != 1 || !strings.Contains(violations[0], "{{name}}") {
		t.Fatalf("expected unresolved marker violation, got %v", violations)
	}
}

// TestValidateCleanVariant verifies a well-formed variant has no violations.
func TestValidateCleanVariant(t *testing.T) {
	it := seededItem("{{name}} said so.", map[string]any{"name": []string{"Alex"}})
	violations := Validate(it, "Alex said so.", map[string]string{"name": "Alex"})
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}
