// Package variant generates deterministic, seed-reproducible surface
// rewordings of canonical prompts. Variants preserve the ambiguity
// structure of an item while changing surface details to prevent
// memorization.
package variant

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"sort"

	"mirage/internal/item"
)

// Engine resolves prompt slots against a global catalog merged with
// per-item slots. Generate is a pure function of (item, seed, catalogs);
// each call owns its own PRNG, so an Engine is safe for concurrent use.
type Engine struct {
	global map[string]any
}

// NewEngine builds an engine over a global slot catalog. A nil catalog is
// treated as empty.
func NewEngine(global map[string]any) *Engine {
	return &Engine{global: global}
}

// LoadCatalog reads a global slot catalog from a JSON object file mapping
// slot names to candidate values. A missing file yields an empty catalog.
func LoadCatalog(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read slot catalog: %w", err)
	}
	var catalog map[string]any
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse slot catalog: %w", err)
	}
	return catalog, nil
}

// Generate derives a variant prompt for an item. Item-local slots override
// global slots with the same name. The PRNG is seeded exactly with seed
// and advanced once per non-empty slot in sorted slot-name order, so a
// fixed (item, seed) pair always yields the same substitutions. When the
// item opts out of variation or the merged catalog is empty, the original
// prompt is returned with no substitutions.
func (e *Engine) Generate(it item.CanonicalItem, seed int64) (string, map[string]string) {
	substitutions := map[string]string{}
	if !it.Variants.Seeded {
		return it.Prompt, substitutions
	}
	merged := mergeCatalogs(e.global, it.Variants.Slots)
	if len(merged) == 0 {
		return it.Prompt, substitutions
	}

	rng := rand.New(rand.NewSource(seed))
	for _, name := range sortedSlotNames(merged) {
		options := candidateList(merged[name])
		if len(options) == 0 {
			continue
		}
		substitutions[name] = flattenValue(options[rng.Intn(len(options))])
	}
	return applySubstitutions(it.Prompt, substitutions), substitutions
}

// mergeCatalogs overlays item-local slots onto the global catalog.
func mergeCatalogs(global, local map[string]any) map[string]any {
	merged := make(map[string]any, len(global)+len(local))
	for name, options := range global {
		merged[name] = options
	}
	for name, options := range local {
		merged[name] = options
	}
	return merged
}

func sortedSlotNames(catalog map[string]any) []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// candidateList coerces a slot's raw value into an ordered candidate list.
// JSON objects contribute their values in sorted-key order; scalars become
// a single-candidate list.
func candidateList(raw any) []any {
	switch typed := raw.(type) {
	case nil:
		return nil
	case []any:
		return typed
	case []string:
		options := make([]any, len(typed))
		for i, s := range typed {
			options[i] = s
		}
		return options
	case map[string]any:
		options := make([]any, 0, len(typed))
		for _, key := range sortedSlotNames(typed) {
			options = append(options, typed[key])
		}
		return options
	default:
		return []any{typed}
	}
}

// flattenValue reduces a possibly nested candidate to a string: an object
// yields its first value, a list its first element, recursively, bottoming
// out at "" when no concrete leaf exists.
func flattenValue(value any) string {
	for {
		switch typed := value.(type) {
		case string:
			return typed
		case []any:
			if len(typed) == 0 {
				return ""
			}
			value = typed[0]
		case map[string]any:
			keys := sortedSlotNames(typed)
			if len(keys) == 0 {
				return ""
			}
			value = typed[keys[0]]
		case nil:
			return ""
		case float64:
			return formatNumber(typed)
		default:
			return fmt.Sprint(typed)
		}
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// applySubstitutions replaces every {{ name }} marker for each substituted
// slot. Whitespace inside the braces is tolerated; names are case-sensitive.
func applySubstitutions(prompt string, substitutions map[string]string) string {
	out := prompt
	for _, name := range sortedStringKeys(substitutions) {
		pattern := regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\s*\}\}`)
		out = pattern.ReplaceAllLiteralString(out, substitutions[name])
	}
	return out
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
