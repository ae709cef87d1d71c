package variant

import (
	"fmt"
	"regexp"
	"strings"

	"mirage/internal/item"
)

// unresolvedMarker matches any remaining {{...}} marker in a prompt.
var unresolvedMarker = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Validate runs advisory checks on a generated variant and returns
// human-readable violations. Violations are diagnostic only; they never
// block evaluation.
func Validate(original item.CanonicalItem, variantPrompt string, substitutions map[string]string) []string {
	violations := make([]string, 0)

	if len(original.Variants.Slots) > 0 && variantPrompt == original.Prompt {
		violations = append(violations, "variant is identical to original despite having slots")
	}

	lengthDiff := len(variantPrompt) - len(original.Prompt)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if float64(lengthDiff) > float64(len(original.Prompt))*0.5 {
		violations = append(violations, fmt.Sprintf("variant length differs too much: %d chars", lengthDiff))
	}

	if remaining := unresolvedMarker.FindAllString(variantPrompt, -1); len(remaining) > 0 {
		violations = append(violations, fmt.Sprintf("unfilled slots remaining: %s", strings.Join(remaining, ", ")))
	}

	return violations
}
