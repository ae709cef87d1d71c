// Package normalize prepares raw model responses for judging by stripping
// self-referential AI boilerplate and collapsing whitespace. It is a
// best-effort pattern filter: missed boilerplate is acceptable, stripped
// meaningful content is not.
package normalize

import (
	"regexp"
	"strings"
)

// leadingBoilerplate matches disclaimers anchored at line starts.
var leadingBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^As an AI( language model)?,?\s*`),
	regexp.MustCompile(`(?im)^I am an AI( assistant)?,?\s*`),
	regexp.MustCompile(`(?im)^As a language model,?\s*`),
	regexp.MustCompile(`(?im)^I'm just an AI,?\s*`),
}

// embeddedSelfReference matches self-references anywhere in the text.
var embeddedSelfReference = regexp.MustCompile(`(?i)\b(I am|I'm) (just )?an? (AI|language model|assistant)\b`)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	excessSpaces   = regexp.MustCompile(` {2,}`)
)

// Response normalizes a raw model response. It is pure and total: any
// input yields a normalized string, never an error.
func Response(text string) string {
	normalized := text
	for _, pattern := range leadingBoilerplate {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	normalized = embeddedSelfReference.ReplaceAllString(normalized, "")
	normalized = excessNewlines.ReplaceAllString(normalized, "\n\n")
	normalized = excessSpaces.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}
