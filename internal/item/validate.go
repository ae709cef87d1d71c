package item

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a canonical item.
func Validate(it CanonicalItem) error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if !it.Track.Valid() {
		return fmt.Errorf("item %s: unknown track %q", it.ID, it.Track)
	}
	if strings.TrimSpace(it.Prompt) == "" {
		return fmt.Errorf("item %s: prompt is required", it.ID)
	}
	return nil
}
