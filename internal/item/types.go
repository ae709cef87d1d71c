package item

import "encoding/json"

// Track identifies one of the five fixed benchmark categories.
type Track string

const (
	TrackNoisyPerception        Track = "A"
	TrackAmbiguousSemantics     Track = "B"
	TrackFalsePremiseTraps      Track = "C"
	TrackUnderspecifiedTasks    Track = "D"
	TrackConflictingConstraints Track = "E"
)

// Tracks returns all tracks in canonical order.
func Tracks() []Track {
	return []Track{
		TrackNoisyPerception,
		TrackAmbiguousSemantics,
		TrackFalsePremiseTraps,
		TrackUnderspecifiedTasks,
		TrackConflictingConstraints,
	}
}

// trackNames maps track letters to display names.
var trackNames = map[Track]string{
	TrackNoisyPerception:        "Noisy Perception",
	TrackAmbiguousSemantics:     "Ambiguous Semantics",
	TrackFalsePremiseTraps:      "False Premise Traps",
	TrackUnderspecifiedTasks:    "Underspecified Tasks",
	TrackConflictingConstraints: "Conflicting Constraints",
}

// Valid reports whether the track is one of the five known letters.
func (t Track) Valid() bool {
	_, ok := trackNames[t]
	return ok
}

// Name returns the human-readable track name, or the letter itself if unknown.
func (t Track) Name() string {
	if name, ok := trackNames[t]; ok {
		return name
	}
	return string(t)
}

// UncertaintyPoint marks a specific span of uncertainty in a prompt.
type UncertaintyPoint struct {
	Span  string `json:"span"`
	Issue string `json:"issue"`
	Notes string `json:"notes,omitempty"`
}

// Temptation describes a trap that models commonly fall into.
type Temptation struct {
	Trap          string `json:"trap"`
	WhyModelsFail string `json:"why_models_fail"`
}

// AmbiguityProfile describes the ambiguity structure of an item.
type AmbiguityProfile struct {
	Type              []string           `json:"type"`
	UncertaintyPoints []UncertaintyPoint `json:"uncertainty_points,omitempty"`
	Temptations       []Temptation       `json:"temptations,omitempty"`
}

// GoldBehavior is the expected ideal behavior for responding to an item.
type GoldBehavior struct {
	MustDo             []string `json:"must_do"`
	MustNotDo          []string `json:"must_not_do"`
	IdealClarifiers    []string `json:"ideal_clarifiers,omitempty"`
	AcceptableBranches []string `json:"acceptable_branches,omitempty"`
}

// Difficulty holds expected difficulty ratings for an item.
type Difficulty struct {
	HumanExpected int    `json:"human_expected"`
	ModelExpected int    `json:"model_expected"`
	Notes         string `json:"notes,omitempty"`
}

// VariantSlots defines the deterministic variation surface of an item.
// Slots maps slot names to candidate values; values are kept loosely typed
// because slot libraries may nest lists or objects.
type VariantSlots struct {
	Seeded      bool           `json:"seeded"`
	Slots       map[string]any `json:"slots,omitempty"`
	Constraints []string       `json:"constraints,omitempty"`
}

// UnmarshalJSON defaults Seeded to true when the field is absent.
func (v *VariantSlots) UnmarshalJSON(data []byte) error {
	type alias VariantSlots
	aux := struct {
		Seeded *bool `json:"seeded"`
		*alias
	}{alias: (*alias)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Seeded == nil {
		v.Seeded = true
	} else {
		v.Seeded = *aux.Seeded
	}
	return nil
}

// CanonicalItem is an immutable benchmark unit loaded from the dataset.
type CanonicalItem struct {
	ID               string           `json:"id"`
	Track            Track            `json:"track"`
	Title            string           `json:"title,omitempty"`
	Prompt           string           `json:"prompt"`
	AmbiguityProfile AmbiguityProfile `json:"ambiguity_profile"`
	GoldBehavior     GoldBehavior     `json:"gold_behavior"`
	Difficulty       Difficulty       `json:"difficulty"`
	Variants         VariantSlots     `json:"variants"`
	Version          string           `json:"version,omitempty"`
}

// UnmarshalJSON defaults the variants descriptor to seeded-with-no-slots
// when a record omits it entirely.
func (c *CanonicalItem) UnmarshalJSON(data []byte) error {
	type alias CanonicalItem
	aux := struct {
		Variants *VariantSlots `json:"variants"`
		*alias
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Variants == nil {
		c.Variants = VariantSlots{Seeded: true}
	} else {
		c.Variants = *aux.Variants
	}
	return nil
}
