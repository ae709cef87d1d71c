// Package result defines the evaluation result data model: per-axis judge
// scores, per-item results, track and axis aggregates, and the top-level
// evaluation run record.
package result

import (
	"fmt"
	"time"

	"mirage/internal/item"
)

// Fixed evaluation axes, scored 0-2 by the judge.
const (
	AxisAmbiguityDetection        = "ambiguity_detection"
	AxisHallucinationAvoidance    = "hallucination_avoidance"
	AxisLocalizationOfUncertainty = "localization_of_uncertainty"
	AxisResponseStrategy          = "response_strategy"
	AxisEpistemicTone             = "epistemic_tone"
)

// Axes returns the five fixed axes in canonical order.
func Axes() []string {
	return []string{
		AxisAmbiguityDetection,
		AxisHallucinationAvoidance,
		AxisLocalizationOfUncertainty,
		AxisResponseStrategy,
		AxisEpistemicTone,
	}
}

// axisDisplayNames maps wire axis names to display names.
var axisDisplayNames = map[string]string{
	AxisAmbiguityDetection:        "Ambiguity Detection",
	AxisHallucinationAvoidance:    "Hallucination Avoidance",
	AxisLocalizationOfUncertainty: "Localization of Uncertainty",
	AxisResponseStrategy:          "Response Strategy",
	AxisEpistemicTone:             "Epistemic Tone",
}

// AxisDisplayName returns the human-readable axis name.
func AxisDisplayName(axis string) string {
	if name, ok := axisDisplayNames[axis]; ok {
		return name
	}
	return axis
}

// AxisScore is a single judged axis: an integer in [0,2] with a non-empty
// justification.
type AxisScore struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// Validate enforces the closed score bounds and justification presence.
func (s AxisScore) Validate() error {
	if s.Score < 0 || s.Score > 2 {
		return fmt.Errorf("score %d out of range [0,2]", s.Score)
	}
	if s.Justification == "" {
		return fmt.Errorf("justification is required")
	}
	return nil
}

// JudgeScores is the judge's complete output: one score per fixed axis.
type JudgeScores struct {
	AmbiguityDetection        AxisScore `json:"ambiguity_detection"`
	HallucinationAvoidance    AxisScore `json:"hallucination_avoidance"`
	LocalizationOfUncertainty AxisScore `json:"localization_of_uncertainty"`
	ResponseStrategy          AxisScore `json:"response_strategy"`
	EpistemicTone             AxisScore `json:"epistemic_tone"`
}

// Axis returns the score for a wire axis name.
func (j JudgeScores) Axis(name string) AxisScore {
	switch name {
	case AxisAmbiguityDetection:
		return j.AmbiguityDetection
	case AxisHallucinationAvoidance:
		return j.HallucinationAvoidance
	case AxisLocalizationOfUncertainty:
		return j.LocalizationOfUncertainty
	case AxisResponseStrategy:
		return j.ResponseStrategy
	case AxisEpistemicTone:
		return j.EpistemicTone
	default:
		return AxisScore{}
	}
}

// Total sums the five axis scores, yielding a value in [0,10].
func (j JudgeScores) Total() int {
	total := 0
	for _, axis := range Axes() {
		total += j.Axis(axis).Score
	}
	return total
}

// Validate checks every axis score.
func (j JudgeScores) Validate() error {
	for _, axis := range Axes() {
		if err := j.Axis(axis).Validate(); err != nil {
			return fmt.Errorf("%s: %w", axis, err)
		}
	}
	return nil
}

// Capped lowers each axis score to its cap where one is supplied, keeping
// the judge's justification. Axes without a cap pass through unchanged.
func (j JudgeScores) Capped(caps map[string]int) JudgeScores {
	if len(caps) == 0 {
		return j
	}
	capped := j
	apply := func(score *AxisScore, axis string) {
		if ceiling, ok := caps[axis]; ok && score.Score > ceiling {
			score.Score = ceiling
		}
	}
	apply(&capped.AmbiguityDetection, AxisAmbiguityDetection)
	apply(&capped.HallucinationAvoidance, AxisHallucinationAvoidance)
	apply(&capped.LocalizationOfUncertainty, AxisLocalizationOfUncertainty)
	apply(&capped.ResponseStrategy, AxisResponseStrategy)
	apply(&capped.EpistemicTone, AxisEpistemicTone)
	return capped
}

// Usage is generation telemetry for one candidate call. All fields degrade
// to zero when telemetry is unavailable.
type Usage struct {
	LatencyMS        float64 `json:"latency_ms"`
	Cost             float64 `json:"cost"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
}

// ItemResult is one evaluation of one item against one candidate model.
// JudgeScores holds the judge's raw output; FinalScores the possibly
// capped scores that aggregation uses.
type ItemResult struct {
	ItemID             string      `json:"item_id"`
	Track              item.Track  `json:"track"`
	VariantSeed        *int64      `json:"variant_seed"`
	PromptUsed         string      `json:"prompt_used"`
	ModelResponse      string      `json:"model_response"`
	NormalizedResponse string      `json:"normalized_response"`
	Usage              Usage       `json:"usage"`
	JudgeScores        JudgeScores `json:"judge_scores"`
	FinalScores        JudgeScores `json:"final_scores"`
}

// TotalScore is the final total score in [0,10].
func (r ItemResult) TotalScore() int {
	return r.FinalScores.Total()
}

// AxisSummary aggregates one axis over a group of results.
type AxisSummary struct {
	AxisName          string      `json:"axis_name"`
	MeanScore         float64     `json:"mean_score"`
	ScoreDistribution map[int]int `json:"score_distribution"`
}

// TrackSummary aggregates all results sharing a track.
type TrackSummary struct {
	Track         item.Track    `json:"track"`
	TrackName     string        `json:"track_name"`
	ItemCount     int           `json:"item_count"`
	MeanScore     float64       `json:"mean_score"`
	AxisSummaries []AxisSummary `json:"axis_summaries"`
}

// FailureMode is a named recurring failure pattern with its frequency.
type FailureMode struct {
	Mode           string   `json:"mode"`
	Frequency      int      `json:"frequency"`
	ExampleItemIDs []string `json:"example_item_ids,omitempty"`
}

// FailureProfile captures a model's systematic weaknesses.
type FailureProfile struct {
	WeakestAxes    []string      `json:"weakest_axes"`
	WeakestTracks  []item.Track  `json:"weakest_tracks"`
	CommonFailures []FailureMode `json:"common_failures"`
}

// ModelCard records metadata about the evaluated model.
type ModelCard struct {
	ModelID          string  `json:"model_id"`
	ModelName        string  `json:"model_name"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	SystemPromptUsed bool    `json:"system_prompt_used"`
}

// EvaluationRun is the complete record of one evaluation. It is created
// once per orchestration call and never mutated afterwards; ownership is
// exclusive to the caller that persists or reports it.
type EvaluationRun struct {
	RunID          string          `json:"run_id"`
	Timestamp      time.Time       `json:"timestamp"`
	DatasetVersion string          `json:"dataset_version"`
	Seed           int64           `json:"seed"`
	ModelCard      ModelCard       `json:"model_card"`
	JudgeModel     string          `json:"judge_model"`
	ItemResults    []ItemResult    `json:"item_results"`
	TrackSummaries []TrackSummary  `json:"track_summaries"`
	OverallScore   float64         `json:"overall_score"`
	Percentile     *float64        `json:"percentile,omitempty"`
	FailureProfile *FailureProfile `json:"failure_profile,omitempty"`
}

// LeaderboardEntry is a single ranked row in the shared leaderboard.
type LeaderboardEntry struct {
	Rank         int                    `json:"rank"`
	ModelID      string                 `json:"model_id"`
	ModelName    string                 `json:"model_name"`
	OverallScore float64                `json:"overall_score"`
	Percentile   float64                `json:"percentile"`
	TrackScores  map[item.Track]float64 `json:"track_scores"`
	AxisScores   map[string]float64     `json:"axis_scores"`
	AvgLatency   float64                `json:"avg_latency"`
	AvgCost      float64                `json:"avg_cost"`
	EvaluatedAt  time.Time              `json:"evaluated_at"`
}
