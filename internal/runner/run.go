// Package runner orchestrates a complete evaluation: dataset loading,
// variant generation, candidate and judge calls, aggregation, and the
// final run record. Items are evaluated strictly sequentially.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"mirage/internal/item"
	"mirage/internal/normalize"
	"mirage/internal/provider"
	"mirage/internal/result"
	"mirage/internal/scorer"
	"mirage/internal/variant"
)

// Capper derives per-axis score ceilings from an item and its normalized
// response. A nil Capper or an empty map means no caps apply.
type Capper interface {
	Caps(it item.CanonicalItem, normalized string) map[string]int
}

// Config carries evaluation settings shared across runs.
type Config struct {
	DatasetDir        string
	DatasetVersion    string
	SlotsPath         string
	JudgeModel        string
	JudgeInstructions string
	DefaultLimit      int
	Temperature       float64
	MaxTokens         int
}

// Deps holds injectable collaborators. Responses and Judge are required;
// everything else has a default.
type Deps struct {
	Responses provider.ResponseProvider
	Judge     provider.JudgeProvider
	Capper    Capper
	Now       func() time.Time
	NewRunID  func() (string, error)
	Observer  Observer
	Warn      io.Writer
}

// Params selects what a single run evaluates.
type Params struct {
	ModelID     string
	ModelName   string
	Seed        int64
	Tracks      []item.Track
	Limit       int
	Temperature float64
	MaxTokens   int

	// BaselineScores are prior overall scores to rank against. Nil means
	// no baseline is available and the run carries no percentile.
	BaselineScores []float64
}

// Runner evaluates candidate models against the benchmark dataset.
type Runner struct {
	cfg  Config
	deps Deps
}

// New validates dependencies and constructs a Runner.
func New(cfg Config, deps Deps) (*Runner, error) {
	if deps.Responses == nil {
		return nil, fmt.Errorf("response provider is required")
	}
	if deps.Judge == nil {
		return nil, fmt.Errorf("judge provider is required")
	}
	if cfg.JudgeModel == "" {
		return nil, fmt.Errorf("judge model is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = NewRunID
	}
	if deps.Warn == nil {
		deps.Warn = io.Discard
	}
	return &Runner{cfg: cfg, deps: deps}, nil
}

// Run evaluates one candidate model over the configured dataset and
// returns the complete run record. Item evaluations are sequential; any
// candidate or judge failure aborts the run.
func (r *Runner) Run(ctx context.Context, params Params) (result.EvaluationRun, error) {
	if params.ModelID == "" {
		return result.EvaluationRun{}, fmt.Errorf("model id is required")
	}
	modelName := params.ModelName
	if modelName == "" {
		modelName = params.ModelID
	}
	temperature := params.Temperature
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = r.cfg.MaxTokens
	}
	limit := params.Limit
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}

	items, err := item.LoadDataset(r.cfg.DatasetDir, r.cfg.DatasetVersion, params.Tracks)
	if err != nil {
		return result.EvaluationRun{}, fmt.Errorf("load dataset: %w", err)
	}
	if len(items) == 0 {
		return result.EvaluationRun{}, fmt.Errorf("no items found for version %s", r.cfg.DatasetVersion)
	}
	items = capPerTrack(items, limit)

	catalog, err := variant.LoadCatalog(r.cfg.SlotsPath)
	if err != nil {
		return result.EvaluationRun{}, fmt.Errorf("load slot catalog: %w", err)
	}
	engine := variant.NewEngine(catalog)

	runID, err := r.deps.NewRunID()
	if err != nil {
		return result.EvaluationRun{}, fmt.Errorf("new run id: %w", err)
	}
	startedAt := r.deps.Now()

	base := Event{
		RunID:     runID,
		ModelID:   params.ModelID,
		ItemCount: len(items),
		EmittedAt: startedAt,
	}
	r.emit(Event{Type: EventRunStart, RunID: runID, ModelID: params.ModelID, ItemCount: len(items), EmittedAt: startedAt})

	results := make([]result.ItemResult, 0, len(items))
	for i, it := range items {
		event := base
		event.ItemIndex = i + 1
		event.ItemID = it.ID
		event.Track = it.Track
		event.Type = EventItemStart
		event.EmittedAt = r.deps.Now()
		r.emit(event)

		itemResult, err := r.evaluateItem(ctx, engine, it, params.ModelID, params.Seed, temperature, maxTokens)
		if err != nil {
			return result.EvaluationRun{}, fmt.Errorf("item %s: %w", it.ID, err)
		}
		results = append(results, itemResult)

		finish := itemFinishEvent(event, itemResult)
		finish.EmittedAt = r.deps.Now()
		r.emit(finish)
	}

	summaries := scorer.TrackSummaries(results)
	overall := scorer.OverallScore(summaries)
	profile := scorer.FailureProfile(results)

	run := result.EvaluationRun{
		RunID:          runID,
		Timestamp:      startedAt,
		DatasetVersion: r.cfg.DatasetVersion,
		Seed:           params.Seed,
		ModelCard: result.ModelCard{
			ModelID:     params.ModelID,
			ModelName:   modelName,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
		JudgeModel:     r.cfg.JudgeModel,
		ItemResults:    results,
		TrackSummaries: summaries,
		OverallScore:   overall,
		FailureProfile: &profile,
	}
	if params.BaselineScores != nil {
		percentile := scorer.Percentile(overall, params.BaselineScores)
		run.Percentile = &percentile
	}

	r.emit(Event{
		Type:      EventRunFinish,
		RunID:     runID,
		ModelID:   params.ModelID,
		ItemCount: len(items),
		Overall:   overall,
		EmittedAt: r.deps.Now(),
	})
	return run, nil
}

// evaluateItem runs the full pipeline for one item: variant, candidate
// response, telemetry, normalization, judging, capping.
func (r *Runner) evaluateItem(ctx context.Context, engine *variant.Engine, it item.CanonicalItem, modelID string, seed int64, temperature float64, maxTokens int) (result.ItemResult, error) {
	promptUsed, substitutions := engine.Generate(it, seed)
	for _, violation := range variant.Validate(it, promptUsed, substitutions) {
		fmt.Fprintf(r.deps.Warn, "warning: variant for %s: %s\n", it.ID, violation)
	}

	raw, generationID, err := r.deps.Responses.CandidateResponse(ctx, modelID, promptUsed, temperature, maxTokens)
	if err != nil {
		return result.ItemResult{}, fmt.Errorf("candidate response: %w", err)
	}

	var usage result.Usage
	if generationID != "" {
		usage, err = r.deps.Responses.GenerationStats(ctx, generationID)
		if err != nil {
			fmt.Fprintf(r.deps.Warn, "warning: generation stats for %s unavailable: %v\n", it.ID, err)
			usage = result.Usage{}
		}
	}

	normalized := normalize.Response(raw)

	judgeScores, err := r.deps.Judge.Judge(ctx, provider.JudgeRequest{
		JudgeModel:   r.cfg.JudgeModel,
		Instructions: r.cfg.JudgeInstructions,
		Prompt:       promptUsed,
		Response:     normalized,
		Gold:         it.GoldBehavior,
	})
	if err != nil {
		return result.ItemResult{}, fmt.Errorf("judge: %w", err)
	}

	finalScores := judgeScores
	if r.deps.Capper != nil {
		finalScores = judgeScores.Capped(r.deps.Capper.Caps(it, normalized))
	}

	variantSeed := seed
	return result.ItemResult{
		ItemID:             it.ID,
		Track:              it.Track,
		VariantSeed:        &variantSeed,
		PromptUsed:         promptUsed,
		ModelResponse:      raw,
		NormalizedResponse: normalized,
		Usage:              usage,
		JudgeScores:        judgeScores,
		FinalScores:        finalScores,
	}, nil
}

func (r *Runner) emit(event Event) {
	if r.deps.Observer != nil {
		r.deps.Observer.OnEvent(event)
	}
}

// capPerTrack applies a flat per-track item cap, preserving file order
// within each track. A non-positive limit keeps everything.
func capPerTrack(items []item.CanonicalItem, limit int) []item.CanonicalItem {
	if limit <= 0 {
		return items
	}
	counts := make(map[item.Track]int)
	capped := make([]item.CanonicalItem, 0, len(items))
	for _, it := range items {
		if counts[it.Track] >= limit {
			continue
		}
		counts[it.Track]++
		capped = append(capped, it)
	}
	return capped
}
