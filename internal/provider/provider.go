// Package provider talks to the OpenRouter API: candidate model responses,
// generation telemetry, and structured judge scoring.
package provider

import (
	"context"

	"mirage/internal/item"
	"mirage/internal/result"
)

// ResponseProvider produces candidate model responses and their telemetry.
type ResponseProvider interface {
	// CandidateResponse sends a prompt to a candidate model and returns the
	// response text and the provider's generation ID.
	CandidateResponse(ctx context.Context, model, prompt string, temperature float64, maxTokens int) (text, generationID string, err error)

	// GenerationStats fetches latency, cost, and token telemetry for a
	// generation. Unavailable telemetry degrades to a zero Usage without
	// error; only transport failures are reported.
	GenerationStats(ctx context.Context, generationID string) (result.Usage, error)
}

// JudgeRequest carries everything the judge needs to score one response.
type JudgeRequest struct {
	JudgeModel   string
	Instructions string
	Prompt       string
	Response     string
	Gold         item.GoldBehavior
}

// JudgeProvider scores a normalized response against gold behavior.
type JudgeProvider interface {
	// Judge asks the judge model for structured per-axis scores. The
	// returned scores are schema-validated; any malformed judge output is
	// an error, never a silent zero.
	Judge(ctx context.Context, req JudgeRequest) (result.JudgeScores, error)
}
