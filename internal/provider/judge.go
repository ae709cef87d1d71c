package provider

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mirage/internal/result"
)

// judgeSchemaJSON is the structured-output schema for judge scores. It is
// sent verbatim as the response_format schema and also compiled locally to
// validate whatever the judge actually returns.
//
//go:embed judge_schema.json
var judgeSchemaJSON []byte

const (
	judgeTemperature = 0.0
	judgeMaxTokens   = 1024
)

var (
	judgeSchemaOnce sync.Once
	judgeSchema     *jsonschema.Schema
	judgeSchemaErr  error
)

func compiledJudgeSchema() (*jsonschema.Schema, error) {
	judgeSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("judge_schema.json", bytes.NewReader(judgeSchemaJSON)); err != nil {
			judgeSchemaErr = fmt.Errorf("add judge schema: %w", err)
			return
		}
		judgeSchema, judgeSchemaErr = compiler.Compile("judge_schema.json")
	})
	return judgeSchema, judgeSchemaErr
}

// responseFormat wraps the schema in OpenRouter's structured-output envelope.
func judgeResponseFormat() (json.RawMessage, error) {
	envelope := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "judge_scores",
			"strict": true,
			"schema": json.RawMessage(judgeSchemaJSON),
		},
	}
	return json.Marshal(envelope)
}

// buildJudgeInput renders the user message the judge scores from.
func buildJudgeInput(req JudgeRequest) string {
	var b strings.Builder
	b.WriteString("## Original Prompt\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n\n## Model Response\n")
	b.WriteString(req.Response)
	b.WriteString("\n\n## Expected Behaviors\nMust Do:\n")
	for _, behavior := range req.Gold.MustDo {
		b.WriteString("- " + behavior + "\n")
	}
	b.WriteString("\nMust Not Do:\n")
	for _, behavior := range req.Gold.MustNotDo {
		b.WriteString("- " + behavior + "\n")
	}
	b.WriteString("\nScore this response on the 5 axes (0-2 each). Provide specific quotes or paraphrases from the response as justification.")
	return b.String()
}

// Judge implements JudgeProvider. The judge model is called at temperature
// zero with a strict structured-output schema; the returned payload is
// validated against the same schema before it is trusted.
func (p *OpenRouter) Judge(ctx context.Context, req JudgeRequest) (result.JudgeScores, error) {
	format, err := judgeResponseFormat()
	if err != nil {
		return result.JudgeScores{}, fmt.Errorf("build response format: %w", err)
	}
	request := chatRequest{
		Model: req.JudgeModel,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: buildJudgeInput(req)},
		},
		Temperature:    judgeTemperature,
		MaxTokens:      judgeMaxTokens,
		ResponseFormat: format,
	}
	response, err := p.chat(ctx, request)
	if err != nil {
		return result.JudgeScores{}, fmt.Errorf("judge call: %w", err)
	}
	if len(response.Choices) == 0 {
		return result.JudgeScores{}, fmt.Errorf("judge returned no choices")
	}
	return ParseJudgeScores([]byte(response.Choices[0].Message.Content))
}

// ParseJudgeScores validates raw judge output against the score schema and
// decodes it. Any deviation is an error.
func ParseJudgeScores(raw []byte) (result.JudgeScores, error) {
	schema, err := compiledJudgeSchema()
	if err != nil {
		return result.JudgeScores{}, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return result.JudgeScores{}, fmt.Errorf("judge output is not JSON: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return result.JudgeScores{}, fmt.Errorf("judge output failed schema validation: %w", err)
	}
	var scores result.JudgeScores
	if err := json.Unmarshal(raw, &scores); err != nil {
		return result.JudgeScores{}, fmt.Errorf("decode judge scores: %w", err)
	}
	if err := scores.Validate(); err != nil {
		return result.JudgeScores{}, fmt.Errorf("judge scores invalid: %w", err)
	}
	return scores, nil
}
