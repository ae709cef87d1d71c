package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"mirage/internal/result"
)

// defaultBaseURL is the default OpenRouter API base URL.
const defaultBaseURL = "https://openrouter.ai/api/v1"

// HTTPDoer abstracts HTTP clients used by the OpenRouter client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenRouter is an OpenRouter API client. It serves both candidate
// generation and judge scoring.
type OpenRouter struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
}

// NewOpenRouter constructs a client with explicit settings.
func NewOpenRouter(apiKey, baseURL string, client HTTPDoer) (*OpenRouter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenRouter{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}, nil
}

// FromEnv builds a client from OPENROUTER_API_KEY.
func FromEnv(client HTTPDoer) (*OpenRouter, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	return NewOpenRouter(apiKey, "", client)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CandidateResponse implements ResponseProvider.
func (p *OpenRouter) CandidateResponse(ctx context.Context, model, prompt string, temperature float64, maxTokens int) (string, string, error) {
	request := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	response, err := p.chat(ctx, request)
	if err != nil {
		return "", "", err
	}
	if len(response.Choices) == 0 {
		return "", "", fmt.Errorf("openrouter: empty choices for model %s", model)
	}
	return response.Choices[0].Message.Content, response.ID, nil
}

// chat sends a non-streaming chat completion request.
func (p *OpenRouter) chat(ctx context.Context, request chatRequest) (chatResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := p.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return chatResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return chatResponse{}, fmt.Errorf("openrouter error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return chatResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return parsed, nil
}

type generationResponse struct {
	Data struct {
		Latency          float64 `json:"latency"`
		TotalCost        float64 `json:"total_cost"`
		TokensPrompt     int     `json:"tokens_prompt"`
		TokensCompletion int     `json:"tokens_completion"`
	} `json:"data"`
}

// GenerationStats implements ResponseProvider. A non-2xx status yields a
// zero Usage without error: telemetry is best-effort.
func (p *OpenRouter) GenerationStats(ctx context.Context, generationID string) (result.Usage, error) {
	endpoint := p.BaseURL + "/generation?id=" + url.QueryEscape(generationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return result.Usage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return result.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return result.Usage{}, nil
	}

	var parsed generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return result.Usage{}, fmt.Errorf("decode generation stats: %w", err)
	}
	return result.Usage{
		LatencyMS:        parsed.Data.Latency,
		Cost:             parsed.Data.TotalCost,
		PromptTokens:     parsed.Data.TokensPrompt,
		CompletionTokens: parsed.Data.TokensCompletion,
	}, nil
}
