package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIDefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel    = "gpt-4o-mini"

	maxRetries   = 3
	retryBackoff = 2 * time.Second
)

// OpenAISummarizer talks to the OpenAI chat completions API (or any
// compatible endpoint) with bounded retries.
type OpenAISummarizer struct {
	client        *http.Client
	apiKey        string
	model         string
	endpoint      string
	promptBuilder PromptBuilder
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAISummarizer(apiKey, model, baseURL string) *OpenAISummarizer {
	if strings.TrimSpace(model) == "" {
		model = openAIDefaultModel
	}
	return &OpenAISummarizer{
		client:   &http.Client{Timeout: 90 * time.Second},
		apiKey:   apiKey,
		model:    model,
		endpoint: normalizeEndpoint(baseURL),
	}
}

func normalizeEndpoint(baseURL string) string {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		return openAIDefaultEndpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/chat/completions") {
		if strings.HasSuffix(endpoint, "/v1") {
			endpoint += "/chat/completions"
		} else {
			endpoint += "/v1/chat/completions"
		}
	}
	return endpoint
}

func (s *OpenAISummarizer) SummarizeDiff(ctx context.Context, diff string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		text, retryable, err := s.generate(ctx, diff)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return "", lastErr
}

func (s *OpenAISummarizer) generate(ctx context.Context, diff string) (string, bool, error) {
	reqBody := openAIChatRequest{
		Model: s.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: s.promptBuilder.SystemPrompt()},
			{Role: "user", Content: s.promptBuilder.DiffPrompt(diff)},
		},
		Temperature: 0.2,
		MaxTokens:   200,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Server-side and rate-limit failures are worth retrying;
		// a rejected request is not.
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("openai chat request failed (%d): %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, err
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "Summary unavailable.", false, nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), false, nil
}
