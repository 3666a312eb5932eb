package summary

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiSummarizer implements Summarizer using Gemini text generation.
type GeminiSummarizer struct {
	client        *genai.Client
	model         string
	promptBuilder PromptBuilder
}

const geminiDefaultModel = "gemini-2.0-flash"

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = geminiDefaultModel
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (s *GeminiSummarizer) SummarizeDiff(ctx context.Context, diff string) (string, error) {
	prompt := s.promptBuilder.SystemPrompt() + "\n\n" + s.promptBuilder.DiffPrompt(diff)
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "Summary unavailable.", nil
	}
	return text, nil
}
