// Package summary turns unified diffs into short human-readable labels
// using a configurable LLM provider.
package summary

import (
	"context"
	"fmt"
	"strings"
)

// Summarizer produces a short text label for a diff. Implementations
// must be safe for concurrent use.
type Summarizer interface {
	SummarizeDiff(ctx context.Context, diff string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New returns a summarizer for the configured provider. A missing API
// key degrades to the disabled summarizer rather than an error: the
// watcher must keep recording changes whether or not summaries work.
func New(ctx context.Context, opts Options) (Summarizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Disabled{}, nil
	}

	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}
	switch provider {
	case "openai":
		return NewOpenAISummarizer(opts.APIKey, opts.Model, opts.BaseURL), nil
	case "gemini":
		return NewGeminiSummarizer(ctx, opts.APIKey, opts.Model)
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported summary provider: %s", opts.Provider)
	}
}

// Disabled is the no-op summarizer used when no provider is configured.
type Disabled struct{}

func (Disabled) SummarizeDiff(ctx context.Context, diff string) (string, error) {
	return "Summary disabled: no API key configured.", nil
}

// maxDiffBytes bounds how much diff text is sent to a provider.
const maxDiffBytes = 48 * 1024

// truncateDiff trims oversized diffs, marking the cut so the model
// knows the input is partial.
func truncateDiff(diff string) string {
	if len(diff) <= maxDiffBytes {
		return diff
	}
	return diff[:maxDiffBytes] + "\n... [diff truncated]"
}
