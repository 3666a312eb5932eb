package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("no key degrades to disabled", func(t *testing.T) {
		s, err := New(ctx, Options{Provider: "openai"})
		require.NoError(t, err)
		assert.IsType(t, Disabled{}, s)
	})

	t.Run("openai is the default provider", func(t *testing.T) {
		s, err := New(ctx, Options{APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &OpenAISummarizer{}, s)
	})

	t.Run("none is explicit off", func(t *testing.T) {
		s, err := New(ctx, Options{Provider: "none", APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, Disabled{}, s)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := New(ctx, Options{Provider: "llama-at-home", APIKey: "k"})
		require.Error(t, err)
	})
}

func TestDisabledSummarizer(t *testing.T) {
	text, err := Disabled{}.SummarizeDiff(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, text, "disabled")
}

func TestTruncateDiff(t *testing.T) {
	small := "small diff"
	assert.Equal(t, small, truncateDiff(small))

	big := strings.Repeat("x", maxDiffBytes+100)
	got := truncateDiff(big)
	assert.Len(t, got, maxDiffBytes+len("\n... [diff truncated]"))
	assert.True(t, strings.HasSuffix(got, "[diff truncated]"))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, openAIDefaultEndpoint, normalizeEndpoint(""))
	assert.Equal(t, "http://x/v1/chat/completions", normalizeEndpoint("http://x"))
	assert.Equal(t, "http://x/v1/chat/completions", normalizeEndpoint("http://x/v1"))
	assert.Equal(t, "http://x/v1/chat/completions", normalizeEndpoint("http://x/v1/chat/completions"))
	assert.Equal(t, "http://x/v1/chat/completions", normalizeEndpoint("http://x/"))
}

func TestOpenAISummarizeDiff(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Renamed getUser to get_user. "}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer("test-key", "", srv.URL)
	text, err := s.SummarizeDiff(context.Background(), "-def getUser():\n+def get_user():")
	require.NoError(t, err)
	assert.Equal(t, "Renamed getUser to get_user.", text)
	assert.Equal(t, 1, requests)
}

func TestOpenAIRejectedRequestIsNotRetried(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewOpenAISummarizer("bad-key", "", srv.URL)
	_, err := s.SummarizeDiff(context.Background(), "diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, requests, "a 4xx is final")
}

func TestOpenAIRetriesServerFailure(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer("k", "", srv.URL)
	text, err := s.SummarizeDiff(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, requests)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer("k", "", srv.URL)
	text, err := s.SummarizeDiff(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, "Summary unavailable.", text)
}

func TestDiffPromptEmbedsDiff(t *testing.T) {
	var b PromptBuilder
	prompt := b.DiffPrompt("+added line")
	assert.Contains(t, prompt, "+added line")
	assert.NotEmpty(t, b.SystemPrompt())
}
