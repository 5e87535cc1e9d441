package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
)

func testPaper() domain.Paper {
	return domain.Paper{
		ID:       "2301.08727",
		Title:    "Sample Paper",
		Authors:  []string{"Ada Lovelace"},
		Abstract: "An abstract.",
	}
}

func newTestClient(endpoint string) *GeminiClient {
	return NewGeminiClient(config.GeminiConfig{
		Endpoint: endpoint,
		Model:    "gemini-test",
		APIKey:   "key",
		Timeout:  2 * time.Second,
	})
}

func TestSummarizeParsesCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A fine "},{"text":"summary."}]}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	summary, err := c.Summarize(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if summary != "A fine summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSummarizeClassifiesAuthFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Summarize(context.Background(), testPaper())
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if !domain.FatalToRun(err) {
		t.Fatal("auth failure must be fatal to the run")
	}
}

func TestSummarizeClassifiesQuotaFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Summarize(context.Background(), testPaper())
	if !errors.Is(err, domain.ErrQuota) {
		t.Fatalf("expected ErrQuota, got %v", err)
	}
}

func TestSummarizeClassifiesModelError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Summarize(context.Background(), testPaper())
	if !errors.Is(err, domain.ErrModel) {
		t.Fatalf("expected ErrModel, got %v", err)
	}
	if domain.FatalToRun(err) {
		t.Fatal("model errors must not abort the batch")
	}
}

func TestSummarizeClassifiesTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c := NewGeminiClient(config.GeminiConfig{
		Endpoint: server.URL,
		Model:    "gemini-test",
		APIKey:   "key",
		Timeout:  50 * time.Millisecond,
	})

	_, err := c.Summarize(context.Background(), testPaper())
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSummarizeMisconfiguredIsAuthClass(t *testing.T) {
	t.Parallel()

	c := NewGeminiClient(config.GeminiConfig{Endpoint: "http://localhost", Model: "m"})

	_, err := c.Summarize(context.Background(), testPaper())
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth for missing key, got %v", err)
	}
}

func TestPromptCarriesFullTextWhenPresent(t *testing.T) {
	t.Parallel()

	paper := testPaper()
	paper.FullText = "BODY TEXT"

	prompt := buildPrompt(paper)
	if !strings.Contains(prompt, "BODY TEXT") {
		t.Fatal("prompt should include full text")
	}
	if !strings.Contains(prompt, "Core Contribution") {
		t.Fatal("prompt should request the summary structure")
	}
}
