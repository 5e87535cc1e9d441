package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// GeminiClient implements ports.Summarizer against the Gemini generateContent API.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

var _ ports.Summarizer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &GeminiClient{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Summarize blocks until Gemini returns a complete summary or a classified
// failure: ErrAuth and ErrQuota are fatal to the run, ErrTimeout may be
// retried once, anything else is ErrModel.
func (c *GeminiClient) Summarize(ctx context.Context, paper domain.Paper) (string, error) {
	if c == nil || c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured: %w", domain.ErrAuth)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(paper)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	target := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("gemini request: %v: %w", err, domain.ErrTimeout)
		}
		return "", fmt.Errorf("gemini request: %v: %w", err, domain.ErrModel)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %v: %w", err, domain.ErrModel)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates: %w", domain.ErrModel)
	}

	var builder strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text: %w", domain.ErrModel)
	}

	return text, nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("gemini rejected credentials (%s): %w", resp.Status, domain.ErrAuth)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("gemini quota exhausted (%s): %w", resp.Status, domain.ErrQuota)
	case resp.StatusCode >= http.StatusBadRequest:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gemini error %s: %s: %w",
			resp.Status, strings.TrimSpace(string(detail)), domain.ErrModel)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func buildPrompt(paper domain.Paper) string {
	var builder strings.Builder

	builder.WriteString("Generate a comprehensive academic paper summary with the following structure:\n\n")
	fmt.Fprintf(&builder, "Title: %s\n", paper.Title)
	fmt.Fprintf(&builder, "Authors: %s\n", strings.Join(paper.Authors, ", "))
	if !paper.PublishedAt.IsZero() {
		fmt.Fprintf(&builder, "Published: %s\n", paper.PublishedAt.Format("January 2, 2006"))
	}
	fmt.Fprintf(&builder, "arXiv ID: %s\n\n", paper.ID)
	fmt.Fprintf(&builder, "Abstract:\n%s\n\n", paper.Abstract)

	if paper.FullText != "" {
		fmt.Fprintf(&builder, "Full text:\n%s\n\n", paper.FullText)
	}

	builder.WriteString(`Create a detailed summary covering:
1. Core Contribution - Main innovation and key ideas
2. Technical Approach - Methodology, architecture, algorithms
3. Key Results & Ablations - Experimental results and ablation studies
4. Important Citations - Related work and key references
5. Conclusion & Impact - Significance and future directions

Make it comprehensive enough that someone doesn't need to read the full paper to understand its main ideas.`)

	return builder.String()
}
