package arxiv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

const maxBodyBytes = 32 * 1024 * 1024

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Client fetches paper metadata from the arXiv export API, with an
// abstract-page scrape fallback and optional PDF full-text extraction.
type Client struct {
	apiURL          string
	absBase         string
	pdfBase         string
	client          *http.Client
	limiter         *rate.Limiter
	parser          *gofeed.Parser
	maxRetries      int
	backoff         time.Duration
	includeFullText bool
	fullTextLimit   int
	logger          *slog.Logger
}

var _ ports.PaperFetcher = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 30s-timeout default.
func NewClient(cfg config.ArxivConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		apiURL:          cfg.APIURL,
		absBase:         "https://arxiv.org/abs",
		pdfBase:         "https://arxiv.org/pdf",
		client:          client,
		limiter:         rate.NewLimiter(rate.Every(interval), 1),
		parser:          gofeed.NewParser(),
		maxRetries:      retries,
		backoff:         backoff,
		includeFullText: cfg.IncludeFullText,
		fullTextLimit:   cfg.FullTextLimit,
		logger:          logger,
	}
}

// Fetch retrieves metadata for one identifier. NotFound is permanent;
// network errors and rate limiting are retried up to the configured bound.
func (c *Client) Fetch(ctx context.Context, id domain.PaperID) (domain.Paper, error) {
	query := url.Values{}
	query.Set("id_list", id.String())
	query.Set("max_results", "1")

	body, err := c.get(ctx, c.apiURL+"?"+query.Encode())
	if err != nil {
		return domain.Paper{}, fmt.Errorf("query %s: %w", id, err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return domain.Paper{}, fmt.Errorf("parse feed for %s: %v: %w", id, err, domain.ErrNetwork)
	}

	if len(feed.Items) == 0 {
		return domain.Paper{}, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}

	entry := feed.Items[0]
	// Unknown ids come back as a single entry pointing at api/errors.
	if entry.Link != "" && strings.Contains(entry.Link, "api/errors") {
		return domain.Paper{}, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}

	paper := domain.Paper{
		ID:       id,
		Title:    cleanText(entry.Title),
		Abstract: cleanText(entry.Description),
	}
	for _, author := range entry.Authors {
		if author != nil && author.Name != "" {
			paper.Authors = append(paper.Authors, author.Name)
		}
	}
	if entry.PublishedParsed != nil {
		paper.PublishedAt = entry.PublishedParsed.UTC()
	}

	if paper.Abstract == "" {
		abstract, sErr := c.scrapeAbstract(ctx, id)
		if sErr != nil {
			c.warn("abstract scrape failed", "id", id, "error", sErr)
		} else {
			paper.Abstract = abstract
		}
	}

	if c.includeFullText {
		text, tErr := c.fetchFullText(ctx, id)
		if tErr != nil {
			c.warn("full-text extraction failed, continuing with metadata", "id", id, "error", tErr)
		} else {
			paper.FullText = text
		}
	}

	return paper, nil
}

// scrapeAbstract pulls the abstract from the paper's HTML page when the API
// entry carries none.
func (c *Client) scrapeAbstract(ctx context.Context, id domain.PaperID) (string, error) {
	body, err := c.get(ctx, c.absBase+"/"+id.String())
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse abstract page: %w", err)
	}

	abstract := doc.Find("blockquote.abstract").First().Text()
	if abstract == "" {
		return "", fmt.Errorf("abstract blockquote not found for %s", id)
	}

	abstract = strings.TrimSpace(abstract)
	abstract = strings.TrimPrefix(abstract, "Abstract:")
	return cleanText(abstract), nil
}

func (c *Client) fetchFullText(ctx context.Context, id domain.PaperID) (string, error) {
	body, err := c.get(ctx, c.pdfBase+"/"+id.String())
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, rErr := page.GetTextByRow()
		if rErr != nil {
			return "", fmt.Errorf("extract text on page %d: %w", i, rErr)
		}

		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			builder.WriteString(strings.Join(words, " "))
			builder.WriteString("\n")
		}

		if c.fullTextLimit > 0 && builder.Len() >= c.fullTextLimit {
			break
		}
	}

	text := builder.String()
	if c.fullTextLimit > 0 && len(text) > c.fullTextLimit {
		text = text[:c.fullTextLimit]
	}
	return text, nil
}

// get performs a rate-limited GET with bounded retry on transient failures.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, fmt.Errorf("%v: %w", ctx.Err(), domain.ErrNetwork)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrNetwork)
		}

		body, err := c.getOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		if !domain.Transient(err) {
			return nil, err
		}

		lastErr = err
		c.warn("transient fetch failure", "url", target, "attempt", attempt+1, "error", err)
	}

	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ArxivSummarizer/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrNetwork)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("arxiv returned %s: %w", resp.Status, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("arxiv returned %s: %w", resp.Status, domain.ErrRateLimited)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("arxiv returned %s: %w", resp.Status, domain.ErrNetwork)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, domain.ErrNetwork)
	}

	return body, nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func cleanText(value string) string {
	return whitespaceExpr.ReplaceAllString(strings.TrimSpace(value), " ")
}
