// Package gitrepo publishes summaries as files committed to a git repository.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// Publisher writes {id}/{id}.md under the repo dir and commits it with the
// git CLI. The CLI inherits whatever credentials the environment provides,
// which is how the job runs inside CI.
type Publisher struct {
	dir          string
	remote       string
	branch       string
	push         bool
	linkTemplate string
	logger       *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher builds a publisher from configuration.
func NewPublisher(cfg config.RepoConfig, logger *slog.Logger) *Publisher {
	return &Publisher{
		dir:          cfg.Dir,
		remote:       cfg.Remote,
		branch:       cfg.Branch,
		push:         cfg.Push,
		linkTemplate: cfg.LinkTemplate,
		logger:       logger,
	}
}

// Publish renders and writes the summary document, then commits it. It only
// returns nil once the commit (and push, when enabled) has succeeded, so
// callers can safely record the id afterwards.
func (p *Publisher) Publish(ctx context.Context, paper domain.Paper, summary domain.Summary) (string, error) {
	relPath, err := p.writeFile(summary.PaperID, Render(paper, summary))
	if err != nil {
		return "", err
	}

	if err := p.git(ctx, "add", relPath); err != nil {
		return "", err
	}

	message := fmt.Sprintf("Add summary for %s", summary.PaperID)
	if err := p.commit(ctx, message); err != nil {
		return "", err
	}

	if p.push {
		if err := p.git(ctx, "push", p.remote, p.branch); err != nil {
			return "", err
		}
	}

	return p.link(summary.PaperID), nil
}

// SummaryPath returns the repo-relative path a summary is written to.
func SummaryPath(id domain.PaperID) string {
	return filepath.Join(id.String(), id.String()+".md")
}

func (p *Publisher) writeFile(id domain.PaperID, document string) (string, error) {
	relPath := SummaryPath(id)
	absPath := filepath.Join(p.dir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create summary dir: %w", err)
	}

	if err := os.WriteFile(absPath, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	return relPath, nil
}

func (p *Publisher) commit(ctx context.Context, message string) error {
	out, err := p.gitOutput(ctx, "commit", "-m", message)
	if err != nil {
		// Republishing identical content is still a confirmed publish.
		if strings.Contains(out, "nothing to commit") {
			p.debug("nothing to commit", "message", message)
			return nil
		}
		return fmt.Errorf("git commit: %v: %s", err, strings.TrimSpace(out))
	}
	return nil
}

func (p *Publisher) git(ctx context.Context, args ...string) error {
	out, err := p.gitOutput(ctx, args...)
	if err != nil {
		return fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(out))
	}
	return nil
}

func (p *Publisher) gitOutput(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", p.dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (p *Publisher) link(id domain.PaperID) string {
	if p.linkTemplate == "" {
		return SummaryPath(id)
	}
	return strings.ReplaceAll(p.linkTemplate, "{id}", id.String())
}

func (p *Publisher) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

// Render produces the markdown document committed for a paper, mirroring the
// header/body/footer layout readers of the summary repo expect.
func Render(paper domain.Paper, summary domain.Summary) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# %s\n\n", paper.Title)
	fmt.Fprintf(&builder, "**Authors:** %s\n\n", strings.Join(paper.Authors, ", "))
	fmt.Fprintf(&builder, "**arXiv ID:** %s\n\n", paper.ID)
	if !paper.PublishedAt.IsZero() {
		fmt.Fprintf(&builder, "**Published:** %s\n\n", paper.PublishedAt.Format("January 2, 2006"))
	}
	fmt.Fprintf(&builder, "**Link:** %s\n\n", paper.ID.AbsURL())
	builder.WriteString("---\n\n")
	builder.WriteString(summary.Markdown)
	builder.WriteString("\n\n---\n\n")
	fmt.Fprintf(&builder, "*Summary generated on: %s*\n", summary.GeneratedAt.Format("2006-01-02"))

	return builder.String()
}
