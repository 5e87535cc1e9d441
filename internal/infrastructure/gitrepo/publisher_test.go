package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
)

func samplePaper() domain.Paper {
	return domain.Paper{
		ID:          "2301.08727",
		Title:       "Sample Paper",
		Authors:     []string{"Ada Lovelace", "Alan Turing"},
		Abstract:    "An abstract.",
		PublishedAt: time.Date(2023, time.January, 20, 0, 0, 0, 0, time.UTC),
	}
}

func sampleSummary() domain.Summary {
	return domain.Summary{
		PaperID:     "2301.08727",
		Markdown:    "Generated summary body.",
		GeneratedAt: time.Date(2023, time.January, 21, 0, 0, 0, 0, time.UTC),
	}
}

func TestSummaryPath(t *testing.T) {
	t.Parallel()

	if got := SummaryPath("2301.08727"); got != filepath.Join("2301.08727", "2301.08727.md") {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestRenderLayout(t *testing.T) {
	t.Parallel()

	doc := Render(samplePaper(), sampleSummary())

	for _, want := range []string{
		"# Sample Paper",
		"**Authors:** Ada Lovelace, Alan Turing",
		"**arXiv ID:** 2301.08727",
		"**Published:** January 20, 2023",
		"**Link:** https://arxiv.org/abs/2301.08727",
		"Generated summary body.",
		"*Summary generated on: 2023-01-21*",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("rendered document missing %q:\n%s", want, doc)
		}
	}
}

func initRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "test@example.org"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}
	return dir
}

func TestPublishWritesAndCommits(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	p := NewPublisher(config.RepoConfig{
		Dir:          dir,
		Push:         false,
		LinkTemplate: "https://example.org/blob/main/{id}/{id}.md",
	}, nil)

	link, err := p.Publish(context.Background(), samplePaper(), sampleSummary())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if link != "https://example.org/blob/main/2301.08727/2301.08727.md" {
		t.Fatalf("unexpected link: %s", link)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "2301.08727", "2301.08727.md"))
	if err != nil {
		t.Fatalf("summary file missing: %v", err)
	}
	if !strings.Contains(string(raw), "Generated summary body.") {
		t.Fatal("summary body not written")
	}

	out, err := exec.Command("git", "-C", dir, "log", "--oneline").CombinedOutput()
	if err != nil {
		t.Fatalf("git log: %v: %s", err, out)
	}
	if !strings.Contains(string(out), "Add summary for 2301.08727") {
		t.Fatalf("commit missing: %s", out)
	}
}

func TestPublishIdenticalContentTwice(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	p := NewPublisher(config.RepoConfig{Dir: dir, Push: false}, nil)

	if _, err := p.Publish(context.Background(), samplePaper(), sampleSummary()); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	// Republishing unchanged content has nothing to commit but still counts
	// as a confirmed publish.
	if _, err := p.Publish(context.Background(), samplePaper(), sampleSummary()); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
}
