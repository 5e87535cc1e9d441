// Package arxivid extracts canonical arXiv identifiers from free-form text.
package arxivid

import (
	"regexp"
	"strings"

	"ArxivSummarizer/internal/domain"
)

// Accepted forms, most specific first: abstract URL, PDF URL, bare id.
// The id grammar is YYMM.NNNN or YYMM.NNNNN with an optional version suffix.
// Trailing guards keep over-long digit groups from being silently truncated.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/abs/(\d{4}\.\d{4,5}(?:v\d+)?)(?:[^\d]|$)`),
	regexp.MustCompile(`arxiv\.org/pdf/(\d{4}\.\d{4,5}(?:v\d+)?)(?:[^\d]|$)`),
	regexp.MustCompile(`(?:^|[^\d.])(\d{4}\.\d{4,5}(?:v\d+)?)(?:[^\d]|$)`),
}

// Extract returns the canonical identifier found in text, or false when the
// text carries no recognizable arXiv reference. All three accepted input
// forms of the same paper normalize to the identical value.
func Extract(text string) (domain.PaperID, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		return domain.PaperID(match[1]), true
	}
	return "", false
}
