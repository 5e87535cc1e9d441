package arxivid

import (
	"testing"

	"ArxivSummarizer/internal/domain"
)

func TestExtractNormalizesAllForms(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://arxiv.org/abs/2301.08727",
		"https://arxiv.org/pdf/2301.08727.pdf",
		"2301.08727",
		"  https://ARXIV.org/abs/2301.08727  ",
		"check this out: arxiv.org/abs/2301.08727 looks interesting",
	}

	for _, input := range inputs {
		id, ok := Extract(input)
		if !ok {
			t.Fatalf("Extract(%q) found nothing", input)
		}
		if id != domain.PaperID("2301.08727") {
			t.Fatalf("Extract(%q) = %q, want 2301.08727", input, id)
		}
	}
}

func TestExtractKeepsVersionSuffix(t *testing.T) {
	t.Parallel()

	id, ok := Extract("https://arxiv.org/abs/2301.08727v2")
	if !ok {
		t.Fatal("expected a match")
	}
	if id != "2301.08727v2" {
		t.Fatalf("got %q, want 2301.08727v2", id)
	}
}

func TestExtractFiveDigitSequence(t *testing.T) {
	t.Parallel()

	id, ok := Extract("2412.12345")
	if !ok {
		t.Fatal("expected a match")
	}
	if id != "2412.12345" {
		t.Fatalf("got %q, want 2412.12345", id)
	}
}

func TestExtractRejectsMalformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"no paper here",
		"123.45678",
		"12345.08727",
		"2301.123",
		"2301.1234567",
		"https://arxiv.org/abs/2301.1234567",
		"https://example.org/abs/nothing",
	}

	for _, input := range inputs {
		if id, ok := Extract(input); ok {
			t.Fatalf("Extract(%q) unexpectedly matched %q", input, id)
		}
	}
}
