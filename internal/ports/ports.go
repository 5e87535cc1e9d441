package ports

import (
	"context"
	"time"

	"ArxivSummarizer/internal/domain"
)

// UpdateSource lists pending inbound message texts from the configured chat.
type UpdateSource interface {
	Pending(ctx context.Context) ([]string, error)
}

// Ledger is the persistent set of already-processed identifiers.
// Contains treats a missing backing store as an empty set; Record is an
// idempotent add persisted before it returns.
type Ledger interface {
	Contains(ctx context.Context, id domain.PaperID) (bool, error)
	Record(ctx context.Context, id domain.PaperID) error
}

// PaperFetcher retrieves metadata (and optionally full text) for one paper.
type PaperFetcher interface {
	Fetch(ctx context.Context, id domain.PaperID) (domain.Paper, error)
}

// Summarizer produces summary text for a fetched paper.
type Summarizer interface {
	Summarize(ctx context.Context, paper domain.Paper) (string, error)
}

// Publisher persists a summary and returns a public link to it.
// The ledger must only record an id after Publish has returned nil.
type Publisher interface {
	Publish(ctx context.Context, paper domain.Paper, summary domain.Summary) (string, error)
}

// Notifier sends progress/result/error events to the configured chat.
// Sends are best-effort; a failure never aborts processing.
type Notifier interface {
	Notify(ctx context.Context, event domain.NotificationEvent) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
