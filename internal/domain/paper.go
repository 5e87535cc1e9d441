package domain

import "time"

// PaperID is a canonical arXiv identifier (e.g. "2301.08727" or "2301.08727v2").
type PaperID string

func (id PaperID) String() string { return string(id) }

// AbsURL returns the canonical abstract page URL for the identifier.
func (id PaperID) AbsURL() string { return "https://arxiv.org/abs/" + string(id) }

// PDFURL returns the canonical PDF URL for the identifier.
func (id PaperID) PDFURL() string { return "https://arxiv.org/pdf/" + string(id) }

// Paper is the core entity describing metadata fetched from arXiv.
type Paper struct {
	ID          PaperID
	Title       string
	Authors     []string
	Abstract    string
	FullText    string
	PublishedAt time.Time
}

// Summary is the generated description of a paper, keyed by its identifier.
type Summary struct {
	PaperID     PaperID
	Markdown    string
	GeneratedAt time.Time
}

// Stage enumerates per-paper pipeline milestones.
type Stage string

const (
	StagePending     Stage = "pending"
	StageFetching    Stage = "fetching"
	StageSummarizing Stage = "summarizing"
	StagePublishing  Stage = "publishing"
	StageRecorded    Stage = "recorded"
)

// EventKind classifies outbound chat notifications.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
)

// NotificationEvent is a single fire-and-forget message to the configured chat.
type NotificationEvent struct {
	Kind    EventKind
	PaperID PaperID
	Link    string
	Reason  string
}
