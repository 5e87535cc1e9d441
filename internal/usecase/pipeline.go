package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ArxivSummarizer/internal/arxivid"
	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.UpdateSource
	Ledger     ports.Ledger
	Fetcher    ports.PaperFetcher
	Summarizer ports.Summarizer
	Publisher  ports.Publisher
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the paper-summarizing workflow: for each pending
// message, extract an identifier, skip already-processed ones, then fetch,
// summarize, publish, and record. Per-paper failures are reported and do not
// stop the batch; credential-class failures abort the remaining work.
type Pipeline struct {
	source     ports.UpdateSource
	ledger     ports.Ledger
	fetcher    ports.PaperFetcher
	summarizer ports.Summarizer
	publisher  ports.Publisher
	notifier   ports.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		ledger:     deps.Ledger,
		fetcher:    deps.Fetcher,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// ProcessPending drains the pending message queue sequentially.
func (p *Pipeline) ProcessPending(ctx context.Context) error {
	if p.source == nil {
		return nil
	}

	texts, err := p.source.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list pending messages: %w", err)
	}

	p.debug("pending messages", "count", len(texts))

	seen := map[domain.PaperID]struct{}{}
	for _, text := range texts {
		id, ok := arxivid.Extract(text)
		if !ok {
			// No recognizable reference: ignored, not reported.
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		processed, cErr := p.ledger.Contains(ctx, id)
		if cErr != nil {
			// Publishing is overwrite-idempotent, so a ledger read failure
			// degrades to reprocessing rather than blocking the run.
			p.warn("ledger lookup failed, assuming unprocessed", "id", id, "error", cErr)
		}
		if processed {
			p.debug("already processed, skipping", "id", id)
			continue
		}

		if pErr := p.processPaper(ctx, id); pErr != nil {
			if domain.FatalToRun(pErr) {
				return fmt.Errorf("aborting batch after %s: %w", id, pErr)
			}
		}
	}

	return nil
}

func (p *Pipeline) processPaper(ctx context.Context, id domain.PaperID) error {
	p.info("processing paper", "id", id, "stage", domain.StagePending)
	p.notify(ctx, domain.NotificationEvent{Kind: domain.EventStarted, PaperID: id})

	paper, err := p.fetcher.Fetch(ctx, id)
	if err != nil {
		return p.fail(ctx, id, domain.StageFetching, err)
	}

	summaryText, err := p.summarize(ctx, paper)
	if err != nil {
		return p.fail(ctx, id, domain.StageSummarizing, err)
	}

	summary := domain.Summary{
		PaperID:     id,
		Markdown:    summaryText,
		GeneratedAt: p.now(),
	}

	link, err := p.publisher.Publish(ctx, paper, summary)
	if err != nil {
		return p.fail(ctx, id, domain.StagePublishing, err)
	}

	// Only after the publish is confirmed; a crash before this point leads
	// to safe reprocessing instead of a falsely-marked id.
	if err := p.ledger.Record(ctx, id); err != nil {
		p.warn("publish succeeded but ledger record failed", "id", id, "error", err)
	}

	p.info("paper recorded", "id", id, "stage", domain.StageRecorded, "link", link)
	p.notify(ctx, domain.NotificationEvent{Kind: domain.EventSucceeded, PaperID: id, Link: link})
	return nil
}

// summarize retries a timed-out call exactly once; other failures surface.
func (p *Pipeline) summarize(ctx context.Context, paper domain.Paper) (string, error) {
	text, err := p.summarizer.Summarize(ctx, paper)
	if err != nil && errors.Is(err, domain.ErrTimeout) {
		p.warn("summarize timed out, retrying once", "id", paper.ID)
		text, err = p.summarizer.Summarize(ctx, paper)
	}
	return text, err
}

// fail reports exactly one failure notification naming the paper and reason.
func (p *Pipeline) fail(ctx context.Context, id domain.PaperID, stage domain.Stage, err error) error {
	p.error("paper failed", "id", id, "stage", stage, "error", err)
	p.notify(ctx, domain.NotificationEvent{
		Kind:    domain.EventFailed,
		PaperID: id,
		Reason:  err.Error(),
	})
	return fmt.Errorf("%s %s: %w", stage, id, err)
}

// notify is best-effort: a send failure is logged, never propagated.
func (p *Pipeline) notify(ctx context.Context, event domain.NotificationEvent) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, event); err != nil {
		p.warn("notification failed", "kind", event.Kind, "id", event.PaperID, "error", err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
