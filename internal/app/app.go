package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/infrastructure/arxiv"
	"ArxivSummarizer/internal/infrastructure/gitrepo"
	"ArxivSummarizer/internal/infrastructure/llm"
	"ArxivSummarizer/internal/infrastructure/scheduler"
	"ArxivSummarizer/internal/infrastructure/storage"
	"ArxivSummarizer/internal/infrastructure/telegram"
	"ArxivSummarizer/internal/logging"
	"ArxivSummarizer/internal/ports"
	"ArxivSummarizer/internal/runlock"
	"ArxivSummarizer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	ledger, err := app.buildLedger(cfg.Ledger, baseLogger)
	if err != nil {
		return nil, err
	}

	source := telegram.NewUpdateSource(cfg.Telegram, nil)
	notifier := telegram.NewNotifier(cfg.Telegram, nil)
	fetcher := arxiv.NewClient(cfg.Arxiv, nil, baseLogger.With("component", "arxiv"))
	summarizer := llm.NewGeminiClient(cfg.Gemini)
	publisher := gitrepo.NewPublisher(cfg.Repo, baseLogger.With("component", "publisher"))

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Ledger:     ledger,
		Fetcher:    fetcher,
		Summarizer: summarizer,
		Publisher:  publisher,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return app, nil
}

func (a *Application) buildLedger(cfg config.LedgerConfig, logger *slog.Logger) (ports.Ledger, error) {
	switch cfg.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open ledger database: %w", err)
		}
		a.db = db
		return storage.NewPostgresLedger(db), nil
	default:
		ledger, err := storage.NewFileLedger(cfg.Path, logger.With("component", "ledger"))
		if err != nil {
			return nil, fmt.Errorf("open ledger file: %w", err)
		}
		return ledger, nil
	}
}

// Run executes the pipeline once, or on the configured interval when once is
// false. A second concurrent invocation is skipped via the run lock.
func (a *Application) Run(ctx context.Context, once bool) error {
	lock, err := runlock.Acquire(a.cfg.Scheduler.LockPath)
	if errors.Is(err, runlock.ErrHeld) {
		a.logger.Info("another run holds the lock, skipping", "path", a.cfg.Scheduler.LockPath)
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if rErr := lock.Release(); rErr != nil {
			a.logger.Warn("release run lock", "error", rErr)
		}
	}()
	defer a.close()

	if once {
		return a.pipeline.ProcessPending(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	runner := usecase.NewScheduler(driver, a.pipeline)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

func (a *Application) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close ledger database", "error", err)
		}
	}
}
