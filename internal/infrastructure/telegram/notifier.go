package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// Notifier sends pipeline events to a Telegram chat via the bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   client,
	}
}

// Notify posts one plain-text message describing the event.
func (n *Notifier) Notify(ctx context.Context, event domain.NotificationEvent) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	return sendMessage(ctx, n.client, n.apiBase, n.botToken, n.chatID, formatEvent(event))
}

func formatEvent(event domain.NotificationEvent) string {
	switch event.Kind {
	case domain.EventStarted:
		return fmt.Sprintf("Processing %s...", event.PaperID)
	case domain.EventSucceeded:
		return fmt.Sprintf("✅ Done: %s", event.Link)
	case domain.EventFailed:
		return fmt.Sprintf("❌ Failed: %s — %s", event.PaperID, event.Reason)
	default:
		return fmt.Sprintf("%s: %s", event.Kind, event.PaperID)
	}
}
