package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// UpdateSource lists pending message texts from the configured chat via the
// bot getUpdates endpoint. No offset is persisted; deduplication downstream
// makes re-reading old updates harmless.
type UpdateSource struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.UpdateSource = (*UpdateSource)(nil)

// NewUpdateSource wires bot credentials; a nil client gets a 10s default.
func NewUpdateSource(cfg config.TelegramConfig, client *http.Client) *UpdateSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &UpdateSource{
		apiBase:  defaultAPIBase,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   client,
	}
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Pending returns the texts of recent messages sent to the configured chat.
func (s *UpdateSource) Pending(ctx context.Context) ([]string, error) {
	if s.botToken == "" || s.chatID == "" {
		return nil, fmt.Errorf("telegram source misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", s.apiBase, s.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram error: %s", resp.Status)
	}

	var parsed updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram responded not ok")
	}

	var texts []string
	for _, upd := range parsed.Result {
		if upd.Message == nil || upd.Message.Text == "" {
			continue
		}
		if fmt.Sprintf("%d", upd.Message.Chat.ID) != s.chatID {
			continue
		}
		texts = append(texts, upd.Message.Text)
	}

	return texts, nil
}

// sendMessage posts a message to the chat; shared by the notifier.
func sendMessage(ctx context.Context, client *http.Client, apiBase, botToken, chatID, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, botToken)
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
