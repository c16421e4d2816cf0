package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"goldbees-trader/internal/api"
	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/types"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends the operator a two-line capital/result message. Without a
// token and chat id it does nothing.
type Telegram struct {
	client  *api.Client
	token   string
	chatID  string
	printer *message.Printer
}

var _ interfaces.Notifier = (*Telegram)(nil)

type Option func(*telegramOptions)

type telegramOptions struct {
	baseURL string
	timeout time.Duration
	retry   api.Retry
}

// WithBaseURL points the notifier at another Bot API host.
func WithBaseURL(u string) Option {
	return func(o *telegramOptions) { o.baseURL = u }
}

func NewTelegram(token, chatID string, opts ...Option) *Telegram {
	o := telegramOptions{
		baseURL: defaultBaseURL,
		timeout: 10 * time.Second,
		retry:   api.Retry{Attempts: 2, Wait: time.Second, MaxWait: time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	token = strings.TrimSpace(token)
	return &Telegram{
		client: api.NewClient(
			api.WithBaseURL(o.baseURL),
			api.WithTimeout(o.timeout),
			api.WithRetry(o.retry),
			api.WithRedacted(token),
		),
		token:   token,
		chatID:  strings.TrimSpace(chatID),
		printer: message.NewPrinter(language.English),
	}
}

func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

// Message renders the notification text, e.g. "Capital: ₹1,234.50\nResult: SUCCESS".
func (t *Telegram) Message(cash float64, outcome types.Outcome) string {
	return t.printer.Sprintf("Capital: ₹%.2f\nResult: %s", cash, string(outcome))
}

func (t *Telegram) Notify(ctx context.Context, cash float64, outcome types.Outcome) error {
	if !t.Enabled() {
		logger.Debug(ctx, "Telegram not configured; skipping send", "outcome", outcome)
		return nil
	}

	body := map[string]string{
		"chat_id": t.chatID,
		"text":    t.Message(cash, outcome),
	}
	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := t.client.PostJSON(ctx, "/bot"+t.token+"/sendMessage", body, &out); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if !out.OK {
		return errors.New("telegram: " + out.Description)
	}
	logger.Debug(ctx, "Telegram message sent", "outcome", outcome)
	return nil
}
