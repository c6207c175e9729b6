package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"MarketScanner/internal/model"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier posts a short report summary via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *resty.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, timeout time.Duration) *TelegramNotifier {
	client := resty.New().
		SetBaseURL(telegramAPI).
		SetTimeout(timeout)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramNotifier{BotToken: botToken, ChatID: chatID, Client: client}
}

// Configured reports whether both the bot token and chat id are set.
func (t *TelegramNotifier) Configured() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	resp, err := t.Client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    t.ChatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post("/bot" + t.BotToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// FormatTelegramSummary formats the report for a Telegram HTML message.
func FormatTelegramSummary(r *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market Breadth</b> | %s\n\n", r.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Signal: <b>%s</b>\n", html.EscapeString(r.Signal.Label)))
	b.WriteString(fmt.Sprintf("MBR: %s (%s)\n\n", Fixed(r.Ratio, 4), Signed(r.Delta, 4)))
	if len(r.Candidates) == 0 {
		b.WriteString("No bullish candidates today.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("🚀 <b>Bullish watchlist</b> (%d)\n", len(r.Candidates)))
	for _, c := range r.Candidates {
		b.WriteString(fmt.Sprintf("  %s [%s] %s | RS %s | SL %s\n",
			html.EscapeString(c.Symbol), html.EscapeString(c.Sector),
			Fixed(c.Price, 2), Signed(c.RSScore, 2), Fixed(c.StopLoss, 2)))
	}
	return b.String()
}
