package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender delivers events through the Telegram Bot API.
type TelegramSender struct {
	cfg     TelegramConfig
	client  *http.Client
	apiBase string
}

// NewTelegramSender creates a Telegram Bot API sender.
func NewTelegramSender(cfg TelegramConfig) *TelegramSender {
	return &TelegramSender{
		cfg:     cfg,
		client:  &http.Client{},
		apiBase: telegramAPIBase,
	}
}

func (t *TelegramSender) Name() string { return KindTelegram }

func (t *TelegramSender) Send(ctx context.Context, event Event) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.cfg.BotToken)

	form := url.Values{}
	form.Set("chat_id", t.cfg.ChatID)
	form.Set("text", event.Title()+"\n"+event.Body())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}
