package notify

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	endpoint string
	chatID   string
	client   *http.Client
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewTelegram creates a notifier posting to {apiURL}/bot{token}/sendMessage.
func NewTelegram(apiURL, token, chatID string) *Telegram {
	return &Telegram{
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", apiURL, token),
		chatID:   chatID,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// Notify posts text with Markdown parse mode.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.NotifierError(err, "encode telegram message").Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NotifierError(err, "build telegram request").Build()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The endpoint embeds the bot token; never surface the URL.
		var uerr *url.Error
		if stderrors.As(err, &uerr) {
			err = uerr.Err
		}
		return errors.NotifierError(err, "send telegram message").Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NotifierError(fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)), "telegram rejected message").
			WithContext("status", resp.StatusCode).
			Build()
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections.
func (t *Telegram) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
