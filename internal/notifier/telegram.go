package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

// telegramMaxText is the sendMessage text limit
const telegramMaxText = 4096

type telegramSender struct {
	baseURL  string
	botToken string
	client   *http.Client
	logger   logger.Logger
}

// NewTelegramSender posts messages through the Telegram bot API. The message
// recipient is the chat id.
func NewTelegramSender(cfg config.TelegramConfig, log logger.Logger) Sender {
	return &telegramSender{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		botToken: cfg.BotToken,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   log,
	}
}

func (s *telegramSender) Notify(ctx context.Context, msg Message) error {
	if s.botToken == "" || msg.Recipient == "" {
		return fmt.Errorf("%w: telegram notifier misconfigured", ErrDelivery)
	}

	text := msg.Subject + "\n\n" + msg.Body
	if utf8.RuneCountInString(text) > telegramMaxText {
		text = string([]rune(text)[:telegramMaxText-3]) + "..."
	}

	form := url.Values{}
	form.Set("chat_id", msg.Recipient)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: new request: %w", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := s.do(req); err != nil {
		return fmt.Errorf("%w: send message: %w", ErrDelivery, err)
	}

	for _, path := range msg.Attachments {
		if err := s.sendDocument(ctx, msg.Recipient, path); err != nil {
			return fmt.Errorf("%w: send document %s: %w", ErrDelivery, filepath.Base(path), err)
		}
	}

	s.logger.Info(ctx, "Telegram message sent to chat %s", msg.Recipient)
	return nil
}

func (s *telegramSender) sendDocument(ctx context.Context, chatID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", chatID); err != nil {
		return err
	}
	part, err := w.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("sendDocument"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func (s *telegramSender) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.botToken, method)
}

func (s *telegramSender) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		// the request URL carries the bot token
		var ue *url.Error
		if errors.As(err, &ue) {
			return fmt.Errorf("do request: %w", ue.Err)
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
