package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

func strPtr(s string) *string { return &s }

func TestComposerCompose(t *testing.T) {
	channel := models.ChannelRef{Name: "Go Talks", ID: "UC1"}
	item := models.Item{ID: "v2", Title: "Tips & <b>Tricks</b>", URL: "https://www.youtube.com/watch?v=v2"}

	t.Run("should include summary and truncated excerpt", func(t *testing.T) {
		msg := NewComposer(5).Compose("me@example.com", channel, item, models.PipelineResult{
			Transcript: strPtr("abcdefghij"),
			Summary:    strPtr("short summary"),
		})

		assert.Equal(t, "me@example.com", msg.Recipient)
		assert.Equal(t, "New Video Notification", msg.Subject)
		assert.Contains(t, msg.Body, "Title: Tips & Tricks\n")
		assert.Contains(t, msg.Body, "URL: https://www.youtube.com/watch?v=v2")
		assert.Contains(t, msg.Body, "Channel: Go Talks")
		assert.Contains(t, msg.Body, "Summary:\nshort summary")
		assert.Contains(t, msg.Body, "Transcript excerpt:\nabcde...")
		assert.NotContains(t, msg.Body, "No transcript")
	})

	t.Run("should keep transcript only result", func(t *testing.T) {
		msg := NewComposer(100).Compose("r", channel, item, models.PipelineResult{Transcript: strPtr("hello")})
		assert.NotContains(t, msg.Body, "Summary:")
		assert.Contains(t, msg.Body, "Transcript excerpt:\nhello")
	})

	t.Run("should still describe the item for an empty result", func(t *testing.T) {
		msg := NewComposer(100).Compose("r", channel, item, models.PipelineResult{})
		assert.Contains(t, msg.Body, "URL: https://www.youtube.com/watch?v=v2")
		assert.Contains(t, msg.Body, "No transcript or summary could be produced")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "hé...", truncate("héllo", 2))
}

func TestTelegramSender(t *testing.T) {
	var gotText, gotChat string
	var gotDocument bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/botTOKEN/sendMessage"):
			assert.NoError(t, r.ParseForm())
			gotChat = r.PostForm.Get("chat_id")
			gotText = r.PostForm.Get("text")
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/botTOKEN/sendDocument"):
			f, _, err := r.FormFile("document")
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(f)
			gotDocument = string(data) == "report"
			w.Write([]byte(`{"ok":true}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	t.Run("should post message and attachments", func(t *testing.T) {
		report := filepath.Join(t.TempDir(), "r.docx")
		require.NoError(t, os.WriteFile(report, []byte("report"), 0o644))

		s := NewTelegramSender(config.TelegramConfig{BotToken: "TOKEN", BaseURL: srv.URL}, logger.New("error"))
		err := s.Notify(context.Background(), Message{Recipient: "42", Subject: "S", Body: "B", Attachments: []string{report}})
		require.NoError(t, err)
		assert.Equal(t, "42", gotChat)
		assert.Equal(t, "S\n\nB", gotText)
		assert.True(t, gotDocument)
	})

	t.Run("should wrap api failures as delivery errors", func(t *testing.T) {
		s := NewTelegramSender(config.TelegramConfig{BotToken: "BAD", BaseURL: srv.URL}, logger.New("error"))
		err := s.Notify(context.Background(), Message{Recipient: "42", Subject: "S", Body: "B"})
		assert.ErrorIs(t, err, ErrDelivery)
		assert.NotContains(t, err.Error(), "BAD")
	})

	t.Run("should reject missing chat id", func(t *testing.T) {
		s := NewTelegramSender(config.TelegramConfig{BotToken: "TOKEN", BaseURL: srv.URL}, logger.New("error"))
		assert.ErrorIs(t, s.Notify(context.Background(), Message{}), ErrDelivery)
	})
}

func TestEmailSender(t *testing.T) {
	cfg := config.EmailConfig{Host: "127.0.0.1", Port: 1, Sender: "bot@example.com", Password: "pw"}

	t.Run("should build a plain text message", func(t *testing.T) {
		s := NewEmailSender(cfg, logger.New("error")).(*emailSender)
		m, err := s.buildMsg(Message{Recipient: "me@example.com", Subject: "New Video Notification", Body: "hi"})
		require.NoError(t, err)

		to, err := m.GetToString()
		require.NoError(t, err)
		require.Len(t, to, 1)
		assert.Contains(t, to[0], "me@example.com")
		assert.Equal(t, []string{"New Video Notification"}, m.GetGenHeader(mail.HeaderSubject))
	})

	t.Run("should reject invalid recipients", func(t *testing.T) {
		s := NewEmailSender(cfg, logger.New("error")).(*emailSender)
		_, err := s.buildMsg(Message{Recipient: "not an address"})
		assert.Error(t, err)
	})

	t.Run("should fail without credentials", func(t *testing.T) {
		s := NewEmailSender(config.EmailConfig{Host: "127.0.0.1", Port: 1}, logger.New("error"))
		assert.ErrorIs(t, s.Notify(context.Background(), Message{Recipient: "me@example.com"}), ErrDelivery)
	})

	t.Run("should wrap dial failures as delivery errors", func(t *testing.T) {
		s := NewEmailSender(cfg, logger.New("error"))
		err := s.Notify(context.Background(), Message{Recipient: "me@example.com", Subject: "s", Body: "b"})
		assert.ErrorIs(t, err, ErrDelivery)
	})
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Notify: config.NotifyConfig{Channel: "telegram"}}
	s, err := New(cfg, logger.New("error"))
	require.NoError(t, err)
	assert.IsType(t, &telegramSender{}, s)

	cfg.Notify.Channel = "pigeon"
	_, err = New(cfg, logger.New("error"))
	assert.Error(t, err)
}
