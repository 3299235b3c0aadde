package notifier

import (
	"fmt"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

// New creates the Sender selected by notify.channel
func New(cfg *config.Config, log logger.Logger) (Sender, error) {
	switch cfg.Notify.Channel {
	case "", "email":
		return NewEmailSender(cfg.Email, log), nil
	case "telegram":
		return NewTelegramSender(cfg.Telegram, log), nil
	default:
		return nil, fmt.Errorf("unsupported notify channel %q", cfg.Notify.Channel)
	}
}
