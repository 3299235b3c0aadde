package notifier

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

const subject = "New Video Notification"

// Composer turns a detected item and its pipeline result into a Message.
type Composer struct {
	excerptChars int
	policy       *bluemonday.Policy
}

// NewComposer creates a Composer that cuts transcript excerpts to excerptChars
// runes. Zero or less omits the excerpt.
func NewComposer(excerptChars int) *Composer {
	return &Composer{
		excerptChars: excerptChars,
		policy:       bluemonday.StrictPolicy(),
	}
}

// Compose builds the notification for item. Missing summary or transcript
// sections are left out, the message is produced even for an empty result.
func (c *Composer) Compose(recipient string, channel models.ChannelRef, item models.Item, result models.PipelineResult) Message {
	var b strings.Builder
	b.WriteString("A new video has been uploaded to the channel you subscribed to:\n\n")
	if channel.Name != "" {
		fmt.Fprintf(&b, "Channel: %s\n", c.plain(channel.Name))
	}
	fmt.Fprintf(&b, "Title: %s\nURL: %s", c.plain(item.Title), item.URL)

	if result.HasSummary() {
		fmt.Fprintf(&b, "\n\nSummary:\n%s", strings.TrimSpace(*result.Summary))
	}
	if result.HasTranscript() && c.excerptChars > 0 {
		fmt.Fprintf(&b, "\n\nTranscript excerpt:\n%s", truncate(strings.TrimSpace(*result.Transcript), c.excerptChars))
	}
	if !result.HasSummary() && !result.HasTranscript() {
		b.WriteString("\n\nNo transcript or summary could be produced for this video.")
	}

	return Message{
		Recipient: recipient,
		Subject:   subject,
		Body:      b.String(),
	}
}

// plain strips markup from text coming from the content source
func (c *Composer) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
