package notifier

import (
	"context"
	"errors"
)

// ErrDelivery wraps every failure handing a message to the transport.
var ErrDelivery = errors.New("notification delivery failed")

// Message is one notification ready for delivery.
type Message struct {
	Recipient   string
	Subject     string
	Body        string
	Attachments []string
}

// Sender delivers messages to a recipient
type Sender interface {
	Notify(ctx context.Context, msg Message) error
}
