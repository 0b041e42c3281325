package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email.
type Message struct {
	// From overrides the configured sender when set.
	From     string
	To       []string
	Subject  string
	TextBody string
	// HTMLBody is optional; with TextBody it produces multipart/alternative.
	HTMLBody string
}

// Mail delivers messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
