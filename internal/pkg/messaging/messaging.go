package messaging

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/atomic"
)

var (
	// ErrDestinationRequired is returned when a publish or consume call has no topic.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned when the client has already been closed.
	ErrClosed = errors.New("messaging: client is closed")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source. Consume blocks until ctx is done
// or the underlying subscription fails.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. With auto-ack enabled a nil error
// acks the message and a non-nil error nacks it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning.
	Key     []byte
	Headers map[string]string
	// OrderingKey is used by Google Pub/Sub.
	OrderingKey string
}

// PublishResult carries broker publish metadata when available.
type PublishResult struct {
	MessageID string
	Timestamp time.Time
}

// Message is a broker-agnostic received message.
type Message interface {
	ID() string
	Source() string
	Body() []byte
	Header(key string) string
	Timestamp() time.Time
	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}

// delivery is the Message implementation shared by every driver. ack and
// nack run at most once between them.
type delivery struct {
	id      string
	source  string
	body    []byte
	headers map[string]string
	at      time.Time
	ack     func() error
	nack    func() error

	responded atomic.Bool
}

func (d *delivery) ID() string           { return d.id }
func (d *delivery) Source() string       { return d.source }
func (d *delivery) Body() []byte         { return d.body }
func (d *delivery) Timestamp() time.Time { return d.at }

func (d *delivery) Header(key string) string {
	if d.headers == nil {
		return ""
	}
	return d.headers[key]
}

func (d *delivery) Ack(ctx context.Context) error {
	return d.respond(ctx, d.ack)
}

func (d *delivery) Nack(ctx context.Context) error {
	return d.respond(ctx, d.nack)
}

func (d *delivery) respond(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) || fn == nil {
		return nil
	}
	return fn()
}

func (d *delivery) hasResponded() bool {
	return d.responded.Load()
}
