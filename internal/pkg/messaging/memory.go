package messaging

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultMemoryBuffer     = 64
	defaultMemoryRedelivery = 3
)

// ErrBufferFull is returned by the memory driver when a consumer group
// queue cannot take more messages.
var ErrBufferFull = errors.New("messaging: memory buffer is full")

// MemoryConfig configures the in-process implementation.
type MemoryConfig struct {
	// Buffer is the queue size per consumer group. Defaults to 64.
	Buffer int
	// MaxRedelivery caps how many times a nacked message is queued again.
	// Defaults to 3.
	MaxRedelivery int
}

// Memory is an in-process broker. Every consumer group of a topic receives
// each message once; consumers sharing a group split the messages between
// them. Messages published to a topic without consumers are discarded.
type Memory struct {
	buffer        int
	maxRedelivery int

	mu     sync.RWMutex
	queues map[string]map[string]*memoryQueue

	seq    atomic.Uint64
	closed atomic.Bool
	done   chan struct{}
}

type memoryQueue struct {
	ch        chan *delivery
	consumers int
}

// NewMemory constructs an in-process messaging client.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultMemoryBuffer
	}
	if cfg.MaxRedelivery <= 0 {
		cfg.MaxRedelivery = defaultMemoryRedelivery
	}

	return &Memory{
		buffer:        cfg.Buffer,
		maxRedelivery: cfg.MaxRedelivery,
		queues:        make(map[string]map[string]*memoryQueue),
		done:          make(chan struct{}),
	}
}

// Close stops every running consumer. It is safe to call more than once.
func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	close(m.done)
	return nil
}

// Publish fans the message out to every consumer group of destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if m.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	id := strconv.FormatUint(m.seq.Inc(), 10)
	now := time.Now()

	m.mu.RLock()
	queues := make([]*memoryQueue, 0, len(m.queues[destination]))
	for _, q := range m.queues[destination] {
		queues = append(queues, q)
	}
	m.mu.RUnlock()

	var errs error
	for _, q := range queues {
		d := &delivery{
			id:      id,
			source:  destination,
			body:    append([]byte(nil), msg.Body...),
			headers: maps.Clone(msg.Headers),
			at:      now,
		}
		if err := m.enqueue(q, d, 0); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return PublishResult{}, errs
	}

	return PublishResult{MessageID: id, Timestamp: now}, nil
}

func (m *Memory) enqueue(q *memoryQueue, d *delivery, attempt int) error {
	d.responded.Store(false)
	d.nack = func() error {
		if attempt >= m.maxRedelivery {
			return nil
		}
		retry := &delivery{id: d.id, source: d.source, body: d.body, headers: d.headers, at: d.at}
		return m.enqueue(q, retry, attempt+1)
	}

	select {
	case q.ch <- d:
		return nil
	default:
		return ErrBufferFull
	}
}

// Consume blocks and runs handler for every message of source until ctx is
// done or the client is closed.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if m.closed.Load() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	q := m.join(source, co.group)
	defer m.leave(source, co.group)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case d := <-q.ch:
					dispatch(ctx, "memory", d, handler, co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) join(topic, group string) *memoryQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, ok := m.queues[topic]
	if !ok {
		groups = make(map[string]*memoryQueue)
		m.queues[topic] = groups
	}
	q, ok := groups[group]
	if !ok {
		q = &memoryQueue{ch: make(chan *delivery, m.buffer)}
		groups[group] = q
	}
	q.consumers++
	return q
}

func (m *Memory) leave(topic, group string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[topic][group]
	if !ok {
		return
	}
	q.consumers--
	if q.consumers > 0 {
		return
	}
	delete(m.queues[topic], group)
	if len(m.queues[topic]) == 0 {
		delete(m.queues, topic)
	}
}
