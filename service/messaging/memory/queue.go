package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/vaultflow/internal/idgen"
	"github.com/viant/vaultflow/service/messaging"
)

var errProcessed = errors.New("message already processed")

// Config for memory queue
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Buffer     int
}

// DefaultConfig returns memory queue defaults
func DefaultConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: 100 * time.Millisecond, Buffer: 256}
}

// Message is an in-memory queue entry
type Message[T any] struct {
	ID      string
	Retries int
	Err     error
	payload T
	queue   *Queue[T]
	mu      sync.Mutex
	done    bool
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack marks the message processed
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return errProcessed
	}
	m.done = true
	return nil
}

// Nack redelivers the message after RetryDelay, or dead-letters it once
// MaxRetries is exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return errProcessed
	}
	m.done = true
	m.Err = err
	if m.Retries >= m.queue.config.MaxRetries {
		m.queue.deadLetter(m)
		return nil
	}
	retry := &Message[T]{ID: m.ID, Retries: m.Retries + 1, payload: m.payload, queue: m.queue}
	time.AfterFunc(m.queue.config.RetryDelay, func() {
		select {
		case m.queue.messages <- retry:
		default:
			m.queue.deadLetter(retry)
		}
	})
	return nil
}

// Queue is a bounded in-memory messaging.Queue. Publish never blocks.
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	mu       sync.Mutex
	dlq      []*Message[T]
}

// NewQueue creates a memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{messages: make(chan *Message[T], config.Buffer), config: config}
}

// Publish enqueues a copy of t, returning messaging.ErrQueueFull when the
// buffer is exhausted.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{ID: idgen.New(), payload: *t, queue: q}
	select {
	case q.messages <- msg:
		return nil
	default:
		return messaging.ErrQueueFull
	}
}

// Consume waits for the next message
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns number of queued messages
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DeadLetters returns messages that exhausted their retries
func (q *Queue[T]) DeadLetters() []*Message[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Message[T](nil), q.dlq...)
}

func (q *Queue[T]) deadLetter(m *Message[T]) {
	q.mu.Lock()
	q.dlq = append(q.dlq, m)
	q.mu.Unlock()
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
