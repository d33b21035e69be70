package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by a non-blocking Publish when no capacity is left.
var ErrQueueFull = errors.New("queue is full")

// Queue is a typed message queue
type Queue[T any] interface {
	// Publish enqueues payload without waiting for a consumer
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a consumed queue entry
type Message[T any] interface {
	T() *T

	// Ack marks the message processed
	Ack() error

	// Nack marks the message failed; the queue may redeliver it
	Nack(err error) error
}
