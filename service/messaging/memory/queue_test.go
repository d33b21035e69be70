package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/vaultflow/service/messaging"
)

type payload struct {
	ID    string
	Count int
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx := context.Background()

	assert.NoError(t, queue.Publish(ctx, &payload{ID: "p-1", Count: 1}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "p-1", message.T().ID)
	assert.Equal(t, 0, queue.Size())
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
	assert.Error(t, message.Nack(nil))
}

func TestQueue_Full(t *testing.T) {
	queue := NewQueue[payload](Config{Buffer: 2})
	ctx := context.Background()
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "2"}))
	assert.ErrorIs(t, queue.Publish(ctx, &payload{ID: "3"}), messaging.ErrQueueFull)
}

func TestQueue_Retries(t *testing.T) {
	queue := NewQueue[payload](Config{MaxRetries: 2, RetryDelay: 5 * time.Millisecond, Buffer: 4})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "retry"}))

	for attempt := 0; attempt <= 2; attempt++ {
		message, err := queue.Consume(ctx)
		if !assert.NoError(t, err, attempt) {
			return
		}
		assert.Equal(t, "retry", message.T().ID)
		assert.Equal(t, attempt, message.(*Message[payload]).Retries)
		assert.NoError(t, message.Nack(errors.New("failed")))
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	if dead := queue.DeadLetters(); assert.Len(t, dead, 1) {
		assert.EqualError(t, dead[0].Err, "failed")
	}
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[payload](Config{Buffer: 100})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	producers, perProducer := 10, 10
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &payload{ID: fmt.Sprintf("p%d-m%d", producer, j)}))
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < producers*perProducer; i++ {
		message, err := queue.Consume(ctx)
		if !assert.NoError(t, err) {
			return
		}
		seen[message.T().ID] = true
		assert.NoError(t, message.Ack())
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(ctx, &payload{ID: "x"}))

	timeout, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
