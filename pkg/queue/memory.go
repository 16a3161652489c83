// queue package

package queue

import "sync"

const (
	// DefaultQueueBufferSize is the capacity used when a non-positive size is requested.
	DefaultQueueBufferSize = 1024
)

// InMemoryQueue implements a bounded in-memory queue.
// Producers never block: Enqueue fails with ErrQueueFull instead.
type InMemoryQueue[T any] struct {
	ch   chan T
	lock sync.Mutex
}

var _ Queue[int] = &InMemoryQueue[int]{}

// NewInMemoryQueue creates a new queue with the given capacity.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	if size <= 0 {
		size = DefaultQueueBufferSize
	}
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads all pending messages in the queue in FIFO order.
func (q *InMemoryQueue[T]) ReadAllMessages() []T {
	q.lock.Lock()
	defer q.lock.Unlock()

	var messages []T
	for {
		select {
		case item := <-q.ch:
			messages = append(messages, item)
		default:
			return messages
		}
	}
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue[T]) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()

	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
