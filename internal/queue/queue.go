// Package queue provides the bounded FIFO queues that connect the
// pipeline stages. Producers block on a full queue rather than drop;
// this is the system's backpressure mechanism.
package queue

import (
	"context"

	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
)

// Queue is a bounded FIFO with blocking Put/Get. It is a thin wrapper
// around a buffered channel that adds context cancellation and depth
// reporting.
type Queue[T any] struct {
	name string
	ch   chan T
}

// New creates a queue with the given capacity. name labels the queue's
// depth gauge.
func New[T any](name string, capacity int) *Queue[T] {
	return &Queue[T]{
		name: name,
		ch:   make(chan T, capacity),
	}
}

// Put blocks until the item is enqueued or ctx is cancelled.
func (q *Queue[T]) Put(ctx context.Context, item T) error {
	select {
	case q.ch <- item:
		metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.ch)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPut enqueues without blocking. Returns false if the queue is full.
func (q *Queue[T]) TryPut(item T) bool {
	select {
	case q.ch <- item:
		metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.ch)))
		return true
	default:
		return false
	}
}

// Get blocks until an item is available or ctx is cancelled.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	select {
	case item := <-q.ch:
		metrics.QueueDepth.WithLabelValues(q.name).Set(float64(len(q.ch)))
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Len returns the current queue depth.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
