package buffer

import (
	"sync"

	"github.com/sea-shanty-2/clustering/errors"
)

// Queue is a thread-safe growable FIFO ring buffer.
type Queue[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // Points to the next write position
	tail     int // Points to the next read position
	closed   bool

	stats   *Statistics   // ALWAYS initialized for observability
	metrics *queueMetrics // Optional Prometheus metrics
}

// New creates a queue with the given initial capacity.
// Returns an error if metrics registration fails when requested.
func New[T any](capacity int, options ...Option[T]) (*Queue[T], error) {
	if capacity <= 0 {
		capacity = 1 // Minimum capacity
	}

	opts := applyOptions(options...)

	// Stats are always initialized - observability is not optional.
	stats := NewStatistics()

	var metrics *queueMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newQueueMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Queue", "New", "metrics registration")
		}
	}

	return &Queue[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    stats,
		metrics:  metrics,
	}, nil
}

// grow doubles the ring capacity, preserving FIFO order.
// Caller must hold q.mu.
func (q *Queue[T]) grow() {
	items := make([]T, q.capacity*2)
	for i := 0; i < q.size; i++ {
		items[i] = q.items[(q.tail+i)%q.capacity]
	}
	q.items = items
	q.capacity *= 2
	q.tail = 0
	q.head = q.size

	q.stats.Grow()
	if q.metrics != nil {
		q.metrics.recordGrow(q.capacity)
	}
}

// Enqueue appends an item. It never blocks and never drops; a full ring
// grows instead. Returns an error only after Close.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.WrapInvalid(errors.ErrQueueClosed, "Queue", "Enqueue", "queue closed")
	}

	if q.size == q.capacity {
		q.grow()
	}

	q.items[q.head] = item
	q.head = (q.head + 1) % q.capacity
	q.size++

	q.stats.Enqueue()
	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordEnqueue(q.size)
	}

	return nil
}

// EnqueueBatch appends items in order. FIFO is preserved for items
// enqueued by the same caller.
func (q *Queue[T]) EnqueueBatch(items []T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.WrapInvalid(errors.ErrQueueClosed, "Queue", "EnqueueBatch", "queue closed")
	}

	for _, item := range items {
		if q.size == q.capacity {
			q.grow()
		}
		q.items[q.head] = item
		q.head = (q.head + 1) % q.capacity
		q.size++
		q.stats.Enqueue()
	}

	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordEnqueue(q.size)
	}

	return nil
}

// TryDequeue removes and returns the oldest item. Returns the zero value
// and false when the queue is empty. It never blocks.
func (q *Queue[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.items[q.tail]
	q.items[q.tail] = zero // Clear for GC
	q.tail = (q.tail + 1) % q.capacity
	q.size--

	q.stats.Dequeue()
	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordDequeue(q.size)
	}

	return item, true
}

// DequeueBatch removes and returns up to max items in FIFO order.
func (q *Queue[T]) DequeueBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil
	}

	count := max
	if count > q.size {
		count = q.size
	}

	result := make([]T, count)
	var zero T
	for i := 0; i < count; i++ {
		result[i] = q.items[q.tail]
		q.items[q.tail] = zero
		q.tail = (q.tail + 1) % q.capacity
		q.size--
		q.stats.Dequeue()
	}

	q.stats.UpdateSize(int64(q.size))
	if q.metrics != nil {
		q.metrics.recordDequeue(q.size)
	}

	return result
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size
}

// Cap returns the current ring capacity.
func (q *Queue[T]) Cap() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.capacity
}

// Clear removes all queued items.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.head = 0
	q.tail = 0
	q.size = 0

	q.stats.UpdateSize(0)
	if q.metrics != nil {
		q.metrics.updateDepth(0)
	}
}

// Stats returns queue statistics (always available for observability).
func (q *Queue[T]) Stats() *Statistics {
	return q.stats
}

// Close rejects further writes. Queued items remain readable so a consumer
// can drain before teardown.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
