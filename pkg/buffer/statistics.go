package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks queue performance metrics.
type Statistics struct {
	// Atomic counters for thread-safe updates
	enqueues int64
	dequeues int64
	grows    int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Enqueue records a queue write operation.
func (s *Statistics) Enqueue() {
	atomic.AddInt64(&s.enqueues, 1)
}

// Dequeue records a queue read operation.
func (s *Statistics) Dequeue() {
	atomic.AddInt64(&s.dequeues, 1)
}

// Grow records a capacity growth event.
func (s *Statistics) Grow() {
	atomic.AddInt64(&s.grows, 1)
}

// UpdateSize records the current queue depth.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
}

// Enqueues returns the total number of enqueue operations.
func (s *Statistics) Enqueues() int64 {
	return atomic.LoadInt64(&s.enqueues)
}

// Dequeues returns the total number of dequeue operations.
func (s *Statistics) Dequeues() int64 {
	return atomic.LoadInt64(&s.dequeues)
}

// Grows returns the number of capacity growth events.
func (s *Statistics) Grows() int64 {
	return atomic.LoadInt64(&s.grows)
}

// Size returns the most recently recorded queue depth.
func (s *Statistics) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest observed queue depth.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Uptime returns how long the queue has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
