// Package buffer provides the generic, thread-safe FIFO queue that
// decouples stream producers from the engine's maintenance loop.
//
// The queue is a growable ring: writes never block and never drop. When
// the ring is full its capacity doubles, since the engine's error
// contract forbids silent loss of an enqueued point. Reads are
// non-blocking and report absence when the queue is empty.
//
// Statistics are always collected for observability. Prometheus metrics
// can additionally be enabled via the WithMetrics functional option.
package buffer
