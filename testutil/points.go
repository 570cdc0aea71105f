// Package testutil provides shared fixtures for the clustering test
// suites: a concrete stream point type and polling helpers.
//
// Tests construct their own engine instances and tear them down
// explicitly; nothing in this package holds shared state.
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sea-shanty-2/clustering/pkg/retry"
	"github.com/sea-shanty-2/clustering/point"
)

// Iface hints:
var (
	_ point.Point    = Streamer{}
	_ point.Temporal = Streamer{}
)

// Streamer is a minimal stream element: a broadcaster at a 2-D position
// with an arrival timestamp.
type Streamer struct {
	Key  string
	X, Y float64
	Seen time.Time
}

// NewStreamer creates a streamer that arrived just now.
func NewStreamer(id string, x, y float64) Streamer {
	return Streamer{Key: id, X: x, Y: y, Seen: time.Now()}
}

// StreamerAt creates a streamer with an explicit arrival time.
func StreamerAt(id string, x, y float64, seen time.Time) Streamer {
	return Streamer{Key: id, X: x, Y: y, Seen: seen}
}

// ID returns the streamer's stable identity.
func (s Streamer) ID() string { return s.Key }

// Vec returns the streamer's position.
func (s Streamer) Vec() []float64 { return []float64{s.X, s.Y} }

// ArrivalTime returns when the streamer was observed.
func (s Streamer) ArrivalTime() time.Time { return s.Seen }

var errCondition = errors.New("condition not met")

// WaitFor polls cond with backoff until it returns true or the timeout
// elapses, then fails the test.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := retry.Config{
		MaxAttempts:  int(timeout / (5 * time.Millisecond)),
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   1.5,
	}
	err := retry.Do(ctx, cfg, func() error {
		if cond() {
			return nil
		}
		return errCondition
	})
	if err != nil {
		t.Fatalf("timed out after %v: %s", timeout, msg)
	}
}
