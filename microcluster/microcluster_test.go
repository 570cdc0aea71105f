package microcluster

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sea-shanty-2/clustering/point"
	"github.com/sea-shanty-2/clustering/testutil"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestKindString(t *testing.T) {
	assert.Equal(t, "timeless", Timeless.String())
	assert.Equal(t, "temporal", Temporal.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestTimelessEmpty(t *testing.T) {
	c := NewTimeless[testutil.Streamer](point.Euclidean)

	assert.Equal(t, Timeless, c.Kind())
	assert.NotEmpty(t, c.ID())
	assert.Nil(t, c.Center(now))
	assert.Zero(t, c.Radius(now))
	assert.Zero(t, c.Weight(now))
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Points())
}

func TestTimelessCenterAndRadius(t *testing.T) {
	c := NewTimeless[testutil.Streamer](point.Euclidean)
	c.Insert(testutil.NewStreamer("a", 0, 0))
	c.Insert(testutil.NewStreamer("b", 4, 0))

	assert.Equal(t, []float64{2, 0}, c.Center(now))
	assert.Equal(t, 2.0, c.Radius(now))
	assert.Equal(t, 2.0, c.Weight(now))

	// Radius is centroid-to-member, not member-to-member: adding a third
	// point shifts the centroid and with it the radius.
	c.Insert(testutil.NewStreamer("c", 2, 3))
	center := c.Center(now)
	assert.Equal(t, []float64{2, 1}, center)
	assert.InDelta(t, math.Sqrt(4+1), c.Radius(now), 1e-12)
}

func TestTimelessRemove(t *testing.T) {
	c := NewTimeless[testutil.Streamer](point.Euclidean)
	c.Insert(testutil.NewStreamer("a", 0, 0))
	c.Insert(testutil.NewStreamer("dup", 1, 1))
	c.Insert(testutil.NewStreamer("dup", 2, 2))

	assert.Equal(t, 0, c.Remove("missing"))
	assert.Equal(t, 3, c.Len())

	// Remove deletes every member matching the identity.
	assert.Equal(t, 2, c.Remove("dup"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "a", c.Points()[0].Key)
}

func TestTimelessMerge(t *testing.T) {
	a := NewTimeless[testutil.Streamer](point.Euclidean)
	a.Insert(testutil.NewStreamer("a1", 0, 0))
	b := NewTimeless[testutil.Streamer](point.Euclidean)
	b.Insert(testutil.NewStreamer("b1", 2, 0))
	b.Insert(testutil.NewStreamer("b2", 4, 0))

	merged := a.Merge(b)
	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []float64{2, 0}, merged.Center(now))
	assert.NotEqual(t, a.ID(), merged.ID())

	// Inputs are untouched.
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, b.Len())
}

func TestTimelessPointsIsACopy(t *testing.T) {
	c := NewTimeless[testutil.Streamer](point.Euclidean)
	c.Insert(testutil.NewStreamer("a", 1, 1))

	pts := c.Points()
	pts[0] = testutil.NewStreamer("mutated", 9, 9)
	assert.Equal(t, "a", c.Points()[0].Key)
}

func TestTemporalDecayWeight(t *testing.T) {
	// lambda 1/s: weight halves every second.
	c := NewTemporal[testutil.Streamer](point.Euclidean, 1)
	c.Insert(testutil.StreamerAt("a", 0, 0, now))

	assert.InDelta(t, 1.0, c.Weight(now), 1e-12)
	assert.InDelta(t, 0.5, c.Weight(now.Add(time.Second)), 1e-12)
	assert.InDelta(t, 0.25, c.Weight(now.Add(2*time.Second)), 1e-12)

	// A member never contributes more than its full weight.
	assert.InDelta(t, 1.0, c.Weight(now.Add(-time.Minute)), 1e-12)
}

func TestTemporalWeightedCenterShiftsTowardFresh(t *testing.T) {
	c := NewTemporal[testutil.Streamer](point.Euclidean, 1)
	c.Insert(testutil.StreamerAt("old", 0, 0, now.Add(-2*time.Second)))
	c.Insert(testutil.StreamerAt("new", 4, 0, now))

	// Weights at t=now: old 0.25, new 1.0 -> center x = 4/1.25 = 3.2.
	center := c.Center(now)
	require.NotNil(t, center)
	assert.InDelta(t, 3.2, center[0], 1e-9)

	// Radius measured from the weighted center to the farthest member.
	assert.InDelta(t, 3.2, c.Radius(now), 1e-9)
}

func TestTemporalQuantitiesAreTimeDependent(t *testing.T) {
	c := NewTemporal[testutil.Streamer](point.Euclidean, 1)
	c.Insert(testutil.StreamerAt("a", 0, 0, now))
	c.Insert(testutil.StreamerAt("b", 10, 0, now.Add(5*time.Second)))

	early := c.Center(now.Add(time.Second))
	late := c.Center(now.Add(10 * time.Second))
	require.NotNil(t, early)
	require.NotNil(t, late)
	// The late query weights "b" more heavily relative to "a".
	assert.Less(t, early[0], late[0])
}

func TestTemporalRemoveAndEmpty(t *testing.T) {
	c := NewTemporal[testutil.Streamer](point.Euclidean, 0.5)
	c.Insert(testutil.StreamerAt("a", 1, 1, now))

	assert.Equal(t, 1, c.Remove("a"))
	assert.Zero(t, c.Len())
	assert.Nil(t, c.Center(now))
	assert.Zero(t, c.Radius(now))
	assert.Zero(t, c.Weight(now))
}

func TestTemporalFallsBackToNowForPlainPoints(t *testing.T) {
	c := NewTemporal[plainPoint](point.Euclidean, 1)
	c.Insert(plainPoint{id: "p", vec: []float64{1, 2}})

	// A freshly inserted plain point carries full weight.
	assert.InDelta(t, 1.0, c.Weight(time.Now()), 0.05)
}

type plainPoint struct {
	id  string
	vec []float64
}

func (p plainPoint) ID() string     { return p.id }
func (p plainPoint) Vec() []float64 { return p.vec }
