package buffer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sea-shanty-2/clustering/errors"
	"github.com/sea-shanty-2/clustering/metric"
)

func TestFIFOOrder(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	for i := 0; i < 10; i++ {
		v, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestGrowPreservesOrder(t *testing.T) {
	q, err := New[int](2)
	require.NoError(t, err)

	// Wrap the ring before growing: enqueue, dequeue, enqueue past capacity.
	require.NoError(t, q.Enqueue(0))
	require.NoError(t, q.Enqueue(1))
	v, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	for i := 2; i < 9; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.GreaterOrEqual(t, q.Cap(), 8)
	assert.Positive(t, q.Stats().Grows())

	for i := 1; i < 9; i++ {
		v, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestEnqueueBatchAndDequeueBatch(t *testing.T) {
	q, err := New[string](2)
	require.NoError(t, err)

	require.NoError(t, q.EnqueueBatch([]string{"a", "b", "c", "d", "e"}))
	assert.Equal(t, 5, q.Len())

	batch := q.DequeueBatch(3)
	assert.Equal(t, []string{"a", "b", "c"}, batch)

	// Asking for more than available drains the rest.
	batch = q.DequeueBatch(10)
	assert.Equal(t, []string{"d", "e"}, batch)

	assert.Nil(t, q.DequeueBatch(3))
	assert.Nil(t, q.DequeueBatch(0))
}

func TestCloseRejectsWritesButAllowsDrain(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(1))

	require.NoError(t, q.Close())

	err = q.Enqueue(2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	require.Error(t, q.EnqueueBatch([]int{3}))

	// Items enqueued before Close stay readable.
	v, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestClear(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)
	require.NoError(t, q.EnqueueBatch([]int{1, 2, 3}))

	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	// Still usable after Clear.
	require.NoError(t, q.Enqueue(9))
	v, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestConcurrentProducersSingleConsumer(t *testing.T) {
	q, err := New[int](8)
	require.NoError(t, err)

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, q.Enqueue(base*perProducer+i))
			}
		}(p)
	}

	seen := make(map[int]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(seen) < producers*perProducer {
			if v, ok := q.TryDequeue(); ok {
				assert.False(t, seen[v], "duplicate item %d", v)
				seen[v] = true
			}
		}
	}()

	wg.Wait()
	<-done

	assert.Len(t, seen, producers*perProducer)
	assert.Equal(t, int64(producers*perProducer), q.Stats().Enqueues())
	assert.Equal(t, int64(producers*perProducer), q.Stats().Dequeues())
}

func TestStatsTrackDepth(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.Equal(t, int64(6), q.Stats().Size())
	assert.Equal(t, int64(6), q.Stats().MaxSize())

	q.DequeueBatch(6)
	assert.Equal(t, int64(0), q.Stats().Size())
	assert.Equal(t, int64(6), q.Stats().MaxSize())
}

func TestWithMetricsRegistersCollectors(t *testing.T) {
	reg := metric.NewMetricsRegistry()

	q, err := New(4, WithMetrics[int](reg, "ingest"))
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(1))

	// Registering a second queue with the same prefix collides.
	_, err = New(4, WithMetrics[int](reg, "ingest"))
	require.Error(t, err)

	// A different prefix is fine.
	_, err = New(4, WithMetrics[int](reg, fmt.Sprintf("ingest-%d", 2)))
	require.NoError(t, err)
}
