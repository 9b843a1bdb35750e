package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRoundRobinFairness(t *testing.T) {
	const numExecutors = 4
	const tasks = 102 // deliberately not a multiple of 4

	s := NewScheduler(numExecutors, 2)
	defer s.Shutdown()

	for i := 0; i < tasks; i++ {
		_, err := s.Submit(func() (any, error) { return nil, nil })
		require.NoError(t, err)
	}
	s.WaitForAll()

	stats := s.AllStats()
	require.Len(t, stats, numExecutors)

	var total uint64
	ceil := uint64((tasks + numExecutors - 1) / numExecutors)
	for i, st := range stats {
		total += st.CompletedTasks
		for _, other := range stats {
			diff := int64(st.CompletedTasks) - int64(other.CompletedTasks)
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, int64(ceil), "executor %d completed count uneven", i)
		}
	}
	assert.Equal(t, uint64(tasks), total)

	// Pure round-robin is tighter than the ceiling bound: counts differ
	// by at most one.
	for _, st := range stats {
		assert.InDelta(t, float64(tasks)/numExecutors, float64(st.CompletedTasks), 1)
	}
}

func TestSchedulerThreadDivision(t *testing.T) {
	s := NewScheduler(2, 0)
	defer s.Shutdown()

	stats := s.AllStats()
	require.Len(t, stats, 2)
	for _, st := range stats {
		assert.GreaterOrEqual(t, st.Threads, 1)
	}
}

func TestSchedulerDefaultsToOneExecutor(t *testing.T) {
	s := NewScheduler(0, 1)
	defer s.Shutdown()
	assert.Equal(t, 1, s.Size())
}

func TestSchedulerSubmitBatch(t *testing.T) {
	s := NewScheduler(3, 1)
	defer s.Shutdown()

	items := []any{"a", "b", "c", "d", "e", "f", "g"}
	handles, err := s.SubmitBatch(func(item any) (any, error) {
		return item.(string) + "!", nil
	}, items)
	require.NoError(t, err)
	require.Len(t, handles, len(items))

	for i, h := range handles {
		v, err := h.Result()
		require.NoError(t, err)
		assert.Equal(t, items[i].(string)+"!", v)
	}
}

func TestSchedulerShutdownPropagates(t *testing.T) {
	s := NewScheduler(2, 1)
	s.Shutdown()

	_, err := s.Submit(func() (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrShutdown)
}
