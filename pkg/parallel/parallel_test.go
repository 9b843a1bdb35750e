package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/nativert/pkg/executor"
)

func TestForCoversEveryIndexOnce(t *testing.T) {
	const n = 10000
	counts := make([]atomic.Int32, n)

	err := For(0, n, func(i int) {
		counts[i].Add(1)
	})
	require.NoError(t, err)

	for i := range counts {
		require.Equal(t, int32(1), counts[i].Load(), "index %d", i)
	}
}

func TestForSmallRangeRunsSequentially(t *testing.T) {
	var order []int
	err := For(3, 10, func(i int) {
		order = append(order, i) // safe only because the range is below MinBatch
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, order)
}

func TestForEmptyRange(t *testing.T) {
	called := false
	require.NoError(t, For(5, 5, func(i int) { called = true }))
	require.NoError(t, For(9, 2, func(i int) { called = true }))
	assert.False(t, called)
}

func TestForWithExecutor(t *testing.T) {
	e := executor.New(4)
	defer e.Shutdown()

	const n = 5000
	var sum atomic.Int64
	err := For(0, n, func(i int) {
		sum.Add(int64(i))
	}, WithSubmitter(e), WithMinBatch(1))
	require.NoError(t, err)

	assert.Equal(t, int64(n*(n-1)/2), sum.Load())
}

func TestForWithScheduler(t *testing.T) {
	s := executor.NewScheduler(2, 2)
	defer s.Shutdown()

	const n = 2000
	var count atomic.Int64
	err := For(0, n, func(i int) {
		count.Add(1)
	}, WithSubmitter(s), WithChunkSize(100), WithMinBatch(1))
	require.NoError(t, err)
	assert.Equal(t, int64(n), count.Load())
}

func TestForChunkSizeOne(t *testing.T) {
	var count atomic.Int64
	err := For(0, 300, func(i int) {
		count.Add(1)
	}, WithChunkSize(1), WithMinBatch(1))
	require.NoError(t, err)
	assert.Equal(t, int64(300), count.Load())
}

func TestForPanicReported(t *testing.T) {
	err := For(0, 1000, func(i int) {
		if i == 500 {
			panic("bad index")
		}
	}, WithMinBatch(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad index")
}

func TestForPanicOnExecutorPath(t *testing.T) {
	e := executor.New(2)
	defer e.Shutdown()

	err := For(0, 1000, func(i int) {
		if i == 123 {
			panic("executor chunk fault")
		}
	}, WithSubmitter(e), WithMinBatch(1))
	require.Error(t, err)

	var fault *executor.WorkerFaultError
	assert.ErrorAs(t, err, &fault)
}

func TestForNilBody(t *testing.T) {
	assert.Error(t, For(0, 10, nil))
}
