package parallel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionCoversRangeWithoutOverlap(t *testing.T) {
	ranges := Partition(10, 103, 4)
	require.Len(t, ranges, 4)

	var covered uint64
	prevHigh := uint64(10)
	for _, r := range ranges {
		require.Equal(t, prevHigh, r.Low)
		require.GreaterOrEqual(t, r.High, r.Low)
		covered += r.High - r.Low
		prevHigh = r.High
	}
	require.Equal(t, uint64(103), prevHigh)
	require.Equal(t, uint64(93), covered)
}

func TestPartitionHandlesMoreWorkersThanWork(t *testing.T) {
	ranges := Partition(0, 2, 8)
	require.Len(t, ranges, 8)
	var nonEmpty int
	for _, r := range ranges {
		if r.High > r.Low {
			nonEmpty++
		}
	}
	require.Equal(t, 2, nonEmpty)
}

func TestForEachReduceSumsAllIndices(t *testing.T) {
	total, err := ForEachReduce(context.Background(), 1, 101, 4, func(_ context.Context, i uint64) (int64, error) {
		return int64(i), nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(5050), total)
}

func TestForEachReducePropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ForEachReduce(context.Background(), 0, 100, 4, func(_ context.Context, i uint64) (int64, error) {
		if i == 42 {
			return 0, boom
		}
		return 1, nil
	})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}
