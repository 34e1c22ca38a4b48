// Package parallel implements C10, the parallel-for-with-reduction
// abstraction the A, P3 and S2_trivial kernels build their worker
// fan-out on (B and P2 start their own per-round goroutines). Grounded on the teacher's BSP partitioning
// scheme (core/bsp.go: contiguous N/T chunks, one goroutine per
// chunk, a join barrier) generalized from file-block indices to an
// arbitrary integer range, and reimplemented against
// golang.org/x/sync/errgroup for goroutine lifecycle and first-error
// propagation instead of the teacher's manual sync.WaitGroup plus
// mutex-guarded firstErr.
package parallel

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kimwalisch/primecount-go/internal/aligned"
)

// Range is a half-open integer interval [Low, High) assigned to one
// worker.
type Range struct {
	Low, High uint64
}

// Partition splits [low, high) into n contiguous chunks, BSP-style
// (teacher's "thread 0 takes first N/T, thread 1 takes next N/T").
// Chunks beyond the available work are empty.
func Partition(low, high uint64, n int) []Range {
	if n < 1 {
		n = 1
	}
	total := high - low
	chunk := (total + uint64(n) - 1) / uint64(n)
	ranges := make([]Range, n)
	for i := 0; i < n; i++ {
		start := low + uint64(i)*chunk
		end := start + chunk
		if start > high {
			start = high
		}
		if end > high {
			end = high
		}
		ranges[i] = Range{Low: start, High: end}
	}
	return ranges
}

// ForEachReduce runs fn once per index in [low, high) across n
// worker goroutines operating on contiguous BSP-style partitions,
// each accumulating into its own cache-line-padded slot (avoiding the
// false sharing spec.md §5 calls out), then sums every slot into the
// returned total. If any fn call returns an error, the first one is
// returned (wrapped with errors.Wrapf, naming the worker's range and
// the failing index) and the partial sum is not meaningful.
func ForEachReduce(ctx context.Context, low, high uint64, n int, fn func(ctx context.Context, i uint64) (int64, error)) (int64, error) {
	ranges := Partition(low, high, n)
	slots := aligned.New[int64](len(ranges), aligned.CacheLineSize)

	g, gctx := errgroup.WithContext(ctx)
	for idx, r := range ranges {
		idx, r := idx, r
		g.Go(func() error {
			var acc int64
			for i := r.Low; i < r.High; i++ {
				v, err := fn(gctx, i)
				if err != nil {
					return errors.Wrapf(err, "worker range [%d,%d): index %d", r.Low, r.High, i)
				}
				acc += v
			}
			slots.Set(idx, acc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total int64
	for i := 0; i < slots.Len(); i++ {
		total += slots.Get(i)
	}
	return total, nil
}
