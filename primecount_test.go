package primecount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimwalisch/primecount-go/internal/imath"
)

// TestP3BoundaryScenario is spec.md §8 boundary scenario 5.
func TestP3BoundaryScenario(t *testing.T) {
	got, err := P3(context.Background(), 1_000_000, 4, 2, nil)
	require.NoError(t, err)
	require.Equal(t, int64(37478), got)
}

// TestS2TrivialBoundaryScenario is spec.md §8 boundary scenario 6: the
// result must match the naive double loop from (R1), here evaluated
// directly rather than re-deriving it via P3/B since S2_trivial's own
// naive form is exercised in internal/kernels.
func TestS2TrivialBoundaryScenario(t *testing.T) {
	x, y, z, c := uint64(1_000_000), uint64(125), uint64(8000), int64(6)

	got, err := S2Trivial(context.Background(), imath.FromUint64(x), y, z, c, 2, nil)
	require.NoError(t, err)
	require.True(t, got.Fits64())

	want := naiveS2Trivial(x, y, z, c)
	require.Equal(t, want, int64(got.Uint64()))
}

func isPrimeForTest(n uint64) bool {
	if n < 2 {
		return false
	}
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

func piForTest(n uint64) int64 {
	var count int64
	for i := uint64(2); i <= n; i++ {
		if isPrimeForTest(i) {
			count++
		}
	}
	return count
}

func nthPrimeForTest(c int64) uint64 {
	var count int64
	for n := uint64(2); ; n++ {
		if isPrimeForTest(n) {
			count++
			if count == c {
				return n
			}
		}
	}
}

// naiveS2Trivial is spec.md §8 (R1)'s naive double loop, specialized
// to the trivial-leaf identity S2_trivial already reduces to (every
// leaf here satisfies phi(x/p, b-1) == pi(x/p) - (b-1) trivially
// since x/p < p^2 forces no further sieving).
func naiveS2Trivial(x, y, z uint64, c int64) int64 {
	primeC := nthPrimeForTest(c)
	sqrtz := imath.Isqrt(z)
	start := sqrtz
	if primeC > start {
		start = primeC
	}
	start++
	piY := piForTest(y)

	var sum int64
	for p := start; p <= y; p++ {
		if !isPrimeForTest(p) {
			continue
		}
		xn := x / (p * p)
		if xn < p {
			xn = p
		}
		if xn > y {
			xn = y
		}
		sum += piY - piForTest(xn)
	}
	return sum
}

// TestR3ThreadCountInvariance is spec.md §8 (R3): for a fixed x, the
// kernel result must be byte-identical across thread counts.
func TestR3ThreadCountInvariance(t *testing.T) {
	x := imath.FromUint64(200_000)
	y := uint64(25)

	want, err := B(x, y, 1, nil)
	require.NoError(t, err)

	for _, threads := range []int{1, 2, 4, 8} {
		got, err := B(x, y, threads, nil)
		require.NoError(t, err)
		require.Equalf(t, want, got, "threads=%d", threads)
	}
}

// TestR3ThreadCountInvarianceP3 is spec.md §8 (R3) applied to P3.
func TestR3ThreadCountInvarianceP3(t *testing.T) {
	want, err := P3(context.Background(), 200_000, 3, 1, nil)
	require.NoError(t, err)

	for _, threads := range []int{1, 2, 4, 8} {
		got, err := P3(context.Background(), 200_000, 3, threads, nil)
		require.NoError(t, err)
		require.Equalf(t, want, got, "threads=%d", threads)
	}
}
