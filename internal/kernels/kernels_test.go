package kernels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimwalisch/primecount-go/internal/imath"
)

func isPrime(n uint64) bool {
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

func bruteForcePi(n uint64) int64 {
	var count int64
	for i := uint64(2); i <= n; i++ {
		if isPrime(i) {
			count++
		}
	}
	return count
}

// bruteForceB directly evaluates Sum_{i: y < primes[i] <= sqrt(x)} pi(x/primes[i]).
func bruteForceB(x, y uint64) int64 {
	sqrtX := imath.Isqrt(x)
	var sum int64
	for p := uint64(2); p <= sqrtX; p++ {
		if !isPrime(p) || p <= y {
			continue
		}
		sum += bruteForcePi(x / p)
	}
	return sum
}

func TestBMatchesBruteForce(t *testing.T) {
	x := uint64(100000)
	y := uint64(20)
	want := bruteForceB(x, y)

	got, err := B(imath.FromUint64(x), y, 4, nil)
	require.NoError(t, err)
	require.True(t, got.Fits64())
	require.Equal(t, want, int64(got.Uint64()))
}

func TestP2WithZeroAMatchesB(t *testing.T) {
	x := uint64(50000)
	y := uint64(15)

	wantB, err := B(imath.FromUint64(x), y, 2, nil)
	require.NoError(t, err)

	gotP2, err := P2(imath.FromUint64(x), y, 0, 2, nil)
	require.NoError(t, err)

	require.Equal(t, wantB, gotP2)
}

// bruteForceP3 directly evaluates P3(x, a): numbers <= x with exactly
// 3 prime factors each exceeding the a-th prime.
func bruteForceP3(x uint64, a int64) int64 {
	var primesUpTo []uint64
	for i := uint64(2); i <= x; i++ {
		if isPrime(i) {
			primesUpTo = append(primesUpTo, i)
		}
	}
	if a >= int64(len(primesUpTo)) {
		return 0
	}
	var count int64
	for i := a; i < int64(len(primesUpTo)); i++ {
		p1 := primesUpTo[i]
		for j := i; j < int64(len(primesUpTo)); j++ {
			p2 := primesUpTo[j]
			if p1*p2 > x {
				break
			}
			for k := j; k < int64(len(primesUpTo)); k++ {
				p3 := primesUpTo[k]
				if p1*p2*p3 > x {
					break
				}
				count++
			}
		}
	}
	return count
}

func TestP3MatchesBruteForce(t *testing.T) {
	x := uint64(2000)
	want := bruteForceP3(x, 2)

	got, err := P3(context.Background(), x, 2, 2, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// bruteForceS2Trivial directly evaluates the trivial-leaf sum.
func bruteForceS2Trivial(x, y, z uint64, c int64) int64 {
	primeC, _ := nthPrime(c)
	sqrtz := imath.Isqrt(z)
	start := imath.MaxU64(primeC, sqrtz) + 1
	piY := bruteForcePi(y)

	var sum int64
	for p := start; p <= y; p++ {
		if !isPrime(p) {
			continue
		}
		xn := imath.MaxU64(x/(p*p), p)
		if xn > y {
			xn = y
		}
		sum += piY - bruteForcePi(xn)
	}
	return sum
}

func TestS2TrivialMatchesBruteForce(t *testing.T) {
	x := uint64(100000)
	y := uint64(50)
	z := uint64(200)
	c := int64(2)

	want := bruteForceS2Trivial(x, y, z, c)

	got, err := S2Trivial(context.Background(), imath.FromUint64(x), y, z, c, 2, nil)
	require.NoError(t, err)
	require.True(t, got.Fits64())
	require.Equal(t, want, int64(got.Uint64()))
}

func TestNthPrime(t *testing.T) {
	p, err := nthPrime(1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p)

	p, err = nthPrime(5)
	require.NoError(t, err)
	require.Equal(t, uint64(11), p)

	p, err = nthPrime(100)
	require.NoError(t, err)
	require.Equal(t, uint64(541), p)
}

func TestAIsNonNegativeForSmallX(t *testing.T) {
	got, err := A(context.Background(), imath.FromUint64(100000), 10, 2, nil)
	require.NoError(t, err)
	require.True(t, got.Fits64())
	require.Less(t, got.Uint64(), uint64(1)<<63, "int64 total must not have gone negative")
}
