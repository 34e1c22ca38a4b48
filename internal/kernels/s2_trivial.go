package kernels

import (
	"context"
	"math"
	"time"

	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/parallel"
	"github.com/kimwalisch/primecount-go/internal/pitable"
	"github.com/kimwalisch/primecount-go/internal/primes"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// S2Trivial computes the contribution of the trivial special leaves
// (spec.md §4.4): sqrtz = floor(sqrt(z)); prime_c = the c-th prime;
// start = max(prime_c, sqrtz) + 1; partition [start, y] into threads
// equal stripes, each worker summing pi(y) - pi(max(floor(x/p^2), p))
// over the primes p in its stripe.
//
// Grounded on
// original_source/src/deleglise-rivat/S2_trivial.cpp's
// S2_trivial_OpenMP; JSON checkpoint/resume is out of scope per
// spec.md §1.
func S2Trivial(ctx context.Context, x imath.Int128, y, z uint64, c int64, threads int, rec status.Recorder) (imath.Int128, error) {
	rec = recorderOrNop(rec)
	startTime := time.Now()
	logEntry("S2_trivial", "y", y, "z", z, "c", c, "threads", threads)

	threads = config.IdealThreads(threads, y, 10_000_000)

	pt, err := pitable.New(y, sieveForward(y))
	if err != nil {
		return imath.Int128{}, err
	}
	piY := pt.Pi(y)
	sqrtz := imath.Isqrt(z)
	primeC, err := nthPrime(c)
	if err != nil {
		return imath.Int128{}, err
	}
	start := imath.MaxU64(primeC, sqrtz) + 1

	rsd := status.NewRSDTracker()
	total, err := parallel.ForEachReduce(ctx, 0, uint64(threads), threads, func(_ context.Context, threadIdx uint64) (int64, error) {
		unitStart := time.Now()
		threadDistance := imath.CeilDiv(subNonNeg(y, start), uint64(threads))
		stripeStart := start + threadDistance*threadIdx
		stripeStop := imath.MinU64(stripeStart+threadDistance, y)
		if stripeStart >= stripeStop {
			return 0, nil
		}

		it := primes.NewSegmentedSieve(stripeStop).Forward(stripeStart, stripeStop)
		var local int64
		for {
			p, err := it.NextPrime()
			if err == primes.ErrExhausted || p >= stripeStop {
				break
			}
			if err != nil {
				return 0, err
			}
			p2, overflow := imath.MulU64Checked(p, p)
			xOverP2 := uint64(0)
			if !overflow {
				xOverP2 = divInt128ByU64(x, p2)
			}
			xn := imath.MaxU64(xOverP2, p)
			local += piY - pt.Pi(imath.MinU64(xn, y))
		}
		rsd.Record(time.Since(unitStart).Seconds())
		rec.ObserveSkewedPercent("S2_trivial", status.SkewedPercent(imath.FromUint64(threadIdx+1), imath.FromUint64(uint64(threads))))
		rec.ObserveLoadBalance("S2_trivial", status.LoadBalance(rsd.RSDPercent()))
		return local, nil
	})
	if err != nil {
		return imath.Int128{}, err
	}

	result := imath.FromUint64(uint64(total))
	rec.ObserveKernelDuration("S2_trivial", time.Since(startTime).Seconds())
	logExit("S2_trivial", startTime, int128Stringer{result})
	return result, nil
}

// nthPrime returns the c-th prime (1-indexed; nthPrime(0) is defined
// as 1, matching original_source's convention that prime_c acts as a
// lower sieving bound even when c==0).
func nthPrime(c int64) (uint64, error) {
	if c <= 0 {
		return 1, nil
	}
	// A loose upper bound (n*(ln n + ln ln n)) comfortably covers the
	// c-th prime for any c this engine deals with; if this guess
	// undershoots, the sieve is rebuilt with twice the limit.
	limit := primeUpperBound(uint64(c))
	for {
		sieve := primes.NewSegmentedSieve(limit)
		it := sieve.Forward(0, limit)
		var p uint64
		var err error
		for i := int64(0); i < c; i++ {
			p, err = it.NextPrime()
			if err == primes.ErrExhausted {
				break
			}
			if err != nil {
				return 0, err
			}
		}
		if err == nil {
			return p, nil
		}
		limit *= 2
	}
}

// primeUpperBound loosely bounds the n-th prime via the standard
// n*(ln n + ln ln n) estimate, used only to size the sieve nthPrime
// retries against.
func primeUpperBound(n uint64) uint64 {
	if n < 6 {
		return 15
	}
	f := float64(n)
	lnF := math.Log(f)
	return uint64(f*(lnF+math.Log(lnF))) + 10
}
