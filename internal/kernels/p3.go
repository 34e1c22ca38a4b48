package kernels

import (
	"context"
	"fmt"
	"time"

	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/parallel"
	"github.com/kimwalisch/primecount-go/internal/pitable"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// P3 computes the 3rd partial sieve function (spec.md §4.4): the
// count of numbers <= x with exactly 3 prime factors each exceeding
// the a-th prime. Grounded on original_source/src/P3.cpp.
func P3(ctx context.Context, x uint64, a int64, threads int, rec status.Recorder) (int64, error) {
	rec = recorderOrNop(rec)
	startTime := time.Now()
	logEntry("P3", "x", x, "a", a, "threads", threads)

	// pi(x/(primes[i]*primes[j])) is looked up for values up to
	// x/primes[a+1]^2, which exceeds sqrt(x) whenever primes[a+1] <
	// x^(1/4), so the prime list must reach that far too.
	limit := imath.Isqrt(x)
	firstPrime, err := nthPrime(a + 1)
	if err != nil {
		return 0, err
	}
	if sq := firstPrime * firstPrime; sq <= x && x/sq > limit {
		limit = x / sq
	}
	primesList, err := generatePrimes(limit)
	if err != nil {
		return 0, err
	}

	y := imath.Iroot3(x)
	piY := piBsearch(primesList, y)

	threads = config.IdealThreads(threads, uint64(piY), 100)

	rsd := status.NewRSDTracker()
	sum, err := parallel.ForEachReduce(ctx, uint64(a)+1, uint64(piY)+1, threads, func(_ context.Context, i uint64) (int64, error) {
		unitStart := time.Now()
		xi := x / primesList[i]
		bi := piBsearch(primesList, imath.Isqrt(xi))

		var local int64
		for j := i; j <= uint64(bi); j++ {
			local += piBsearch(primesList, xi/primesList[j]) - int64(j-1)
		}
		rsd.Record(time.Since(unitStart).Seconds())
		rec.ObserveSkewedPercent("P3", status.SkewedPercent(imath.FromUint64(i), imath.FromUint64(uint64(piY))))
		rec.ObserveLoadBalance("P3", status.LoadBalance(rsd.RSDPercent()))
		return local, nil
	})
	if err != nil {
		return 0, err
	}

	rec.ObserveKernelDuration("P3", time.Since(startTime).Seconds())
	logExit("P3", startTime, int64Stringer{sum})
	return sum, nil
}

// piBsearch counts primes <= n within a generatePrimes-shaped,
// 1-indexed slice (index 0 is unused 0 padding, not a prime),
// stripping that sentinel before delegating to pitable.Bsearch, whose
// own contract is a plain ascending prime slice with no padding.
// Passing the sentinel straight through overcounts by exactly one
// (the sentinel's 0 always satisfies "<= n"), which previously made
// P3 overshoot both piY/bi and every inner term by one prime.
func piBsearch(primesList []uint64, n uint64) int64 {
	return pitable.Bsearch(primesList[1:], n)
}

type int64Stringer struct{ v int64 }

func (s int64Stringer) String() string {
	return fmt.Sprintf("%d", s.v)
}
