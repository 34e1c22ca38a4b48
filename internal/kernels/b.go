package kernels

import (
	"time"

	"github.com/kimwalisch/primecount-go/internal/aligned"
	"github.com/kimwalisch/primecount-go/internal/clock"
	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/primes"
	"github.com/kimwalisch/primecount-go/internal/status"
)

const bMinThreadDistance = 1 << 23

// B computes Gourdon's B(x, y) formula (spec.md §4.4):
// Sum_{i: y < primes[i] <= sqrt(x)} pi(x/primes[i]), via running
// prime counts instead of an O(1) table. B is the y-anchored special
// case of P2 (a = pi(y)); see P2 below.
//
// Grounded on original_source/src/gourdon/B.cpp's B_OpenMP/B_thread.
func B(x imath.Int128, y uint64, threads int, rec status.Recorder) (imath.Int128, error) {
	return p2(x, y, 0, threads, rec, "B")
}

// P2 computes the general two-prime-factor partial sieve
// Sum_{i: a < i, y < primes[i] <= sqrt(x)} pi(x/primes[i]) (SPEC_FULL.md
// §4.4's addition): P2(x, y, a, threads), where a is an explicit
// prime-index threshold applied on top of y. Calling P2 with a == 0
// reduces exactly to B.
//
// Grounded on original_source/src/gourdon/B.cpp's own doc comment
// describing B as "a simplified version of P2.cpp".
func P2(x imath.Int128, y uint64, a int64, threads int, rec status.Recorder) (imath.Int128, error) {
	return p2(x, y, a, threads, rec, "P2")
}

func p2(x imath.Int128, y uint64, a int64, threads int, rec status.Recorder, kernel string) (imath.Int128, error) {
	rec = recorderOrNop(rec)
	startTime := time.Now()
	logEntry(kernel, "y", y, "a", a, "threads", threads)

	if x.Cmp(imath.FromUint64(4)) < 0 {
		return imath.FromUint64(0), nil
	}
	if threads <= 0 {
		threads = config.Threads()
	}

	sum := int64(0)
	pixTotal := int64(0)

	low := uint64(2)
	if a > 0 {
		primeA, err := nthPrime(a)
		if err != nil {
			return imath.Int128{}, err
		}
		y = imath.MaxU64(y, primeA)
	}
	z := divInt128ByU64(x, imath.MaxU64(y, 1))
	threadDistance := uint64(bMinThreadDistance)
	balanceStart := clock.Now()
	rsd := status.NewRSDTracker()

	for low < z {
		maxThreads := imath.CeilDiv(z-low, threadDistance)
		n := int(imath.InBetween(1, int64(threads), int64(maxThreads)))
		if n < 1 {
			n = 1
		}

		pix := aligned.New[int64](n, aligned.CacheLineSize)
		pixCounts := aligned.New[int64](n, aligned.CacheLineSize)
		sums := aligned.New[int64](n, aligned.CacheLineSize)

		errCh := make(chan error, n)
		for i := 0; i < n; i++ {
			i := i
			go func() {
				workerStart := time.Now()
				s, p, c, err := bThread(x, y, z, low, uint64(i), threadDistance)
				rsd.Record(time.Since(workerStart).Seconds())
				sums.Set(i, s)
				pix.Set(i, p)
				pixCounts.Set(i, c)
				errCh <- err
			}()
		}
		for i := 0; i < n; i++ {
			if err := <-errCh; err != nil {
				return imath.Int128{}, err
			}
		}

		low += threadDistance * uint64(n)
		threadDistance = balanceLoad(threadDistance, low, z, n, balanceStart)
		balanceStart = clock.Now()

		for i := 0; i < n; i++ {
			sum += sums.Get(i)
			sum += pixTotal * pixCounts.Get(i)
			pixTotal += pix.Get(i)
		}

		percent := status.SkewedPercent(imath.FromUint64(low), imath.FromUint64(z))
		rec.ObserveSkewedPercent(kernel, percent)
		rec.ObserveLoadBalance(kernel, status.LoadBalance(rsd.RSDPercent()))
	}

	result := imath.FromUint64(uint64(sum))
	rec.ObserveKernelDuration(kernel, time.Since(startTime).Seconds())
	logExit(kernel, startTime, int128Stringer{result})
	return result, nil
}

// balanceLoad adjusts thread_distance, doubling it when an iteration
// took under a minute and halving it when over, clamped to
// [min_distance, ceil((z-low)/threads)] — verbatim from
// original_source/src/gourdon/B.cpp's balanceLoad.
func balanceLoad(threadDistance, low, z uint64, threads int, start float64) uint64 {
	seconds := clock.Now() - start
	maxDistance := imath.CeilDiv(subNonNeg(z, low), uint64(imath.MaxI64(int64(threads), 1)))

	td := int64(threadDistance)
	if seconds < 60 {
		td *= 2
	}
	if seconds > 60 {
		td /= 2
	}
	clamped := imath.InBetween(bMinThreadDistance, td, int64(imath.MaxU64(maxDistance, bMinThreadDistance)))
	return uint64(clamped)
}

func subNonNeg(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// bThread computes one worker's stripe [low+i*td, min(z, low+(i+1)*td))
// of B's sum, counting primes with one reverse iterator (over
// candidate primes p with x/p inside the stripe) and one forward
// iterator (accumulating running pi(x/p) as p decreases), per
// original_source/src/gourdon/B.cpp's B_thread.
func bThread(x imath.Int128, y, z, low, threadNum, threadDistance uint64) (sum, pix, pixCount int64, err error) {
	lo := low + threadDistance*threadNum
	hi := imath.MinU64(lo+threadDistance, z)

	start := imath.MaxU64(divInt128ByU64(x, imath.MaxU64(hi, 1)), y)
	stop := imath.MinU64(divInt128ByU64(x, imath.MaxU64(lo, 1)), x.Isqrt())

	rit := primes.NewSegmentedSieve(stop + 1).Reverse(stop, start)
	it := primes.NewSegmentedSieve(imath.MaxU64(hi, 1)).Forward(lo, hi)

	next, nextErr := it.NextPrime()
	prime, primeErr := rit.PrevPrime()

	countPrimes := func(stopAt uint64) int64 {
		var count int64
		for nextErr == nil && next <= stopAt {
			count++
			next, nextErr = it.NextPrime()
		}
		return count
	}

	for primeErr == nil && prime > start {
		xp := divInt128ByU64(x, prime)
		if xp >= hi {
			break
		}
		pix += countPrimes(xp)
		pixCount++
		sum += pix
		prime, primeErr = rit.PrevPrime()
	}
	pix += countPrimes(subNonNeg(hi, 1))

	return sum, pix, pixCount, nil
}
