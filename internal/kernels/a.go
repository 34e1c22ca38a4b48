package kernels

import (
	"context"
	"math/bits"
	"time"

	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/parallel"
	"github.com/kimwalisch/primecount-go/internal/pitable"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// A computes Gourdon's A(x, y) formula (spec.md §4.4):
//
//	x13 = floor(x^(1/3)); start = max(floor(x^(1/4)), floor(x/y^2));
//	max_prime = floor(sqrt(x/start)); sum over b in (pi(start), pi(x13)]
//	of sum over j in (b, pi(sqrt(x/primes[b]))] of pi(xn) * (xn<y ? 2 : 1),
//	where xn = floor((x/primes[b]) / primes[j]).
//
// Grounded on original_source/src/gourdon/A.cpp's A_OpenMP.
func A(ctx context.Context, x imath.Int128, y uint64, threads int, rec status.Recorder) (imath.Int128, error) {
	rec = recorderOrNop(rec)
	startTime := time.Now()
	logEntry("A", "y", y, "threads", threads)

	x13 := x.Iroot(3)
	y2, y2Overflow := imath.MulU64Checked(y, y)
	xOverY2 := uint64(0)
	if !y2Overflow {
		xOverY2 = divInt128ByU64(x, y2)
	}
	start := imath.MaxU64(x.Iroot(4), xOverY2)

	xOverStart := divInt128ByU64(x, imath.MaxU64(start, 1))
	maxPrime := imath.Isqrt(xOverStart)

	primesList, err := generatePrimes(maxPrime)
	if err != nil {
		return imath.Int128{}, err
	}

	threads = config.IdealThreads(threads, uint64(x13), 1000)

	sqrtX := x.Isqrt()
	sieve := sieveForward(sqrtX)
	pt, err := pitable.New(sqrtX, sieve)
	if err != nil {
		return imath.Int128{}, err
	}

	piX13 := pt.Pi(x13)
	piStart := pt.Pi(imath.MinU64(start, sqrtX))

	sumApprox := imath.FromUint64(uint64(piX13))
	rsd := status.NewRSDTracker()
	total, err := parallel.ForEachReduce(ctx, uint64(piStart)+1, uint64(piX13)+1, threads, func(_ context.Context, b uint64) (int64, error) {
		unitStart := time.Now()
		prime := primesList[b]
		x2 := divideInt128(x, prime)
		maxJ := pt.Pi(x2.Isqrt())

		var sum int64
		for j := b + 1; j <= uint64(maxJ); j++ {
			xn := x2.FastDiv64(primesList[j])
			piXn := pt.Pi(xn)
			if xn < y {
				sum += 2 * piXn
			} else {
				sum += piXn
			}
		}
		rsd.Record(time.Since(unitStart).Seconds())
		rec.ObserveSkewedPercent("A", status.SkewedPercent(imath.FromUint64(b), sumApprox))
		rec.ObserveLoadBalance("A", status.LoadBalance(rsd.RSDPercent()))
		return sum, nil
	})
	if err != nil {
		return imath.Int128{}, err
	}

	result := imath.FromUint64(uint64(total))
	rec.ObserveKernelDuration("A", time.Since(startTime).Seconds())
	logExit("A", startTime, int128Stringer{result})
	return result, nil
}

// divInt128ByU64 divides x by d (both conceptually unsigned), returning
// a uint64 quotient. Used for the tuning-bound computations (start,
// max_prime) where the quotient is known to fit 64 bits given this
// engine's parameter ranges (x up to ~10^27, d at least x^(1/4)-scale).
func divInt128ByU64(x imath.Int128, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	if x.Fits64() {
		return x.Uint64() / d
	}
	q, _ := divmod128by64(x.Hi, x.Lo, d)
	if !q.Fits64() {
		return ^uint64(0)
	}
	return q.Lo
}

// divideInt128 returns floor(x/p) as an Int128 (not reduced to
// uint64), since the quotient can still exceed 64 bits for the
// largest x this engine handles — matching A_OpenMP's templated `T
// x2 = x / prime`.
func divideInt128(x imath.Int128, p uint64) imath.Int128 {
	if x.Fits64() {
		return imath.FromUint64(x.Uint64() / p)
	}
	q, r := divmod128by64(x.Hi, x.Lo, p)
	_ = r
	return q
}

// divmod128by64 performs long division of a 128-bit dividend (hi:lo)
// by a 64-bit divisor, returning the full 128-bit quotient and the
// 64-bit remainder. math/bits.Div64 only accepts dividends whose
// quotient fits in 64 bits (hi < divisor); this steps one 64-bit
// digit at a time instead, exactly the schoolbook technique used to
// extend it, so division remains exact even when hi >= divisor.
func divmod128by64(hi, lo, d uint64) (imath.Int128, uint64) {
	qHi, rHi := hi/d, hi%d
	qLo, rLo := bits.Div64(rHi, lo, d)
	return imath.Int128{Hi: qHi, Lo: qLo}, rLo
}
