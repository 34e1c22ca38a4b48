// Package kernels implements C8, the partial-sum special-leaf
// kernels: A and B (Gourdon), P2 (the LMO/DR generalization B is a
// simplified version of), P3, and S2_trivial. Grounded on
// original_source/src/gourdon/A.cpp, gourdon/B.cpp,
// original_source/src/P3.cpp and
// original_source/src/deleglise-rivat/S2_trivial.cpp; parallelism and
// reduction are reimplemented against internal/parallel and
// internal/pitable rather than OpenMP pragmas.
package kernels

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/log"

	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/primes"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// logger is the ambient kernel entry/exit logger (SPEC_FULL.md's
// ambient-stack expansion), gated by config.VerboseLog, mirroring
// primecount.cpp's print_log calls.
var logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(logWriter{}))

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	fmt.Print(string(p))
	return len(p), nil
}

func logEntry(kernel string, kv ...interface{}) {
	if !config.VerboseLog() {
		return
	}
	args := append([]interface{}{"kernel", kernel, "event", "enter"}, kv...)
	logger.Log(args...)
}

func logExit(kernel string, start time.Time, result fmt.Stringer) {
	if !config.VerboseLog() {
		return
	}
	logger.Log("kernel", kernel, "event", "exit", "seconds", time.Since(start).Seconds(), "result", result.String())
}

// recorderOrNop substitutes status.Nop() for a nil Recorder, matching
// every constructor in internal/balancer.
func recorderOrNop(rec status.Recorder) status.Recorder {
	if rec == nil {
		return status.Nop()
	}
	return rec
}

// generatePrimes returns every prime <= limit, ascending, 1-indexed
// by convention at every call site below (index 0 is unused padding)
// so that `primes[i]` matches the original C++'s 1-based `primes[i]`
// indexing exactly. Grounded on generate_primes<T>() in
// original_source/src/P3.cpp and gourdon/A.cpp.
func generatePrimes(limit uint64) ([]uint64, error) {
	sieve := primes.NewSegmentedSieve(limit)
	it := sieve.Forward(0, limit)

	result := []uint64{0} // index 0 padding; primes[1] is the first prime, 2.
	for {
		p, err := it.NextPrime()
		if err == primes.ErrExhausted {
			break
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

type int128Stringer struct{ v imath.Int128 }

func (s int128Stringer) String() string { return s.v.String() }

// sieveForward returns a ForwardIterator over [0, limit] backed by the
// default segmented sieve, the same one generatePrimes uses, for
// feeding pitable.New.
func sieveForward(limit uint64) primes.ForwardIterator {
	return primes.NewSegmentedSieve(limit).Forward(0, limit)
}
