// Package primecount is the public kernel API of the parallel
// computation engine shared by the Lagarias–Miller–Odlyzko,
// Deléglise–Rivat, and Gourdon prime-counting algorithms: adaptive
// load balancing, a compressed π lookup table, and the A/B/P2/P3/
// S2_trivial partial-sum kernels. Algorithm dispatch (choosing which
// of those three algorithms to run for a given x), the CLI front-end,
// and checkpoint persistence are out of scope — see spec.md §1 — this
// package exposes the pure kernel functions an external dispatcher
// composes.
package primecount

import (
	"context"

	"github.com/kimwalisch/primecount-go/internal/balancer"
	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/kernels"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// Int128 is an unsigned 128-bit magnitude, re-exported so callers can
// construct and inspect x/result values without reaching into
// internal/imath directly.
type Int128 = imath.Int128

// FromUint64 builds an Int128 from a 64-bit value.
func FromUint64(n uint64) Int128 { return imath.FromUint64(n) }

// Recorder is the optional progress-telemetry sink every kernel
// reports to (spec.md §1's "optional progress telemetry"). Pass nil
// to disable.
type Recorder = status.Recorder

// NewPrometheusRecorder returns a Recorder publishing Prometheus
// metrics; see internal/status.NewPrometheusRecorder.
var NewPrometheusRecorder = status.NewPrometheusRecorder

// SetNumThreads sets the process-wide worker thread count, clamped to
// [1, runtime.NumCPU()].
func SetNumThreads(n int) { config.SetThreads(n) }

// SetPrintStatus enables or disables the throttled terminal progress
// printer.
func SetPrintStatus(enabled bool) { config.SetPrintStatus(enabled) }

// SetVerboseLog enables or disables per-kernel entry/exit logging.
func SetVerboseLog(enabled bool) { config.SetVerboseLog(enabled) }

// A computes Gourdon's A(x, y) special-leaf sum.
func A(ctx context.Context, x Int128, y uint64, threads int, rec Recorder) (Int128, error) {
	return kernels.A(ctx, x, y, threads, rec)
}

// B computes Gourdon's B(x, y) special-leaf sum.
func B(x Int128, y uint64, threads int, rec Recorder) (Int128, error) {
	return kernels.B(x, y, threads, rec)
}

// P2 computes the general two-prime-factor partial sieve function,
// the LMO/Deléglise–Rivat formula B(x, y) is a simplified version of.
func P2(x Int128, y uint64, a int64, threads int, rec Recorder) (Int128, error) {
	return kernels.P2(x, y, a, threads, rec)
}

// P3 computes the 3rd partial sieve function.
func P3(ctx context.Context, x uint64, a int64, threads int, rec Recorder) (int64, error) {
	return kernels.P3(ctx, x, a, threads, rec)
}

// S2Trivial computes the contribution of the trivial special leaves.
func S2Trivial(ctx context.Context, x Int128, y, z uint64, c int64, threads int, rec Recorder) (Int128, error) {
	return kernels.S2Trivial(ctx, x, y, z, c, threads, rec)
}

// NewLMOBalancer and NewGourdonBalancer expose the two adaptive
// load-balancer flavours (C6/C7) directly, for callers assembling
// their own hard-leaf (S2_hard-style) parallel sums on top of this
// engine's primitives — the engine's own A/B/P2/P3/S2_trivial kernels
// above use simpler, formula-specific parallel shapes (spec.md §9:
// "two shapes: static stripes... and dynamic pull-based via the
// LoadBalancer"), but the LoadBalancer itself is part of the public
// surface this package's purpose statement describes.
func NewLMOBalancer(x Int128, y, z uint64, alpha float64, s2Approx Int128, rec Recorder, kernelName string) *balancer.LMO {
	return balancer.NewLMO(x, y, z, alpha, s2Approx, rec, kernelName)
}

func NewGourdonBalancer(sieveLimit uint64, sumApprox Int128, rec Recorder, kernelName string) *balancer.Gourdon {
	return balancer.NewGourdon(sieveLimit, sumApprox, rec, kernelName)
}
