// Package status implements spec.md §4.5's S2Status: throttled
// percent-complete reporting for the long-running special-leaf
// kernels (A, B, P3, S2_trivial). Grounded on
// original_source/src/primecount.cpp's status-printing cadence
// (print at most once every ~0.1s) and the teacher's
// core/bsp.go-style single-writer-under-lock bookkeeping, but
// reimplemented against golang.org/x/time/rate for the throttle and
// github.com/prometheus/client_golang for the optional metrics sink,
// per SPEC_FULL.md's ambient-stack expansion (§4.7).
package status

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/kimwalisch/primecount-go/internal/config"
	"github.com/kimwalisch/primecount-go/internal/imath"
)

// statusPrintInterval mirrors original_source's ~10Hz status cadence.
const statusPrintInterval = 100 * time.Millisecond

// Recorder is the observability sink every balancer/kernel reports
// progress to, per SPEC_FULL.md §4.7.
type Recorder interface {
	// ObserveSkewedPercent reports the current skewed-percent estimate
	// (spec.md §4.5's "skewed" completion heuristic, which front-loads
	// the reported percentage since early special leaves are cheaper
	// than late ones) for one named kernel.
	ObserveSkewedPercent(kernel string, percent float64)
	// ObserveLoadBalance reports spec.md §4.5's load_balance percent
	// (100 minus the relative standard deviation of recent worker
	// completion times, clamped to [0,100] — see LoadBalance).
	ObserveLoadBalance(kernel string, loadBalancePercent float64)
	// ObserveKernelDuration reports one completed kernel invocation's
	// wall-clock duration.
	ObserveKernelDuration(kernel string, seconds float64)
}

// NopRecorder discards every observation; the default a nil Recorder
// is replaced with.
type NopRecorder struct{}

// Nop returns a Recorder that discards every observation.
func Nop() Recorder { return NopRecorder{} }

func (NopRecorder) ObserveSkewedPercent(string, float64)  {}
func (NopRecorder) ObserveLoadBalance(string, float64)    {}
func (NopRecorder) ObserveKernelDuration(string, float64) {}

// SkewedPercent computes spec.md §4.5's skewed completion percentage:
// the linear ratio 100*sumTotal/sumApprox warped through a convex
// curve so the first half of work reports slower progress than it
// actually is (matching the skewed special-leaf distribution, where
// early leaves are cheaper than late ones). Clamped to [0, 100].
//
// Grounded verbatim on original_source/src/primecount.cpp's
// print_percent: base = 0.95 + percent/2100 (itself derived from the
// linear percent), then percent is remapped through pow(base, ·)
// and rescaled back into [0, 100].
func SkewedPercent(sumTotal, sumApprox imath.Int128) float64 {
	if sumApprox.Cmp(imath.FromUint64(0)) <= 0 {
		return 0
	}
	linear := imath.InBetweenF(0, 100*sumTotal.Float64()/sumApprox.Float64(), 100)

	base := 0.95 + linear/2100
	min := math.Pow(base, 100.0)
	max := math.Pow(base, 0.0)
	warped := 100 - imath.InBetweenF(0, 100*(math.Pow(base, linear)-min)/(max-min), 100)
	return imath.InBetweenF(0, warped, 100)
}

// rsdWindow is spec.md §4.5's "last K work durations" sample size.
const rsdWindow = 20

// RSDTracker accumulates the most recent per-work-unit durations for
// one kernel invocation and reports their relative standard deviation
// (sample stddev / mean, in percent) — spec.md §4.5's RSD(work_times),
// the load-balance quality signal. Safe for concurrent Record calls
// from many workers.
type RSDTracker struct {
	mu      sync.Mutex
	samples [rsdWindow]float64
	count   int
	next    int
}

// NewRSDTracker returns an empty tracker.
func NewRSDTracker() *RSDTracker { return &RSDTracker{} }

// Record appends one completed work unit's duration, evicting the
// oldest sample once the window is full.
func (t *RSDTracker) Record(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = seconds
	t.next = (t.next + 1) % rsdWindow
	if t.count < rsdWindow {
		t.count++
	}
}

// RSDPercent returns the relative standard deviation of the current
// window, in percent, or 0 if fewer than two samples have been
// recorded or the mean is zero.
func (t *RSDTracker) RSDPercent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count < 2 {
		return 0
	}

	var sum float64
	for i := 0; i < t.count; i++ {
		sum += t.samples[i]
	}
	mean := sum / float64(t.count)
	if mean == 0 {
		return 0
	}

	var sqDiff float64
	for i := 0; i < t.count; i++ {
		d := t.samples[i] - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(t.count-1))
	return 100 * stddev / mean
}

// LoadBalance computes spec.md §4.5's load_balance = clamp(0, 100 -
// RSD(work_times) + 0.5, 100), grounded verbatim on
// original_source/src/primecount.cpp's print_percent
// ("100 - rsd + 0.5").
func LoadBalance(rsdPercent float64) float64 {
	return imath.InBetweenF(0, 100-rsdPercent+0.5, 100)
}

// PrometheusRecorder reports progress as Prometheus gauge/histogram
// vectors keyed by kernel name, and — when config.PrintStatus is
// enabled — throttles a human-readable line to stderr via
// rate.Sometimes, matching the "print status at most N times per
// second" behaviour original_source/src/primecount.cpp implements
// with a plain elapsed-time check.
type PrometheusRecorder struct {
	percent  *prometheus.GaugeVec
	balance  *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	printer  rate.Sometimes
}

// NewPrometheusRecorder registers this recorder's metrics with reg
// (pass prometheus.DefaultRegisterer, or a private registry in
// tests).
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	percent := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "primecount_kernel_percent_complete",
		Help: "Skewed estimate of completion percentage for a prime-counting kernel.",
	}, []string{"kernel"})
	balance := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "primecount_kernel_load_balance_percent",
		Help: "Load-balance quality percent (100 - RSD of worker completion times).",
	}, []string{"kernel"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "primecount_kernel_duration_seconds",
		Help:    "Wall-clock duration of a completed kernel invocation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kernel"})

	if reg != nil {
		reg.MustRegister(percent, balance, duration)
	}

	return &PrometheusRecorder{
		percent:  percent,
		balance:  balance,
		duration: duration,
		printer:  rate.Sometimes{Interval: statusPrintInterval},
	}
}

func (r *PrometheusRecorder) ObserveSkewedPercent(kernel string, percent float64) {
	r.percent.WithLabelValues(kernel).Set(percent)
	if !config.PrintStatus() {
		return
	}
	r.printer.Do(func() {
		fmt.Fprintf(os.Stderr, "\r%s %.1f%%", kernel, percent)
	})
}

func (r *PrometheusRecorder) ObserveLoadBalance(kernel string, loadBalancePercent float64) {
	r.balance.WithLabelValues(kernel).Set(loadBalancePercent)
}

func (r *PrometheusRecorder) ObserveKernelDuration(kernel string, seconds float64) {
	r.duration.WithLabelValues(kernel).Observe(seconds)
}
