package status

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kimwalisch/primecount-go/internal/imath"
)

func TestSkewedPercentClampedAndZeroApprox(t *testing.T) {
	require.Equal(t, 0.0, SkewedPercent(imath.FromUint64(5), imath.FromUint64(0)))
	require.Equal(t, 0.0, SkewedPercent(imath.FromUint64(0), imath.FromUint64(100)))
	require.InDelta(t, 79.034, SkewedPercent(imath.FromUint64(50), imath.FromUint64(100)), 0.001)
	require.Equal(t, 100.0, SkewedPercent(imath.FromUint64(200), imath.FromUint64(100)))
}

// TestSkewedPercentWarpsSlowerThanLinear exercises spec.md §4.5's
// convex-curve requirement directly: at the midpoint of actual work,
// the reported percent must sit strictly above the unwarped linear
// ratio (the curve under-reports how much work remains early on).
func TestSkewedPercentWarpsSlowerThanLinear(t *testing.T) {
	linear := 50.0
	warped := SkewedPercent(imath.FromUint64(50), imath.FromUint64(100))
	require.Greater(t, warped, linear)
}

func TestRSDTrackerComputesRelativeStandardDeviation(t *testing.T) {
	tr := NewRSDTracker()
	require.Equal(t, 0.0, tr.RSDPercent(), "fewer than two samples reports 0")

	tr.Record(1.0)
	require.Equal(t, 0.0, tr.RSDPercent())

	tr.Record(1.0)
	require.Equal(t, 0.0, tr.RSDPercent(), "identical durations have zero spread")

	tr2 := NewRSDTracker()
	tr2.Record(8)
	tr2.Record(12)
	require.InDelta(t, 28.284, tr2.RSDPercent(), 0.01)
}

func TestLoadBalanceClampedToPercentRange(t *testing.T) {
	require.Equal(t, 100.0, LoadBalance(0))
	require.Equal(t, 0.0, LoadBalance(150))
	require.InDelta(t, 90.5, LoadBalance(10), 0.001)
}

func TestNopRecorderDiscardsObservations(t *testing.T) {
	var r Recorder = Nop()
	require.NotPanics(t, func() {
		r.ObserveSkewedPercent("A", 50)
		r.ObserveLoadBalance("A", 1.5)
		r.ObserveKernelDuration("A", 0.5)
	})
}

func TestPrometheusRecorderRegistersAndUpdatesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveSkewedPercent("A", 42)
	rec.ObserveLoadBalance("A", 3.2)
	rec.ObserveKernelDuration("A", 1.25)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metrics)
}
