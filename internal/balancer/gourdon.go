package balancer

import (
	"math"
	"sync"

	"github.com/kimwalisch/primecount-go/internal/clock"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/primes"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// Gourdon is the Gourdon-flavour load balancer (spec.md §4.3):
// segment_size grows first (doubling, capped at maxSegmentSize), and
// only once it has saturated does segments grow instead, scaled by a
// factor derived from the same runtime-feedback heuristic LMO uses.
// Grounded on original_source/src/gourdon/B.cpp's balanceLoad and
// spec.md §4.3 verbatim.
type Gourdon struct {
	mu sync.Mutex

	low            uint64
	sieveLimit     uint64
	segments       uint64
	segmentSize    uint64
	maxSegmentSize uint64
	sumTotal       imath.Int128
	sumApprox      imath.Int128
	startTime      float64

	recorder status.Recorder
	kernel   string
}

// NewGourdon constructs a Gourdon-flavour balancer sieving up to
// sieveLimit, with sumApprox the estimated total special-leaf sum
// used for skewed-percent progress reporting.
func NewGourdon(sieveLimit uint64, sumApprox imath.Int128, rec status.Recorder, kernel string) *Gourdon {
	if rec == nil {
		rec = status.Nop()
	}
	sqrtLimit := imath.Isqrt(sieveLimit)
	divisor := imath.MaxU64(1, imath.Ilog(sqrtLimit))
	segSize := primes.LegalSegmentSize(imath.MaxU64(512, sqrtLimit/divisor))
	maxSize := primes.LegalSegmentSize(imath.MaxU64(30*32768, sqrtLimit))

	return &Gourdon{
		low:            1,
		sieveLimit:     sieveLimit,
		segments:       1,
		segmentSize:    segSize,
		maxSegmentSize: maxSize,
		sumApprox:      sumApprox,
		startTime:      clock.Now(),
		recorder:       rec,
		kernel:         kernel,
	}
}

// GetWork returns the next work unit, growing segmentSize first (up
// to maxSegmentSize) and only then segments, per spec.md §4.3.
func (b *Gourdon) GetWork(delta imath.Int128, runtime clock.Runtime) (w Work, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	preAdvanceLow := b.low
	hadPriorWork := b.sumTotal.Cmp(imath.FromUint64(0)) > 0
	b.sumTotal = b.sumTotal.Add(delta)

	if hadPriorWork {
		if b.segmentSize < b.maxSegmentSize {
			b.segmentSize = imath.MinU64(b.segmentSize*2, b.maxSegmentSize)
		} else {
			b.updateSegments(runtime)
		}
	}

	w = Work{Low: b.low, Segments: b.segments, SegmentSize: b.segmentSize}
	b.low += b.segments * b.segmentSize

	percent := status.SkewedPercent(b.sumTotal, b.sumApprox)
	b.recorder.ObserveSkewedPercent(b.kernel, percent)

	return w, preAdvanceLow <= b.sieveLimit
}

// updateSegments implements spec.md §4.3's update_segments: grow or
// shrink segments by a bounded factor derived from remaining-time
// estimate over observed per-unit runtime.
func (b *Gourdon) updateSegments(runtime clock.Runtime) {
	percent := status.SkewedPercent(b.sumTotal, b.sumApprox)
	percent = imath.InBetweenF(10, percent, 100)

	now := clock.Now()
	remaining := (now - b.startTime) * (100/percent - 1)
	threshold := max64(max64(remaining/4, runtime.Init*10), 0.01)

	divider := max64(runtime.Work, 0.001)
	factor := threshold / divider

	if runtime.Work > 0.01 && runtime.Work > runtime.Init*1000 {
		factor = math.Min(factor, runtime.Init*1000/runtime.Work)
	}
	factor = imath.InBetweenF(0.5, factor, 2.0)

	newSegments := uint64(math.Round(float64(b.segments) * factor))
	if newSegments < 1 {
		newSegments = 1
	}
	b.segments = newSegments
}
