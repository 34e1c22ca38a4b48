// Package balancer implements the two load-balancer flavours spec.md
// §4.2/§4.3 describes: LMO/Deléglise–Rivat-style (segments grow
// first) and Gourdon-style (segment_size grows first, then
// segments). Both are grounded directly on
// original_source/src/LoadBalancer.cpp and
// original_source/src/gourdon/B.cpp's balanceLoad/update_segments
// logic. Mutation is confined to a single sync.Mutex-guarded critical
// section per balancer, matching spec.md §5 ("single-writer-under-
// lock").
package balancer

import (
	"sync"

	"github.com/kimwalisch/primecount-go/internal/clock"
	"github.com/kimwalisch/primecount-go/internal/imath"
	"github.com/kimwalisch/primecount-go/internal/status"
)

// Work describes one unit of sieving: segments consecutive segments
// of segment_size integers each, starting at low.
type Work struct {
	Low         uint64
	Segments    uint64
	SegmentSize uint64
}

// LMO is the LMO/Deléglise–Rivat-flavour load balancer (spec.md §4.2).
type LMO struct {
	mu sync.Mutex

	low              uint64
	limit            uint64
	segments         uint64
	segmentSize      uint64
	smallestHardLeaf uint64
	sumTotal         imath.Int128
	sumApprox        imath.Int128
	startTime        float64

	recorder status.Recorder
	kernel   string
}

// NewLMO constructs a balancer for kernel invocation parameters
// (x, y, z, alpha, s2Approx) per spec.md §4.2's "Configuration at
// construction".
func NewLMO(x imath.Int128, y, z uint64, alpha float64, s2Approx imath.Int128, rec status.Recorder, kernel string) *LMO {
	if rec == nil {
		rec = status.Nop()
	}
	sqrtz := imath.Isqrt(z)
	segSize := imath.NextPowerOf2(imath.MaxU64(512, sqrtz))

	b := &LMO{
		low:         1,
		limit:       z + 1,
		segments:    1,
		segmentSize: segSize,
		sumApprox:   s2Approx,
		startTime:   clock.Now(),
		recorder:    rec,
		kernel:      kernel,
	}
	b.smallestHardLeaf = smallestHardLeaf(x, y, alpha)
	return b
}

// smallestHardLeaf computes x / (y * sqrt(alpha) * x^(1/6)), spec.md
// §4.2's heuristic boundary past which most hard special leaves
// concentrate (spec.md §9's first Open Question: the exact formula is
// a load-balancing heuristic, not a correctness constraint, so the
// resolution here keeps the documented formula verbatim rather than
// substituting another one — see DESIGN.md).
func smallestHardLeaf(x imath.Int128, y uint64, alpha float64) uint64 {
	if y == 0 {
		return 0
	}
	x16 := imath.Iroot6(boundedUint64(x))
	denom := float64(y) * sqrtF(alpha) * float64(imath.MaxU64(x16, 1))
	if denom <= 0 {
		return 0
	}
	return uint64(x.Float64() / denom)
}

func boundedUint64(x imath.Int128) uint64 {
	if x.Fits64() {
		return x.Uint64()
	}
	return ^uint64(0)
}

func sqrtF(f float64) float64 {
	if f <= 0 {
		return 0
	}
	lo, hi := 0.0, f
	if f < 1 {
		hi = 1
	}
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if mid*mid > f {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// GetWork returns the next work unit and accumulates the caller's
// delta/runtime feedback, per spec.md §4.2's get_work. ok is false
// once no more work remains.
func (b *LMO) GetWork(delta imath.Int128, runtime clock.Runtime) (w Work, ok bool) {
	b.mu.Lock()

	high := b.low + b.segments*b.segmentSize
	if b.low <= b.smallestHardLeaf && high >= b.smallestHardLeaf {
		b.segments = 1
	}

	w = Work{Low: b.low, Segments: b.segments, SegmentSize: b.segmentSize}
	originalLow := b.low

	b.sumTotal = b.sumTotal.Add(delta)
	b.low = imath.MinU64(b.low+b.segments*b.segmentSize, b.limit)

	if b.isIncrease(runtime) {
		b.segments += imath.CeilDiv(b.segments, 3)
	} else {
		shrink := b.segments / 4
		if shrink >= b.segments {
			shrink = b.segments - 1
		}
		b.segments -= shrink
	}
	if b.segments < 1 {
		b.segments = 1
	}

	percent := status.SkewedPercent(b.sumTotal, b.sumApprox)
	sumTotal := b.sumTotal
	b.mu.Unlock()

	b.recorder.ObserveSkewedPercent(b.kernel, percent)
	_ = sumTotal

	return w, originalLow < b.limit
}

// isIncrease decides grow-vs-shrink per spec.md §4.2 step 6.
func (b *LMO) isIncrease(runtime clock.Runtime) bool {
	minSecs := max64(0.01, runtime.Init*10)
	if runtime.Work < minSecs {
		return true
	}
	percent := status.SkewedPercent(b.sumTotal, b.sumApprox)
	percent = imath.InBetweenF(1, percent, 99.9)

	total := clock.Now() - b.startTime
	remaining := total*(100/percent) - total
	threshold := max64(minSecs, remaining/4)
	return runtime.Work < threshold
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
