package imath

import (
	"fmt"
	"math"
	"math/bits"
)

// Int128 is an unsigned 128-bit magnitude, Hi*2^64 + Lo. Every
// quantity the engine accumulates (x, partial sums, pi values) is
// non-negative by construction, so the "signed 128-bit arithmetic"
// spec.md §9 asks for is realized as an unsigned pair rather than a
// two's-complement type — see DESIGN.md for the resolved open
// question.
type Int128 struct {
	Hi uint64
	Lo uint64
}

// FromUint64 builds an Int128 from a single 64-bit value.
func FromUint64(n uint64) Int128 {
	return Int128{Lo: n}
}

// Add returns a+b.
func (a Int128) Add(b Int128) Int128 {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, _ := bits.Add64(a.Hi, b.Hi, carry)
	return Int128{Hi: hi, Lo: lo}
}

// AddU64 returns a+b for a 64-bit b.
func (a Int128) AddU64(b uint64) Int128 {
	lo, carry := bits.Add64(a.Lo, b, 0)
	hi, _ := bits.Add64(a.Hi, 0, carry)
	return Int128{Hi: hi, Lo: lo}
}

// Sub returns a-b. Underflow is a programmer error in this domain
// (every subtraction here is of a smaller running total from a
// larger bound) and is not checked on the hot path.
func (a Int128) Sub(b Int128) Int128 {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	hi, _ := bits.Sub64(a.Hi, b.Hi, borrow)
	return Int128{Hi: hi, Lo: lo}
}

// MulU64 multiplies two 64-bit values into a full 128-bit product.
// Grounded on the same bits.Mul64 technique the example pack's
// aelaguiz-pthash-go fastmod code uses for its 128-bit magic
// constants.
func MulU64(a, b uint64) Int128 {
	hi, lo := bits.Mul64(a, b)
	return Int128{Hi: hi, Lo: lo}
}

// FastDiv64 divides a 128-bit dividend by a 64-bit divisor, returning
// a 64-bit quotient. It is the fast_div64 primitive from spec.md §4:
// every call site in the A/B kernels divides a ratio x/prime (which
// may genuinely need 128 bits to represent) by a further prime, with
// the algorithm's own bounds guaranteeing the quotient fits in 64
// bits. That precondition is exactly what math/bits.Div64 requires
// (Hi < divisor) — violating it panics, matching spec.md §7's
// "verify with release-build assertions at kernel entry".
func (a Int128) FastDiv64(divisor uint64) uint64 {
	q, _ := bits.Div64(a.Hi, a.Lo, divisor)
	return q
}

// MulU64 multiplies the receiver by a 64-bit value, reporting overflow
// beyond 128 bits rather than wrapping (every call site in this engine
// treats overflow as "this candidate root is too big", per Iroot
// below).
func (a Int128) MulU64(b uint64) (Int128, bool) {
	hi1, lo1 := bits.Mul64(a.Lo, b)
	hi2, lo2 := bits.Mul64(a.Hi, b)
	if hi2 != 0 {
		return Int128{}, true
	}
	sumHi, carry := bits.Add64(hi1, lo2, 0)
	if carry != 0 {
		return Int128{}, true
	}
	return Int128{Hi: sumHi, Lo: lo1}, false
}

// Iroot returns floor(a^(1/k)) for k >= 1, via a float64 seed (good to
// within a handful of units even near 10^27) corrected to the exact
// integer root using 128-bit-safe overflow-checked multiplication —
// the same two-phase shape imath.Isqrt uses for the uint64 case,
// generalized here because a itself may exceed 64 bits.
func (a Int128) Iroot(k uint) uint64 {
	if a.Cmp(Int128{}) == 0 {
		return 0
	}
	r := uint64(math.Pow(a.Float64(), 1/float64(k)))
	for r > 0 {
		p, overflow := powK(r, k)
		if !overflow && p.Cmp(a) <= 0 {
			break
		}
		r--
	}
	for {
		p, overflow := powK(r+1, k)
		if overflow || p.Cmp(a) > 0 {
			break
		}
		r++
	}
	return r
}

func powK(mid uint64, k uint) (Int128, bool) {
	acc := FromUint64(1)
	for i := uint(0); i < k; i++ {
		var overflow bool
		acc, overflow = acc.MulU64(mid)
		if overflow {
			return Int128{}, true
		}
	}
	return acc, false
}

// Isqrt returns floor(sqrt(a)).
func (a Int128) Isqrt() uint64 { return a.Iroot(2) }

// Cmp returns -1, 0, or 1 comparing a to b.
func (a Int128) Cmp(b Int128) int {
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	switch {
	case a.Lo < b.Lo:
		return -1
	case a.Lo > b.Lo:
		return 1
	default:
		return 0
	}
}

// Less reports whether a < b.
func (a Int128) Less(b Int128) bool { return a.Cmp(b) < 0 }

// Fits64 reports whether a fits in a uint64 (Hi == 0).
func (a Int128) Fits64() bool { return a.Hi == 0 }

// Uint64 returns the low 64 bits; callers must check Fits64 first
// when the value could plausibly overflow.
func (a Int128) Uint64() uint64 { return a.Lo }

// Float64 converts to a float64, losing precision above 2^53; used
// only for approximate bounds (e.g. alpha-tuning), never for exact
// results.
func (a Int128) Float64() float64 {
	return float64(a.Hi)*18446744073709551616.0 + float64(a.Lo)
}

// String renders a in base 10. It splits on 10^19 (the largest power
// of ten a uint64 holds) once; this engine's values top out around
// 10^27, so the high group after that single split is itself always
// < 10^19 and needs no further splitting.
func (a Int128) String() string {
	if a.Hi == 0 {
		return fmt.Sprintf("%d", a.Lo)
	}
	const base = 1_0000_0000_0000_0000_000 // 10^19
	q, r := bits.Div64(a.Hi, a.Lo, base)
	return fmt.Sprintf("%d%019d", q, r)
}
