package primes

import "github.com/kimwalisch/primecount-go/internal/imath"

// SegmentedSieve is the default, swappable implementation of Source.
// It sieves one segment at a time so memory stays O(sqrt(limit)) for
// the base-prime list plus one segment's worth of bits, regardless of
// how large limit is. Grounded on
// other_examples/anisomorphic-Parallel-Prime-Sieve__main.go's
// segment/bitset approach (CreateArray/GetBit/StoreBit over a window)
// and other_examples/wheelcomplex-gorawpacket__go-prime-sieve3.go's
// segment-sizing idea, simplified to a plain per-integer bitset (the
// wheel-30/210 channel machinery in that file pulls in an external
// flag-parsing dependency unrelated to sieving and isn't needed here).
type SegmentedSieve struct {
	limit      uint64
	basePrimes []uint64
}

// NewSegmentedSieve builds a sieve usable for any start/stop <= limit.
func NewSegmentedSieve(limit uint64) *SegmentedSieve {
	return &SegmentedSieve{limit: limit, basePrimes: simpleSieve(imath.Isqrt(limit) + 1)}
}

// simpleSieve returns all primes <= n via a plain Sieve of
// Eratosthenes; used once, to build the base-prime list that seeds
// every segment.
func simpleSieve(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	composite := make([]bool, n+1)
	var result []uint64
	for i := uint64(2); i <= n; i++ {
		if !composite[i] {
			result = append(result, i)
			for j := i * i; j <= n; j += i {
				composite[j] = true
			}
		}
	}
	return result
}

// sieveSegment marks composites in [low, high) using basePrimes,
// returning a bitset indexed by n-low.
func sieveSegment(low, high uint64, basePrimes []uint64) []bool {
	if high <= low {
		return nil
	}
	composite := make([]bool, high-low)
	for _, p := range basePrimes {
		if p*p >= high {
			break
		}
		start := p * p
		if start < low {
			rem := low % p
			start = low
			if rem != 0 {
				start += p - rem
			}
			if start < p*p {
				start += p
			}
		}
		for m := start; m < high; m += p {
			composite[m-low] = true
		}
	}
	return composite
}

// Forward implements Source.
func (s *SegmentedSieve) Forward(start, stopHint uint64) ForwardIterator {
	seed := imath.MaxU64(stopHint, start)
	segSize := LegalSegmentSize(imath.MaxU64(512, imath.Isqrt(seed+1)))
	return &forwardIterator{src: s, segLow: start, segSize: segSize}
}

// Reverse implements Source.
func (s *SegmentedSieve) Reverse(start, stop uint64) ReverseIterator {
	segSize := LegalSegmentSize(imath.MaxU64(512, imath.Isqrt(start+1)))
	return &reverseIterator{src: s, segHigh: start + 1, segSize: segSize, stop: stop}
}

type forwardIterator struct {
	src     *SegmentedSieve
	segLow  uint64
	segSize uint64
	bits    []bool
	high    uint64
	pos     uint64
}

func (it *forwardIterator) NextPrime() (uint64, error) {
	for {
		if it.bits == nil {
			if it.segLow > it.src.limit {
				return 0, ErrExhausted
			}
			high := imath.MinU64(it.segLow+it.segSize, it.src.limit+1)
			it.bits = sieveSegment(it.segLow, high, it.src.basePrimes)
			it.high = high
			it.pos = 0
		}
		for it.pos < uint64(len(it.bits)) {
			n := it.segLow + it.pos
			composite := it.bits[it.pos]
			it.pos++
			if n < 2 {
				continue
			}
			if !composite {
				return n, nil
			}
		}
		it.segLow = it.high
		it.bits = nil
		if it.segLow > it.src.limit {
			return 0, ErrExhausted
		}
	}
}

type reverseIterator struct {
	src     *SegmentedSieve
	segHigh uint64
	segSize uint64
	stop    uint64
	bits    []bool
	segLow  uint64
	pos     int
}

func (it *reverseIterator) PrevPrime() (uint64, error) {
	for {
		if it.bits == nil {
			if it.segHigh <= it.stop {
				return 0, ErrExhausted
			}
			segLow := it.stop
			if it.segHigh > it.segSize && it.segHigh-it.segSize > it.stop {
				segLow = it.segHigh - it.segSize
			}
			it.bits = sieveSegment(segLow, it.segHigh, it.src.basePrimes)
			it.segLow = segLow
			it.pos = len(it.bits)
		}
		for it.pos > 0 {
			it.pos--
			n := it.segLow + uint64(it.pos)
			if n < 2 || n < it.stop {
				continue
			}
			if !it.bits[it.pos] {
				return n, nil
			}
		}
		it.segHigh = it.segLow
		it.bits = nil
		if it.segHigh <= it.stop {
			return 0, ErrExhausted
		}
	}
}
