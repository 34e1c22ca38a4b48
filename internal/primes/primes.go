// Package primes defines the prime iterator contract (spec.md §6)
// that the engine consumes, plus a default segmented-sieve-backed
// implementation of it. The contract is deliberately small so a host
// can substitute a faster iterator (e.g. a CGO binding to a dedicated
// sieving library) without touching any kernel code — per spec.md §1,
// the low-level segmented sieve itself is an external collaborator;
// what ships here is a reference implementation, not the canonical
// one.
package primes

import "github.com/pkg/errors"

// ErrExhausted is returned by NextPrime/PrevPrime once the iterator
// has no more primes to yield within its bounded interval.
var ErrExhausted = errors.New("primes: iterator exhausted")

// ForwardIterator yields primes in ascending order.
type ForwardIterator interface {
	// NextPrime returns the next prime >= the iterator's start bound,
	// in strictly ascending order, or ErrExhausted once past its
	// bounded interval.
	NextPrime() (uint64, error)
}

// ReverseIterator yields primes in descending order.
type ReverseIterator interface {
	// PrevPrime returns the next prime <= the iterator's start bound,
	// in strictly descending order, or ErrExhausted once past its
	// bounded interval.
	PrevPrime() (uint64, error)
}

// Source constructs bounded iterators over primes, mirroring spec.md
// §6's forward(start, stop_hint) / reverse(start, stop) contract.
type Source interface {
	// Forward yields primes >= start. stopHint is advisory, used only
	// to size internal sieve segments; it does not bound the primes
	// returned (callers stop calling NextPrime when they're done).
	Forward(start, stopHint uint64) ForwardIterator
	// Reverse yields primes <= start, down to >= stop.
	Reverse(start, stop uint64) ReverseIterator
}

// LegalSegmentSize returns the smallest multiple of 240 that is >= n
// (the sieve segment size contract, spec.md §6). 240 = 2*3*5*8 is the
// wheel-30 segmented sieve's natural alignment: a segment boundary
// landing on a multiple of 2*3*5 keeps the small-prime wheel pattern
// repeating cleanly across segments.
func LegalSegmentSize(n uint64) uint64 {
	if n == 0 {
		return 240
	}
	if rem := n % 240; rem != 0 {
		n += 240 - rem
	}
	return n
}
