package primes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectForward(t *testing.T, it ForwardIterator, max int) []uint64 {
	t.Helper()
	var got []uint64
	for i := 0; i < max; i++ {
		p, err := it.NextPrime()
		if err == ErrExhausted {
			break
		}
		require.NoError(t, err)
		got = append(got, p)
	}
	return got
}

func TestSegmentedSieveForwardSmall(t *testing.T) {
	s := NewSegmentedSieve(100)
	it := s.Forward(0, 100)
	got := collectForward(t, it, 100)
	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
		53, 59, 61, 67, 71, 73, 79, 83, 89, 97}
	require.Equal(t, want, got)
}

func TestSegmentedSieveForwardStart(t *testing.T) {
	s := NewSegmentedSieve(100)
	it := s.Forward(50, 100)
	got := collectForward(t, it, 100)
	want := []uint64{53, 59, 61, 67, 71, 73, 79, 83, 89, 97}
	require.Equal(t, want, got)
}

func TestSegmentedSieveForwardCrossesSegments(t *testing.T) {
	s := NewSegmentedSieve(10000)
	it := s.Forward(1, 10000)
	var count int
	for {
		_, err := it.NextPrime()
		if err == ErrExhausted {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 1229, count) // pi(10000) = 1229
}

func TestSegmentedSieveReverse(t *testing.T) {
	s := NewSegmentedSieve(100)
	it := s.Reverse(100, 50)
	var got []uint64
	for {
		p, err := it.PrevPrime()
		if err == ErrExhausted {
			break
		}
		require.NoError(t, err)
		got = append(got, p)
	}
	want := []uint64{97, 89, 83, 79, 73, 71, 67, 61, 59, 53}
	require.Equal(t, want, got)
}

func TestLegalSegmentSize(t *testing.T) {
	require.Equal(t, uint64(240), LegalSegmentSize(0))
	require.Equal(t, uint64(240), LegalSegmentSize(1))
	require.Equal(t, uint64(240), LegalSegmentSize(240))
	require.Equal(t, uint64(480), LegalSegmentSize(241))
}
