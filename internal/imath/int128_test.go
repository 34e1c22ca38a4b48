package imath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt128AddSub(t *testing.T) {
	a := FromUint64(1 << 63).AddU64(1 << 63) // 2^64, overflows into Hi
	require.Equal(t, uint64(1), a.Hi)
	require.Equal(t, uint64(0), a.Lo)

	b := a.Sub(FromUint64(1))
	require.Equal(t, uint64(0), b.Hi)
	require.Equal(t, ^uint64(0), b.Lo)
}

func TestMulU64AndFastDiv64(t *testing.T) {
	a, b := uint64(123456789012345), uint64(987654321)
	prod := MulU64(a, b)
	// quotient must recover a exactly since prod = a*b and dividing by b.
	require.Equal(t, a, prod.FastDiv64(b))
}

func TestFastDiv64PanicsOnOverflow(t *testing.T) {
	// Hi >= divisor: quotient would not fit in 64 bits.
	v := Int128{Hi: 10, Lo: 0}
	require.Panics(t, func() { v.FastDiv64(2) })
}

func TestInt128Cmp(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(10)
	require.Equal(t, -1, a.Cmp(b))
	require.Equal(t, 1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(a))
	require.True(t, a.Less(b))
}

func TestInt128String(t *testing.T) {
	require.Equal(t, "0", FromUint64(0).String())
	require.Equal(t, "12345", FromUint64(12345).String())

	big := MulU64(1_000_000_000_000, 1_000_000_000_000_000) // 10^27
	require.Equal(t, "1000000000000000000000000000", big.String())
}
