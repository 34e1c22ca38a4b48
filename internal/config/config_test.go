package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetThreadsClamps(t *testing.T) {
	defer SetThreads(runtime.NumCPU())

	SetThreads(0)
	require.Equal(t, 1, Threads())

	SetThreads(-5)
	require.Equal(t, 1, Threads())

	SetThreads(runtime.NumCPU() + 100)
	require.Equal(t, runtime.NumCPU(), Threads())

	SetThreads(1)
	require.Equal(t, 1, Threads())
}

func TestPrintStatusToggle(t *testing.T) {
	defer SetPrintStatus(false)
	SetPrintStatus(true)
	require.True(t, PrintStatus())
	SetPrintStatus(false)
	require.False(t, PrintStatus())
}

func TestVerboseLogToggle(t *testing.T) {
	defer SetVerboseLog(false)
	require.False(t, VerboseLog())
	SetVerboseLog(true)
	require.True(t, VerboseLog())
}

func TestIdealThreadsClampsByWorkSize(t *testing.T) {
	require.Equal(t, 1, IdealThreads(8, 100, 1000))
	require.Equal(t, 4, IdealThreads(8, 4000, 1000))
	require.Equal(t, 8, IdealThreads(8, 1_000_000, 1000))
}

func TestIdealThreadsUsesConfiguredDefaultWhenRequestedIsZero(t *testing.T) {
	defer SetThreads(runtime.NumCPU())
	SetThreads(2)
	require.Equal(t, 2, IdealThreads(0, 1_000_000, 1))
}

func TestIdealThreadsNeverBelowOne(t *testing.T) {
	require.Equal(t, 1, IdealThreads(8, 0, 1000))
}
