// Package config holds the process-wide mutable settings the public
// kernel API exposes (spec.md §6: set_num_threads, set_print_status).
// Grounded on primecount.cpp's threads_/print_status_ package-level
// globals and on the teacher's DefaultBlockSize/SetBlockSizeBytes
// global+setter pattern (core/sequential.go) — both are process-wide
// knobs mutated by a setter and read by many call sites. Here the
// globals are backed by go.uber.org/atomic instead of a plain var so
// concurrent readers (every worker goroutine, every call to
// get_work) never race with a setter call.
package config

import (
	"runtime"

	"go.uber.org/atomic"
)

var (
	threads     = atomic.NewInt64(int64(runtime.NumCPU()))
	printStatus = atomic.NewBool(false)
	verboseLog  = atomic.NewBool(false)
)

// Threads returns the configured worker thread count, always >= 1.
func Threads() int {
	return int(threads.Load())
}

// SetThreads sets the worker thread count, clamped to
// [1, runtime.NumCPU()] per spec.md §6.
func SetThreads(n int) {
	max := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	threads.Store(int64(n))
}

// PrintStatus reports whether the throttled progress printer is
// enabled.
func PrintStatus() bool {
	return printStatus.Load()
}

// SetPrintStatus enables or disables the throttled progress printer.
func SetPrintStatus(enabled bool) {
	printStatus.Store(enabled)
}

// IdealThreads computes spec.md §4.4's ideal_num_threads: the
// requested thread count (0 meaning "use the configured default"),
// clamped down so no thread is left with less than threshold units of
// work, and never below 1. Grounded on
// original_source/src/primecount.cpp's two-argument validate_threads
// (threads = min(threads, sieve_limit/thread_threshold); threads =
// max(1, threads)).
func IdealThreads(requested int, workSize, threshold uint64) int {
	if requested <= 0 {
		requested = Threads()
	}
	if threshold == 0 {
		threshold = 1
	}
	byWork := workSize / threshold
	if byWork < uint64(requested) {
		requested = int(byWork)
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// VerboseLog reports whether kernel entry/exit logging is enabled.
// This is a purely ambient flag (not part of spec.md's public API)
// added because every kernel needs some logging story; see
// SPEC_FULL.md §4.6.
func VerboseLog() bool {
	return verboseLog.Load()
}

// SetVerboseLog enables or disables kernel entry/exit logging.
func SetVerboseLog(enabled bool) {
	verboseLog.Store(enabled)
}
