// Package clock provides the monotonic wall-clock contract (spec.md
// §6) and the per-worker Runtime record the load balancers use to
// decide whether to grow or shrink their work units.
package clock

import "time"

var processStart = time.Now()

// Now returns the number of seconds elapsed since process start, as a
// monotonic (time.Since-based) wall-clock reading. Grounded on
// original_source's get_wtime()/get_time(), which both return a
// monotonic double of seconds.
func Now() float64 {
	return time.Since(processStart).Seconds()
}

// Runtime is a worker's self-reported timing for one work unit,
// supplied back to the balancer on the next get_work call so the
// balancer's is_increase/update_segments policy can react (spec.md
// §3, §4.2, §4.3).
type Runtime struct {
	// Init is the time spent initializing a sieve segment (building
	// the segment's bitset before use).
	Init float64
	// Work is the time spent sieving/processing the work unit itself.
	Work float64
}
