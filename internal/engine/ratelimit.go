package engine

import "golang.org/x/time/rate"

// newBWLimiter creates a rate.Limiter that caps aggregate write
// throughput to bytesPerSec, layered on top of the adaptive pacer for
// operators who want a hard ceiling. The burst is capped at 1 MiB so
// natural chunk sizes pass without blocking on small writes, but never
// drops below one chunk or WaitN could fail outright.
func newBWLimiter(bytesPerSec int64, chunk int) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	if burst < chunk {
		burst = chunk
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}
