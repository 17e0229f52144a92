package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// pacer bounds the sustained write rate to the fastest clean write
// observed so far, leaving the device slack for internal housekeeping on
// large transfers. It tracks two latencies, both normalized to a
// full-size chunk: fastest (a monotonically non-increasing floor, set on
// the first measurement) and previous (the most recent chunk write).
// State persists for the whole run and is shared across files.
type pacer struct {
	clock    clockwork.Clock
	chunk    int
	fastest  time.Duration
	previous time.Duration
}

func newPacer(clock clockwork.Clock, chunk int) *pacer {
	return &pacer{clock: clock, chunk: chunk}
}

// delayFor returns the pause owed before writing a chunk of n bytes:
// previous minus fastest, scaled down proportionally for a short final
// chunk.
func (p *pacer) delayFor(n int) time.Duration {
	d := p.previous - p.fastest
	if d <= 0 {
		return 0
	}
	if n != p.chunk {
		d = d * time.Duration(n) / time.Duration(p.chunk)
	}
	return d
}

// pause sleeps for the delay owed before a chunk of n bytes.
func (p *pacer) pause(n int) {
	if d := p.delayFor(n); d > 0 {
		p.clock.Sleep(d)
	}
}

// record stores the measured wall time of a chunk write, normalized to a
// full-chunk equivalent, and lowers the floor if this write was the
// fastest seen.
func (p *pacer) record(elapsed time.Duration, n int) {
	if n <= 0 {
		return
	}
	if n != p.chunk {
		elapsed = elapsed * time.Duration(p.chunk) / time.Duration(n)
	}
	p.previous = elapsed
	if p.fastest == 0 || elapsed < p.fastest {
		p.fastest = elapsed
	}
}
