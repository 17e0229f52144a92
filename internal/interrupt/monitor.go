// Package interrupt implements cooperative keyboard control of a running
// transfer: cancel (ESC, q), pause/resume (space, p) and a sticky
// pause-after-verify request (v). The engine polls the monitor at chunk
// and file boundaries; there is no background goroutine.
package interrupt

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/steadysync/tempo/internal/event"
)

// ErrCancelled is returned when the operator requests an abort.
var ErrCancelled = errors.New("terminated by the user")

const pauseStep = 300 * time.Millisecond

// Poller answers a zero-timeout "is a key available, and which" query.
// Implementations must never block.
type Poller interface {
	Poll() (key byte, ok bool, err error)
}

// Monitor consumes pending keystrokes and owns the pause-wait loop.
type Monitor struct {
	poller       Poller
	clock        clockwork.Clock
	report       event.Reporter
	pauseRequest bool
}

// NewMonitor creates a Monitor. A nil poller disables keyboard control;
// Check then always returns immediately.
func NewMonitor(p Poller, clock clockwork.Clock, report event.Reporter) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if report == nil {
		report = event.Discard
	}
	return &Monitor{poller: p, clock: clock, report: report}
}

// Check drains pending keystrokes and, while paused, blocks the caller in
// pauseStep sleep increments until resumed or cancelled. With inducedPause
// the monitor starts in the paused state (used for the pause-after-verify
// rest). Returns ErrCancelled on a cancel key.
func (m *Monitor) Check(inducedPause bool) error {
	if m.poller == nil {
		return nil
	}

	paused := inducedPause
	if paused {
		m.report.Emit(event.Event{Type: event.Paused})
	}

	for {
		key, ok, err := m.poller.Poll()
		if err != nil {
			return err
		}
		if ok {
			switch key {
			case ' ', 'p', 'P':
				paused = !paused
				if paused {
					m.report.Emit(event.Event{Type: event.Paused})
				} else {
					m.report.Emit(event.Event{Type: event.Resumed})
				}
			case 0x1b, 'q', 'Q': // ESC
				return ErrCancelled
			case 'v', 'V':
				m.pauseRequest = true
				m.report.Emit(event.Event{Type: event.PauseRequested})
			}
		}
		if !paused {
			return nil
		}
		m.clock.Sleep(pauseStep)
	}
}

// ConsumePauseRequest reports whether a pause-after-verify request is
// pending and clears it.
func (m *Monitor) ConsumePauseRequest() bool {
	pending := m.pauseRequest
	m.pauseRequest = false
	return pending
}
