package engine

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/interrupt"
)

// Rest-pause defaults: after restFileCount completed files sleep
// restFilePause; after restByteLimit bytes sleep ~30ms per MiB copied.
const (
	defaultRestFileCount = 50
	defaultRestFilePause = 10 * time.Second
	defaultRestByteLimit = 1 << 30
	restPerMiB           = 30 * time.Millisecond
)

// throttle inserts coarse rest pauses between files so physical storage
// can catch up on internal housekeeping during long transfers. Triggers
// are checked in priority order and at most one fires per file:
// a pending pause-after-verify request, then the file-count rest, then
// the byte-volume rest. Faster mode skips the sleeps but a pending
// operator pause request is always honored.
type throttle struct {
	clock   clockwork.Clock
	monitor *interrupt.Monitor
	report  event.Reporter

	faster    bool
	fileCount int
	filePause time.Duration
	byteLimit int64

	files      int
	bytes      int64
	totalBytes int64
}

// addBytes records bytes written during a copy loop.
func (t *throttle) addBytes(n int64) {
	t.bytes += n
	t.totalBytes += n
}

// fileDone runs the rest checks after one file completes successfully.
// It may block the caller for the duration of a rest pause or an
// operator-requested indefinite pause.
func (t *throttle) fileDone() error {
	t.files++

	if t.monitor.ConsumePauseRequest() {
		t.files = 0
		t.bytes = 0
		return t.monitor.Check(true)
	}

	if !t.faster && t.files >= t.fileCount {
		t.report.Emit(event.Event{Type: event.RestPause, Files: t.files, Pause: t.filePause})
		t.clock.Sleep(t.filePause)
		t.files = 0
		return nil
	}

	if t.bytes > t.byteLimit {
		pause := time.Duration(t.bytes>>20) * restPerMiB
		if t.faster {
			pause = 0
		}
		t.report.Emit(event.Event{Type: event.ByteMilestone, Size: t.totalBytes, Pause: pause})
		if pause > 0 {
			t.clock.Sleep(pause)
		}
		t.bytes = 0
	}

	return nil
}
