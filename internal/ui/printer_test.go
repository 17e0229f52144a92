package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/stats"
)

func emitOne(opts Options, ev event.Event) string {
	var buf bytes.Buffer
	NewPrinter(&buf, opts).Emit(ev)
	return buf.String()
}

func TestPrinter_CopyLine(t *testing.T) {
	out := emitOne(Options{}, event.Event{
		Type: event.CopyFile, Src: "/a/f.txt", Dst: "/b/f.txt", Size: 1024,
	})
	assert.Equal(t, "Copy /a/f.txt to /b/f.txt (1.0 KiB)\n", out)
}

func TestPrinter_DeleteWithReason(t *testing.T) {
	out := emitOne(Options{}, event.Event{
		Type: event.DeleteDest, Dst: "/b/f.txt", Reason: "size +3 bytes, checksum",
	})
	assert.Equal(t, "Delete /b/f.txt (size +3 bytes, checksum)\n", out)
}

func TestPrinter_PauseLines(t *testing.T) {
	assert.Equal(t, "Pause...\n", emitOne(Options{}, event.Event{Type: event.Paused}))
	assert.Equal(t, "Resume...\n", emitOne(Options{}, event.Event{Type: event.Resumed}))
	assert.Equal(t, "Pause requested!\n", emitOne(Options{}, event.Event{Type: event.PauseRequested}))
}

func TestPrinter_RestPauseLine(t *testing.T) {
	out := emitOne(Options{}, event.Event{
		Type: event.RestPause, Files: 50, Pause: 10 * time.Second,
	})
	assert.Equal(t, "50 files done, 10s pause...\n", out)
}

func TestPrinter_ByteMilestone(t *testing.T) {
	withPause := emitOne(Options{}, event.Event{
		Type: event.ByteMilestone, Size: 2 << 30, Pause: time.Minute,
	})
	assert.Equal(t, "2.0 GiB done, 1m0s pause...\n", withPause)

	noPause := emitOne(Options{}, event.Event{Type: event.ByteMilestone, Size: 2 << 30})
	assert.Equal(t, "2.0 GiB done.\n", noPause)
}

func TestPrinter_QuietSuppressesEverything(t *testing.T) {
	out := emitOne(Options{Quiet: true}, event.Event{
		Type: event.CopyFile, Src: "a", Dst: "b", Size: 1,
	})
	assert.Empty(t, out)
}

func TestPrinter_VerboseOnlyLines(t *testing.T) {
	skip := event.Event{Type: event.FileSkipped, Src: "a"}
	assert.Empty(t, emitOne(Options{}, skip))
	assert.Equal(t, "Skip a (unchanged)\n", emitOne(Options{Verbose: true}, skip))
}

func TestPrinter_ShortensLongPaths(t *testing.T) {
	long := "/very/long/path/" + strings.Repeat("x", 200) + "/f.txt"
	out := emitOne(Options{MaxWidth: 80}, event.Event{Type: event.VerifyDest, Dst: long})
	assert.Contains(t, out, " ... ")
	assert.Less(t, len(out), len(long))
}

func TestSummary(t *testing.T) {
	got := Summary(stats.Snapshot{
		FilesCopied:  2,
		FilesSkipped: 1,
		BytesCopied:  2048,
		Elapsed:      1500 * time.Millisecond,
	})
	assert.Equal(t, "2 copied, 1 skipped, 0 deleted, 2.0 KiB in 1.5s", got)
}
