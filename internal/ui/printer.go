// Package ui renders engine progress events as human-readable lines.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/stats"
)

const humanizeResolution = 10 * time.Millisecond

// Options controls printer verbosity.
type Options struct {
	Quiet    bool // suppress everything except the summary
	Verbose  bool // additionally report skips and completions
	MaxWidth int  // line budget for path shortening; 0 means no limit
}

// Printer is a synchronous event.Reporter writing one line per transition.
type Printer struct {
	w    io.Writer
	opts Options
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Emit renders one event. Unknown event types are ignored.
func (p *Printer) Emit(ev event.Event) {
	if p.opts.Quiet {
		return
	}

	src := p.shorten(ev.Src)
	dst := p.shorten(ev.Dst)

	switch ev.Type {
	case event.DirCreated:
		fmt.Fprintf(p.w, "mkdir %s\n", dst)
	case event.ComparePair:
		fmt.Fprintf(p.w, "Verify %s to %s\n", src, dst)
	case event.DeleteDest:
		fmt.Fprintf(p.w, "Delete %s (%s)\n", dst, ev.Reason)
	case event.CopyFile:
		fmt.Fprintf(p.w, "Copy %s to %s (%s)\n", src, dst, humanize.IBytes(uint64(ev.Size)))
	case event.VerifyDest:
		fmt.Fprintf(p.w, "Verify %s\n", dst)
	case event.DeleteSource:
		fmt.Fprintf(p.w, "Delete %s\n", src)
	case event.DeleteStale:
		fmt.Fprintf(p.w, "Delete %s (stale)\n", dst)
	case event.FileSkipped:
		if p.opts.Verbose {
			fmt.Fprintf(p.w, "Skip %s (unchanged)\n", src)
		}
	case event.FileDone:
		if p.opts.Verbose {
			fmt.Fprintf(p.w, "Done %s\n", dst)
		}
	case event.Paused:
		fmt.Fprintln(p.w, "Pause...")
	case event.Resumed:
		fmt.Fprintln(p.w, "Resume...")
	case event.PauseRequested:
		fmt.Fprintln(p.w, "Pause requested!")
	case event.RestPause:
		fmt.Fprintf(p.w, "%d files done, %s pause...\n", ev.Files, ev.Pause)
	case event.ByteMilestone:
		if ev.Pause > 0 {
			fmt.Fprintf(p.w, "%s done, %s pause...\n", humanize.IBytes(uint64(ev.Size)), ev.Pause)
		} else {
			fmt.Fprintf(p.w, "%s done.\n", humanize.IBytes(uint64(ev.Size)))
		}
	}
}

func (p *Printer) shorten(path string) string {
	if p.opts.MaxWidth <= 0 {
		return path
	}
	return ShortenPath(path, p.opts.MaxWidth/2)
}

// Summary formats the end-of-run counters as a single line.
func Summary(s stats.Snapshot) string {
	return fmt.Sprintf("%d copied, %d skipped, %d deleted, %s in %s",
		s.FilesCopied, s.FilesSkipped, s.FilesDeleted,
		humanize.IBytes(uint64(s.BytesCopied)),
		s.Elapsed.Round(humanizeResolution))
}
