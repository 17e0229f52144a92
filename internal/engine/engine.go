// Package engine implements the transfer core: a pre-order directory
// walker with circular-copy detection, a per-file copy/verify state
// machine, a streaming rotating checksum, an adaptive write pacer and
// scheduled rest pauses. The engine is single-threaded and cooperative:
// cancellation and pauses are observed at chunk and file boundaries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/interrupt"
	"github.com/steadysync/tempo/internal/stats"
)

// DefaultChunkSize is the transfer chunk size unless configured otherwise.
const DefaultChunkSize = 32 << 10

// Config describes one synchronization run.
type Config struct {
	Mode Mode
	Src  string
	Dst  string // empty means the current directory

	ChunkSize    int   // bytes per read/write chunk
	Faster       bool  // disable pacing and rest pauses
	TestRun      bool  // log decisions, mutate nothing
	StrongVerify bool  // BLAKE3 digests instead of the rotating checksum
	BWLimit      int64 // hard throughput cap in bytes/sec, 0 = none

	RestFileCount int           // files between rest pauses
	RestFilePause time.Duration // length of the file-count rest
	RestByteLimit int64         // bytes between volume rests

	Keys   interrupt.Poller // nil disables keyboard control
	Clock  clockwork.Clock  // nil means the real clock
	Report event.Reporter   // nil discards progress events
	Stats  *stats.Collector // nil allocates a fresh collector
}

// Result is the outcome of a run.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Run executes one synchronization, blocking until it completes, fails or
// is cancelled.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Report == nil {
		cfg.Report = event.Discard
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.RestFileCount <= 0 {
		cfg.RestFileCount = defaultRestFileCount
	}
	if cfg.RestFilePause <= 0 {
		cfg.RestFilePause = defaultRestFilePause
	}
	if cfg.RestByteLimit <= 0 {
		cfg.RestByteLimit = defaultRestByteLimit
	}

	s := newSession(cfg)
	err := s.run(ctx)
	return Result{Stats: cfg.Stats.Snapshot(), Err: err}
}

func (s *session) run(ctx context.Context) error {
	cfg := &s.cfg

	// Bidirectional sync is reserved upstream; refuse before any traversal.
	if cfg.Mode == ModeSync {
		return ErrNotImplemented
	}

	srcInfo, err := os.Stat(cfg.Src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("source %s: %w", cfg.Src, ErrNotFound)
		}
		return fmt.Errorf("stat %s: %w", cfg.Src, err)
	}

	dst := cfg.Dst
	if dst == "" {
		dst = "."
	}

	if srcInfo.IsDir() {
		if samePath(cfg.Src, dst) {
			return fmt.Errorf("cannot copy directory %s onto itself: %w", cfg.Src, ErrUsage)
		}
		return s.syncTree(ctx, cfg.Src, dst)
	}

	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("source %s is neither a regular file nor a directory: %w", cfg.Src, ErrUsage)
	}
	if cfg.Mode == ModeMirror {
		return fmt.Errorf("mirror mode requires a source directory: %w", ErrUsage)
	}

	// An existing destination directory, or an omitted destination, means
	// the file keeps its own name.
	if dinfo, err := os.Stat(dst); err == nil && dinfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(cfg.Src))
	}
	if samePath(cfg.Src, dst) {
		return fmt.Errorf("cannot copy file %s onto itself: %w", cfg.Src, ErrUsage)
	}
	if !cfg.TestRun {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	return s.syncFile(ctx, cfg.Src, dst)
}

// samePath reports whether a and b name the same filesystem object,
// textually or by identity when both exist.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}
