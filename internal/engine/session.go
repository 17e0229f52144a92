package engine

import (
	"context"
	"os"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/interrupt"
	"github.com/steadysync/tempo/internal/stats"
)

// devIno identifies an inode. The walker records the first destination
// directory's identity here and refuses any source directory that matches
// it, which would otherwise recurse without bound.
type devIno struct {
	dev uint64
	ino uint64
}

func devInoOf(info os.FileInfo) (devIno, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return devIno{}, false
	}
	return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}

// session carries the run-scoped mutable state: the pacing floor, the
// rest-pause counters, the circular-copy guard and the shared chunk
// buffer. One session serves one Run; isolated sessions may run
// concurrently in tests. All state is touched by a single goroutine.
type session struct {
	cfg      Config
	clock    clockwork.Clock
	monitor  *interrupt.Monitor
	pacer    *pacer
	throttle *throttle
	limiter  *rate.Limiter
	stats    *stats.Collector
	report   event.Reporter
	buf      []byte

	guard    devIno
	guardSet bool
}

func newSession(cfg Config) *session {
	s := &session{
		cfg:    cfg,
		clock:  cfg.Clock,
		stats:  cfg.Stats,
		report: cfg.Report,
		buf:    make([]byte, cfg.ChunkSize),
	}
	s.monitor = interrupt.NewMonitor(cfg.Keys, s.clock, s.report)
	s.pacer = newPacer(s.clock, cfg.ChunkSize)
	s.throttle = &throttle{
		clock:     s.clock,
		monitor:   s.monitor,
		report:    s.report,
		faster:    cfg.Faster,
		fileCount: cfg.RestFileCount,
		filePause: cfg.RestFilePause,
		byteLimit: cfg.RestByteLimit,
	}
	if cfg.BWLimit > 0 {
		s.limiter = newBWLimiter(cfg.BWLimit, cfg.ChunkSize)
	}
	return s
}

// checkInterrupt is the per-chunk cancellation point: context first, then
// pending keystrokes. A chunk's own read or write cannot be interrupted,
// so worst-case cancellation latency is one chunk's transfer time.
func (s *session) checkInterrupt(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return s.monitor.Check(false)
}
