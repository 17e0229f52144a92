package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/steadysync/tempo/internal/event"
	"github.com/steadysync/tempo/internal/stats"
)

// newTestSession builds a session with Run's defaults applied, so unit
// tests can drive internal pieces without going through Run.
func newTestSession(t *testing.T, cfg Config) *session {
	t.Helper()
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
	return newSession(cfg)
}

// recorder is a Reporter that captures every event in order.
type recorder struct {
	events []event.Event
}

func (r *recorder) Emit(e event.Event) { r.events = append(r.events, e) }

func (r *recorder) ofType(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) has(t event.Type) bool { return len(r.ofType(t)) > 0 }

// scriptPoller replays a fixed key sequence. A zero byte means "no key
// pending" for that poll; an exhausted script reports no key forever.
type scriptPoller struct {
	keys []byte
}

func (p *scriptPoller) Poll() (byte, bool, error) {
	if len(p.keys) == 0 {
		return 0, false, nil
	}
	k := p.keys[0]
	p.keys = p.keys[1:]
	if k == 0 {
		return 0, false, nil
	}
	return k, true, nil
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func sameTime(t *testing.T, a, b string) {
	t.Helper()
	ai, err := os.Stat(a)
	require.NoError(t, err)
	bi, err := os.Stat(b)
	require.NoError(t, err)
	require.True(t, ai.ModTime().Equal(bi.ModTime()),
		"mtime mismatch: %s vs %s", ai.ModTime(), bi.ModTime())
}

// touchBoth pins both paths to the same mtime so only content differs.
func touchBoth(t *testing.T, a, b string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(a, at, at))
	require.NoError(t, os.Chtimes(b, at, at))
}
