// Package stats tracks run-wide transfer counters.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates counters for one synchronization run. Counters are
// atomic so a future parallel engine cannot corrupt them silently; the
// current engine mutates them from a single goroutine.
type Collector struct {
	filesCopied  atomic.Int64
	filesSkipped atomic.Int64
	filesDeleted atomic.Int64
	dirsCreated  atomic.Int64
	bytesCopied  atomic.Int64
	startTime    time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddFilesCopied(n int64)  { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64) { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesDeleted(n int64) { c.filesDeleted.Add(n) }
func (c *Collector) AddDirsCreated(n int64)  { c.dirsCreated.Add(n) }
func (c *Collector) AddBytesCopied(n int64)  { c.bytesCopied.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied  int64
	FilesSkipped int64
	FilesDeleted int64
	DirsCreated  int64
	BytesCopied  int64
	Elapsed      time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:  c.filesCopied.Load(),
		FilesSkipped: c.filesSkipped.Load(),
		FilesDeleted: c.filesDeleted.Load(),
		DirsCreated:  c.dirsCreated.Load(),
		BytesCopied:  c.bytesCopied.Load(),
		Elapsed:      c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("copied=%d skipped=%d deleted=%d dirs=%d bytes=%d",
		s.FilesCopied, s.FilesSkipped, s.FilesDeleted, s.DirsCreated, s.BytesCopied)
}
