package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()
	c.AddFilesCopied(3)
	c.AddFilesSkipped(2)
	c.AddFilesDeleted(1)
	c.AddDirsCreated(4)
	c.AddBytesCopied(1 << 20)

	s := c.Snapshot()
	assert.Equal(t, int64(3), s.FilesCopied)
	assert.Equal(t, int64(2), s.FilesSkipped)
	assert.Equal(t, int64(1), s.FilesDeleted)
	assert.Equal(t, int64(4), s.DirsCreated)
	assert.Equal(t, int64(1<<20), s.BytesCopied)
	assert.GreaterOrEqual(t, s.Elapsed, time.Duration(0))
}

func TestSnapshot_String(t *testing.T) {
	s := Snapshot{FilesCopied: 1, FilesSkipped: 2, FilesDeleted: 3, DirsCreated: 4, BytesCopied: 5}
	assert.Equal(t, "copied=1 skipped=2 deleted=3 dirs=4 bytes=5", s.String())
}
