package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenPath_ShortUnchanged(t *testing.T) {
	assert.Equal(t, "/tmp/f.txt", ShortenPath("/tmp/f.txt", 40))
}

func TestShortenPath_CollapsesMiddle(t *testing.T) {
	long := "/home/user/projects/" + strings.Repeat("deep/", 30) + "file.txt"
	got := ShortenPath(long, 40)

	assert.LessOrEqual(t, len(got), 40)
	assert.Contains(t, got, " ... ")
	assert.True(t, strings.HasPrefix(long, got[:5]))
	assert.True(t, strings.HasSuffix(long, got[len(got)-5:]))
}

func TestShortenPath_TinyBudget(t *testing.T) {
	got := ShortenPath("abcdefghij", 3)
	assert.Equal(t, "a ... j", got)
}
