package engine

import "errors"

// Terminal error kinds. I/O failures are wrapped *os.PathError values and
// carry the path plus the underlying OS error instead of a sentinel.
var (
	// ErrUsage marks bad or conflicting arguments, including copying a
	// path onto itself.
	ErrUsage = errors.New("invalid usage")

	// ErrCircularCopy marks a destination nested inside the source tree,
	// which would recurse without bound.
	ErrCircularCopy = errors.New("circular directory copy attempted")

	// ErrNotFound marks a missing source file.
	ErrNotFound = errors.New("not found")

	// ErrVerifyMismatch marks a post-copy checksum mismatch.
	ErrVerifyMismatch = errors.New("checksum verification failed")

	// ErrNameTooLong marks a directory entry name exceeding the platform bound.
	ErrNameTooLong = errors.New("name too long")

	// ErrNotImplemented marks the reserved bidirectional sync mode.
	ErrNotImplemented = errors.New("sync mode is not implemented")
)
