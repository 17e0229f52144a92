package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/steadysync/tempo/internal/event"
)

// frame is one directory being traversed: its entry listing and a cursor
// into it. The stack of frames replaces recursion so path depth is
// bounded only by memory.
type frame struct {
	srcDir  string
	dstDir  string
	entries []os.DirEntry
	idx     int
}

// syncTree synchronizes the contents of srcRoot into dstRoot, depth-first
// and pre-order: a subdirectory's destination is validated and created
// before its contents are processed, and a subdirectory is fully processed
// before its parent's remaining entries. Any error aborts the whole walk.
func (s *session) syncTree(ctx context.Context, srcRoot, dstRoot string) error {
	root, err := s.enterDir(srcRoot, dstRoot)
	if err != nil {
		return err
	}
	stack := []*frame{root}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f := stack[len(stack)-1]
		if f.idx >= len(f.entries) {
			// Directory exhausted: mirror cleanup runs against the fully
			// synchronized listing, then the frame pops.
			if s.cfg.Mode == ModeMirror {
				if err := s.mirrorCleanup(f.srcDir, f.dstDir); err != nil {
					return err
				}
			}
			stack = stack[:len(stack)-1]
			continue
		}

		ent := f.entries[f.idx]
		f.idx++

		name := ent.Name()
		if len(name) > unix.NAME_MAX {
			return fmt.Errorf("entry %q: %w", name[:32]+"...", ErrNameTooLong)
		}
		src := filepath.Join(f.srcDir, name)
		dst := filepath.Join(f.dstDir, name)

		switch {
		case ent.IsDir():
			sub, err := s.enterDir(src, dst)
			if err != nil {
				return err
			}
			stack = append(stack, sub)
		case ent.Type().IsRegular():
			if err := s.syncFile(ctx, src, dst); err != nil {
				return err
			}
		default:
			// Symlinks, devices and the rest are ignored.
		}
	}
	return nil
}

// enterDir validates a source directory, detects circular copies, ensures
// the destination directory exists with the source's permissions, and
// returns the frame for its listing. The first destination directory seen
// becomes the circular-copy guard for the rest of the run.
func (s *session) enterDir(src, dst string) (*frame, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", src, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory: %w", src, ErrUsage)
	}
	if id, ok := devInoOf(info); ok && s.guardSet && id == s.guard {
		return nil, fmt.Errorf("source %s is the destination root: %w", src, ErrCircularCopy)
	}

	dinfo, derr := os.Stat(dst)
	switch {
	case derr == nil:
		if !dinfo.IsDir() {
			return nil, fmt.Errorf("destination %s is not a directory: %w", dst, ErrUsage)
		}
	case errors.Is(derr, fs.ErrNotExist):
		s.report.Emit(event.Event{Type: event.DirCreated, Src: src, Dst: dst})
		s.stats.AddDirsCreated(1)
		if !s.cfg.TestRun {
			if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dst, err)
			}
			if dinfo, err = os.Stat(dst); err != nil {
				return nil, fmt.Errorf("stat %s: %w", dst, err)
			}
		}
	default:
		return nil, fmt.Errorf("stat %s: %w", dst, derr)
	}

	if !s.guardSet && dinfo != nil {
		if id, ok := devInoOf(dinfo); ok {
			s.guard = id
			s.guardSet = true
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", src, err)
	}
	return &frame{srcDir: src, dstDir: dst, entries: entries}, nil
}

// mirrorCleanup deletes regular files in dstDir that have no same-named
// regular-file counterpart in srcDir. Deletion failures are logged and do
// not abort the run; in test-run the decision is logged but nothing is
// removed.
func (s *session) mirrorCleanup(srcDir, dstDir string) error {
	entries, err := os.ReadDir(dstDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // test-run against an absent destination
		}
		return fmt.Errorf("readdir %s: %w", dstDir, err)
	}

	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		src := filepath.Join(srcDir, ent.Name())
		if info, err := os.Stat(src); err == nil && info.Mode().IsRegular() {
			continue
		}

		dst := filepath.Join(dstDir, ent.Name())
		s.report.Emit(event.Event{Type: event.DeleteStale, Dst: dst})
		s.stats.AddFilesDeleted(1)
		if !s.cfg.TestRun {
			if err := os.Remove(dst); err != nil {
				slog.Warn("failed to delete stale file", "path", dst, "error", err)
			}
		}
	}
	return nil
}
