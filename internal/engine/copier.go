package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/steadysync/tempo/internal/event"
)

// syncFile synchronizes one regular file. The steps are strictly ordered:
// stat both sides, checksum both when sizes match, decide, delete a stale
// destination, copy with pacing, preserve timestamps, verify, and in move
// mode delete the source. Any failure aborts the run; a partially written
// destination is removed best-effort.
func (s *session) syncFile(ctx context.Context, src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s: %w", src, ErrNotFound)
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("source %s is not a regular file: %w", src, ErrUsage)
	}

	// A missing destination is legal: size 0, zero timestamps.
	var dstSize, dstSec, dstNsec int64
	dstInfo, err := os.Stat(dst)
	dstExists := err == nil && dstInfo.Mode().IsRegular()
	if dstExists {
		dstSize = dstInfo.Size()
		dstSec = dstInfo.ModTime().Unix()
		dstNsec = int64(dstInfo.ModTime().Nanosecond())
	}

	srcSize := srcInfo.Size()
	srcSec := srcInfo.ModTime().Unix()
	srcNsec := int64(srcInfo.ModTime().Nanosecond())

	// Content comparison is only possible when both sides have the same
	// nonzero size. Empty string means the checksum is unknown.
	var srcSum, dstSum string
	if srcSize > 0 && dstExists && srcSize == dstSize {
		s.report.Emit(event.Event{Type: event.ComparePair, Src: src, Dst: dst})
		if !s.cfg.TestRun {
			if srcSum, err = s.checksumFile(ctx, src); err != nil {
				return err
			}
			if dstSum, err = s.checksumFile(ctx, dst); err != nil {
				return err
			}
		}
	}

	var reasons []string
	if srcSize != dstSize {
		reasons = append(reasons, fmt.Sprintf("size %+d bytes", dstSize-srcSize))
	}
	if srcSec != dstSec {
		reasons = append(reasons, "mtime sec")
	}
	if srcNsec != dstNsec {
		reasons = append(reasons, "mtime nsec")
	}
	if srcSum != dstSum {
		reasons = append(reasons, "checksum")
	}

	if len(reasons) == 0 {
		s.report.Emit(event.Event{Type: event.FileSkipped, Src: src, Dst: dst, Size: srcSize})
		s.stats.AddFilesSkipped(1)
		return s.throttle.fileDone()
	}

	if dstExists {
		s.report.Emit(event.Event{
			Type:   event.DeleteDest,
			Dst:    dst,
			Reason: strings.Join(reasons, ", "),
		})
		if !s.cfg.TestRun {
			if err := os.Remove(dst); err != nil {
				return fmt.Errorf("delete %s: %w", dst, err)
			}
		}
	}

	s.report.Emit(event.Event{Type: event.CopyFile, Src: src, Dst: dst, Size: srcSize})
	if !s.cfg.TestRun {
		streamSum, err := s.copyData(ctx, src, dst, srcInfo.Mode().Perm())
		if err != nil {
			s.removePartial(dst)
			return err
		}

		// The copy stream's checksum must match a source checksum computed
		// before the copy; if none exists it becomes the reference.
		if srcSum != "" && streamSum != srcSum {
			s.removePartial(dst)
			return fmt.Errorf("source %s changed during copy: %w", src, ErrVerifyMismatch)
		}
		if srcSum == "" {
			srcSum = streamSum
		}

		if err := preserveTimes(dst, srcInfo); err != nil {
			return err
		}
	}

	// The verify decision is reported even in test-run; only the
	// checksum work itself is skipped.
	s.report.Emit(event.Event{Type: event.VerifyDest, Dst: dst})
	if !s.cfg.TestRun {
		dstSum, err = s.checksumFile(ctx, dst)
		if err != nil {
			return err
		}
		if dstSum != srcSum {
			s.removePartial(dst)
			return fmt.Errorf("destination %s: %w", dst, ErrVerifyMismatch)
		}
	}

	if s.cfg.Mode == ModeMove {
		s.report.Emit(event.Event{Type: event.DeleteSource, Src: src})
		if !s.cfg.TestRun {
			if err := os.Remove(src); err != nil {
				return fmt.Errorf("delete source %s: %w", src, err)
			}
		}
	}

	s.stats.AddFilesCopied(1)
	s.report.Emit(event.Event{Type: event.FileDone, Src: src, Dst: dst, Size: srcSize})
	return s.throttle.fileDone()
}

// copyData streams src into dst in fixed-size chunks, pacing each write,
// accumulating the stream checksum and polling for interrupts at every
// chunk boundary. Both descriptors are closed before it returns.
func (s *session) copyData(ctx context.Context, src, dst string, perm os.FileMode) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	d := s.newDigest()
	for {
		n, rerr := in.Read(s.buf)
		if n > 0 {
			s.throttle.addBytes(int64(n))
			s.stats.AddBytesCopied(int64(n))

			if s.limiter != nil {
				if err := s.limiter.WaitN(ctx, n); err != nil {
					out.Close()
					return "", err
				}
			}
			if !s.cfg.Faster {
				s.pacer.pause(n)
			}

			_, _ = d.Write(s.buf[:n])

			start := s.clock.Now()
			w, werr := out.Write(s.buf[:n])
			s.pacer.record(s.clock.Since(start), n)
			if werr != nil {
				out.Close()
				return "", fmt.Errorf("write %s: %w", dst, werr)
			}
			if w < n {
				out.Close()
				return "", fmt.Errorf("write %s: %w", dst, io.ErrShortWrite)
			}
		}
		if err := s.checkInterrupt(ctx); err != nil {
			out.Close()
			return "", err
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return "", fmt.Errorf("read %s: %w", src, rerr)
		}
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return d.Sum(), nil
}

// removePartial deletes an aborted destination. Failure is logged only;
// it never masks the error that caused the abort.
func (s *session) removePartial(dst string) {
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove partial destination", "path", dst, "error", err)
	}
}

// preserveTimes restores the source's modification time on the
// destination. Access time is left untouched via UTIME_OMIT. Creation
// time is preserved only where the platform allows; Linux and Darwin
// expose no way to set it.
func preserveTimes(path string, src os.FileInfo) error {
	times := []unix.Timespec{
		{Nsec: unix.UTIME_OMIT},
		unix.NsecToTimespec(src.ModTime().UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0); err != nil {
		return &os.PathError{Op: "utimensat", Path: path, Err: err}
	}
	return nil
}
