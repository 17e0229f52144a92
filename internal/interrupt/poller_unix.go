//go:build unix

package interrupt

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// StdinPoller reads single keystrokes from a terminal file descriptor
// using poll(2) with a zero timeout. The descriptor must be in
// non-canonical mode (see EnableCBreak) for unbuffered keys.
type StdinPoller struct {
	fd int
}

// NewStdinPoller creates a poller for f, typically os.Stdin.
func NewStdinPoller(f *os.File) *StdinPoller {
	return &StdinPoller{fd: int(f.Fd())}
}

// Poll reports whether a key is pending and consumes it. It never blocks.
func (p *StdinPoller) Poll() (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		if err == unix.EINTR {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("poll stdin: %w", err)
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, false, nil
	}

	var buf [1]byte
	m, err := unix.Read(p.fd, buf[:])
	if err != nil || m == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

// EnableCBreak switches fd into non-canonical, no-echo mode so single
// keystrokes become readable without Enter. It returns a function that
// restores the previous terminal state.
func EnableCBreak(fd int) (func(), error) {
	old, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("get termios: %w", err)
	}

	raw := *old
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return nil, fmt.Errorf("set termios: %w", err)
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, ioctlWriteTermios, old)
	}, nil
}
