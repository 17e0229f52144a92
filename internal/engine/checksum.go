package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Rotor32 is a streaming 32-bit rotating hash used for change detection
// and post-copy corruption detection. For each input byte the top bit of
// the state is captured, the low byte is XORed with the input, the state
// shifts left one bit and the captured bit rotates into bit 0. It is
// order-sensitive and deliberately not cryptographic: collisions are
// acceptable, tampering is out of scope.
type Rotor32 struct {
	sum uint32
}

// Write absorbs p into the accumulator. It never fails.
func (r *Rotor32) Write(p []byte) (int, error) {
	s := r.sum
	for _, b := range p {
		msb := s & 0x80000000
		s ^= uint32(b)
		s <<= 1
		if msb != 0 {
			s |= 1
		}
	}
	r.sum = s
	return len(p), nil
}

// Sum32 returns the current accumulator value.
func (r *Rotor32) Sum32() uint32 { return r.sum }

// Reset returns the accumulator to its zero seed.
func (r *Rotor32) Reset() { r.sum = 0 }

func (r *Rotor32) Size() int      { return 4 }
func (r *Rotor32) BlockSize() int { return 1 }

// digest is one file's checksum computation. A fresh digest is seeded per
// file and discarded after its sum is taken; digests are never reused
// across files.
type digest interface {
	io.Writer
	Sum() string
}

type rotorDigest struct {
	Rotor32
}

func (d *rotorDigest) Sum() string {
	return fmt.Sprintf("%08x", d.Sum32())
}

type blakeDigest struct {
	h *blake3.Hasher
}

func (d *blakeDigest) Write(p []byte) (int, error) { return d.h.Write(p) }

func (d *blakeDigest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// newDigest returns a fresh zero-seeded digest for one file.
func (s *session) newDigest() digest {
	if s.cfg.StrongVerify {
		return &blakeDigest{h: blake3.New()}
	}
	return &rotorDigest{}
}

// checksumFile computes the checksum of the file at path, polling for
// interrupts after every chunk. Cancellation here performs no filesystem
// mutation; nothing has been written.
func (s *session) checksumFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := s.newDigest()
	for {
		n, rerr := f.Read(s.buf)
		if n > 0 {
			_, _ = d.Write(s.buf[:n])
		}
		if err := s.checkInterrupt(ctx); err != nil {
			return "", err
		}
		if rerr == io.EOF {
			return d.Sum(), nil
		}
		if rerr != nil {
			return "", fmt.Errorf("read %s: %w", path, rerr)
		}
	}
}
