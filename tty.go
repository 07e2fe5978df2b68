package icat

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// TerminalIO is the raw-read surface the capability detector needs: scoped
// raw-mode acquisition plus byte reads bounded by a real I/O timeout.
type TerminalIO interface {
	Raw() (restore func() error, err error)
	ReadTimeout(p []byte, d time.Duration) (int, error)
}

// TTY wraps the controlling terminal device for raw protocol exchanges.
type TTY struct {
	f *os.File
}

// OpenTTY opens /dev/tty for reading terminal responses.
func OpenTTY() (*TTY, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal device: %w", err)
	}
	return &TTY{f: f}, nil
}

// NewTTY wraps an already open terminal device (e.g. one side of a pty).
func NewTTY(f *os.File) *TTY {
	return &TTY{f: f}
}

// Raw puts the terminal into raw mode and returns the restore function.
// The caller must invoke restore on all exit paths.
func (t *TTY) Raw() (func() error, error) {
	oldState, err := term.MakeRaw(int(t.f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return func() error {
		return term.Restore(int(t.f.Fd()), oldState)
	}, nil
}

// ReadTimeout reads available bytes, waiting at most d. On expiry it
// returns os.ErrDeadlineExceeded (wrapped) with no busy-waiting involved.
func (t *TTY) ReadTimeout(p []byte, d time.Duration) (int, error) {
	if err := t.f.SetReadDeadline(time.Now().Add(d)); err != nil {
		return 0, fmt.Errorf("failed to set read deadline: %w", err)
	}
	return t.f.Read(p)
}

// File exposes the underlying device, e.g. for geometry ioctls.
func (t *TTY) File() *os.File {
	return t.f
}

// Close releases the terminal device.
func (t *TTY) Close() error {
	return t.f.Close()
}
