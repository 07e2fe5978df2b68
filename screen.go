package icat

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Geometry is the terminal screen size, sampled from the TIOCGWINSZ ioctl.
type Geometry struct {
	WidthPx  int
	HeightPx int
	Cols     int
	Rows     int
}

// CellWidth returns the pixel width of one terminal cell.
func (g Geometry) CellWidth() int {
	return g.WidthPx / g.Cols
}

// CellHeight returns the pixel height of one terminal cell.
func (g Geometry) CellHeight() int {
	return g.HeightPx / g.Rows
}

// Screen provides lazily sampled terminal geometry. A resize notification
// only marks the cached sample dirty; the actual ioctl happens on the next
// Geometry call, never in signal-handling context.
type Screen struct {
	dirty   atomic.Bool
	sampled bool
	geom    Geometry
	query   func() (Geometry, error)
}

// NewScreen returns a Screen backed by the given terminal device.
func NewScreen(tty *os.File) *Screen {
	fd := int(tty.Fd())
	return &Screen{
		query: func() (Geometry, error) {
			ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
			if err != nil {
				return Geometry{}, fmt.Errorf("failed to query window size: %w", err)
			}
			return Geometry{
				WidthPx:  int(ws.Xpixel),
				HeightPx: int(ws.Ypixel),
				Cols:     int(ws.Col),
				Rows:     int(ws.Row),
			}, nil
		},
	}
}

// WatchResize re-samples geometry lazily after the terminal is resized.
// The SIGWINCH handler goroutine does nothing but flip the dirty flag.
func (s *Screen) WatchResize() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGWINCH)
	go func() {
		for range ch {
			s.dirty.Store(true)
		}
	}()
}

// Geometry returns the current screen geometry, re-querying the terminal
// when the cached sample is stale.
func (s *Screen) Geometry() (Geometry, error) {
	if !s.sampled || s.dirty.Swap(false) {
		g, err := s.query()
		if err != nil {
			return Geometry{}, err
		}
		s.geom = g
		s.sampled = true
	}
	return s.geom, nil
}
