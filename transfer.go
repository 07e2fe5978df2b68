package icat

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Pixel formats understood by the terminal for streamed payloads.
const (
	rgbFormat  = 24
	rgbaFormat = 32
)

// Session transfers images to one terminal. Capabilities come from a
// Detector (or are forced by the transfer-mode flag) and are immutable for
// the life of the session.
type Session struct {
	Out     io.Writer
	Screen  *Screen
	Caps    Capabilities
	Align   Align
	Place   *Place
	ScaleUp bool
}

// Process transfers a single image source. Sources already in the
// protocol's native PNG format that fit the target box go out unmodified;
// everything else is converted to a correctly sized raw buffer first.
// isTempfile marks sources the session owns (e.g. spooled stdin data),
// which are cleaned up after transfer.
func (s *Session) Process(path string, isTempfile bool) error {
	m, err := Identify(path)
	if err != nil {
		return err
	}
	g, err := s.Screen.Geometry()
	if err != nil {
		return err
	}

	// Default target box: full screen width with a generous vertical
	// budget of ten screen heights.
	availW, availH := g.WidthPx, 10*g.HeightPx
	if s.Place != nil {
		availW = s.Place.Width * g.CellWidth()
		availH = s.Place.Height * g.CellHeight()
	}
	needsScaling := m.Width > availW || m.Height > availH || s.ScaleUp

	if m.Format == "png" && !needsScaling {
		transmit := byte('f')
		if isTempfile {
			transmit = 't'
		}
		err = s.show(path, m.Width, m.Height, pngFormat, transmit, false)
	} else {
		format := rgbaFormat
		if m.Mode == "rgb" {
			format = rgbFormat
		}
		var outfile string
		var width, height int
		outfile, width, height, err = Convert(path, m, availW, availH, s.ScaleUp)
		if err != nil {
			return err
		}
		// Generated temporaries are always streamed, never sent by path.
		err = s.show(outfile, width, height, format, 't', true)
	}
	if err != nil {
		return err
	}
	if s.Place == nil {
		// Keep subsequent output below the image.
		if _, err := fmt.Fprintln(s.Out); err != nil {
			return fmt.Errorf("failed to write trailing newline: %w", err)
		}
	}
	return nil
}

// show computes placement geometry for the image and transfers it, by file
// path when the terminal reads files and streamOnly is not set, otherwise
// as chunked inline frames. Transmit mode 't' marks temporary files, which
// are removed (best effort) once the terminal no longer needs the path.
func (s *Session) show(outfile string, width, height, format int, transmit byte, streamOnly bool) error {
	cmd := NewGrCommand()
	cmd.Set("a", 'T')
	cmd.Set("f", format)
	cmd.Set("s", width)
	cmd.Set("v", height)

	g, err := s.Screen.Geometry()
	if err != nil {
		return err
	}
	if s.Place != nil {
		err = SetCursorForPlace(s.Out, g, s.Place, cmd, width, height, s.Align)
	} else {
		err = SetCursor(s.Out, g, cmd, width, height, s.Align)
	}
	if err != nil {
		return err
	}

	if s.Caps.Files && !streamOnly {
		cmd.Set("t", transmit)
		abs, err := filepath.Abs(outfile)
		if err != nil {
			abs = outfile
		}
		payload := []byte(base64.StdEncoding.EncodeToString([]byte(abs)))
		if err := WriteGr(s.Out, cmd, payload); err != nil {
			return err
		}
		if transmit == 't' {
			os.Remove(outfile)
		}
		return nil
	}

	data, err := os.ReadFile(outfile)
	if err != nil {
		return &OpenError{Path: outfile, Err: err}
	}
	if transmit == 't' {
		os.Remove(outfile)
	}
	if format == pngFormat {
		cmd.Set("S", len(data))
	}
	return WriteChunked(s.Out, cmd, data)
}

// DeleteAllImages emits the frame that removes every image currently on
// screen and frees its data.
func DeleteAllImages(w io.Writer) error {
	cmd := NewGrCommand()
	cmd.Set("a", 'd')
	cmd.Set("d", 'A')
	return WriteGr(w, cmd, nil)
}
