package icat

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// Align selects the horizontal alignment of a displayed image.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

// ParseAlign converts a CLI alignment choice into an Align.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "center":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	default:
		return 0, fmt.Errorf("not a valid alignment: %q", s)
	}
}

// Place is a caller-specified target rectangle for explicit image
// positioning. All fields are in terminal grid cells, origin (0, 0) at the
// top-left corner of the screen.
type Place struct {
	Width  int
	Height int
	Left   int
	Top    int
}

var placeRe = regexp.MustCompile(`^(\d+)x(\d+)@(\d+)x(\d+)$`)

// ParsePlace parses a placement specification of the form WxH@LxT.
func ParsePlace(raw string) (*Place, error) {
	m := placeRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("not a valid place specification: %q", raw)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	l, _ := strconv.Atoi(m[3])
	t, _ := strconv.Atoi(m[4])
	return &Place{Width: w, Height: h, Left: l, Top: t}, nil
}

// CellXOffset returns the sub-cell horizontal pixel offset that aligns an
// image of the given pixel width within its final cell. Left alignment and
// exact multiples of the cell width need no offset.
func CellXOffset(width, cellWidth int, align Align) int {
	if align == AlignLeft {
		return 0
	}
	extra := width % cellWidth
	if extra == 0 {
		return 0
	}
	if align == AlignRight {
		return cellWidth - extra
	}
	return (cellWidth - extra) / 2
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// floorDiv rounds toward negative infinity, matching the reference
// arithmetic for centering when the result goes negative.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SetCursor prepares cmd and the output stream for default (non-placed)
// rendering of a width x height pixel image. Images wider than the screen
// are confined to the full column count with an explicit cell box; narrower
// images get a sub-cell X offset plus literal leading spaces, which is how
// centering works without native terminal alignment support.
func SetCursor(w io.Writer, g Geometry, cmd *GrCommand, width, height int, align Align) error {
	cw := g.CellWidth()
	cellsNeeded := ceilDiv(width, cw)
	if cellsNeeded > g.Cols {
		_, fitted := FitImage(width, height, g.WidthPx, height)
		cmd.Set("c", g.Cols)
		cmd.Set("r", ceilDiv(fitted, g.CellHeight()))
		return nil
	}
	cmd.Set("X", CellXOffset(width, cw, align))
	var extraCells int
	switch align {
	case AlignCenter:
		extraCells = (g.Cols - cellsNeeded) / 2
	case AlignRight:
		extraCells = g.Cols - cellsNeeded
	}
	if extraCells > 0 {
		if _, err := w.Write(bytes.Repeat([]byte{' '}, extraCells)); err != nil {
			return fmt.Errorf("failed to write alignment padding: %w", err)
		}
	}
	return nil
}

// SetCursorForPlace moves the cursor to the top-left of the requested
// rectangle, adjusted for alignment, before the image frame is written.
// When the rectangle is narrower than the image's cell footprint the extra
// cell count goes negative and the cursor lands left of the rectangle's
// nominal origin; this mirrors the reference client and is intentionally
// not clamped.
func SetCursorForPlace(w io.Writer, g Geometry, place *Place, cmd *GrCommand, width, height int, align Align) error {
	x := place.Left + 1
	cw := g.CellWidth()
	cellsNeeded := ceilDiv(width, cw)
	cmd.Set("X", CellXOffset(width, cw, align))
	var extraCells int
	switch align {
	case AlignCenter:
		extraCells = floorDiv(place.Width-cellsNeeded, 2)
	case AlignRight:
		extraCells = place.Width - cellsNeeded
	}
	if _, err := fmt.Fprintf(w, "\x1b[%d;%dH", place.Top+1, x+extraCells); err != nil {
		return fmt.Errorf("failed to position cursor: %w", err)
	}
	return nil
}
