package icat

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageMetadata describes an image without decoding its pixels.
type ImageMetadata struct {
	Width  int
	Height int
	Mode   string // "rgb" or "rgba"
	Format string // registered decoder name, e.g. "png"
}

// Identify reads just enough of the file at path to report its pixel
// dimensions, color mode, and format. Unreadable files yield an *OpenError;
// recognizable-but-undecodable formats yield ErrUnsupportedFormat.
func Identify(path string) (*ImageMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, &OpenError{Path: path, Err: err}
	}
	return &ImageMetadata{
		Width:  cfg.Width,
		Height: cfg.Height,
		Mode:   colorMode(cfg.ColorModel),
		Format: format,
	}, nil
}

// colorMode reduces a color model to the protocol's two pixel layouts.
// Anything that can carry alpha, including palettes, transfers as RGBA.
func colorMode(m color.Model) string {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return "rgba"
	}
	if _, ok := m.(color.Palette); ok {
		return "rgba"
	}
	return "rgb"
}
