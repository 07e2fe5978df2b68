package icat

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/nfnt/resize"
)

// FitImage shrinks width x height to fit within boxW x boxH, preserving
// aspect ratio. Images already inside the box come back unchanged.
func FitImage(width, height, boxW, boxH int) (int, int) {
	if height > boxH {
		width = (width * boxH) / height
		height = boxH
		return FitImage(width, height, boxW, boxH)
	}
	if width > boxW {
		height = (height * boxW) / width
		width = boxW
		return FitImage(width, height, boxW, boxH)
	}
	return width, height
}

// Convert decodes the image at path, sizes it for the boxW x boxH pixel
// target (scaling up to the box width only when allowScaleUp is set), and
// writes the pixels as a raw RGB or RGBA buffer to a temporary file. It
// returns the temp path and the final pixel dimensions. The caller owns
// the temporary file.
func Convert(path string, m *ImageMetadata, boxW, boxH int, allowScaleUp bool) (string, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %s: %v", ErrConversionFailed, path, err)
	}

	width, height := m.Width, m.Height
	if allowScaleUp && width < boxW {
		height = (height * boxW) / width
		width = boxW
	}
	if width > boxW || height > boxH {
		width, height = FitImage(width, height, boxW, boxH)
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	if width != m.Width || height != m.Height {
		src = resize.Resize(uint(width), uint(height), src, resize.Bilinear)
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	var data []byte
	if m.Mode == "rgb" {
		data = make([]byte, 0, width*height*3)
		for i := 0; i < len(rgba.Pix); i += 4 {
			data = append(data, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
		}
	} else {
		data = rgba.Pix
	}

	out, err := os.CreateTemp("", "icat-convert-")
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", 0, 0, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", 0, 0, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return out.Name(), width, height, nil
}
