package icat

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitImage(t *testing.T) {
	tests := []struct {
		name             string
		w, h, boxW, boxH int
		wantW, wantH     int
	}{
		{"already fits", 100, 50, 800, 600, 100, 50},
		{"too wide", 1600, 800, 800, 6000, 800, 400},
		{"too tall", 100, 1200, 800, 600, 50, 600},
		{"both", 1600, 1200, 800, 600, 800, 600},
		{"exact", 800, 600, 800, 600, 800, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitImage(tt.w, tt.h, tt.boxW, tt.boxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.LessOrEqual(t, w, tt.boxW)
			assert.LessOrEqual(t, h, tt.boxH)
		})
	}
}

func TestConvertShrinksToBox(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 200, 100)
	m, err := Identify(path)
	require.NoError(t, err)

	out, w, h, err := Convert(path, m, 80, 6000, false)
	require.NoError(t, err)
	defer os.Remove(out)

	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, 80*40*4, "rgba buffer is 4 bytes per pixel")
}

func TestConvertRGBBuffer(t *testing.T) {
	path := writeTestJPEG(t, t.TempDir(), 60, 30)
	m, err := Identify(path)
	require.NoError(t, err)
	require.Equal(t, "rgb", m.Mode)

	out, w, h, err := Convert(path, m, 6000, 6000, false)
	require.NoError(t, err)
	defer os.Remove(out)

	assert.Equal(t, 60, w)
	assert.Equal(t, 30, h)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, 60*30*3, "rgb buffer is 3 bytes per pixel")
}

func TestConvertScaleUp(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 10, 5)
	m, err := Identify(path)
	require.NoError(t, err)

	out, w, h, err := Convert(path, m, 100, 6000, true)
	require.NoError(t, err)
	defer os.Remove(out)

	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestConvertMalformedInput(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/broken.png"
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nnot really"), 0o644))

	_, _, _, err := Convert(path, &ImageMetadata{Width: 1, Height: 1, Mode: "rgba", Format: "png"}, 100, 100, false)
	assert.ErrorIs(t, err, ErrConversionFailed)
}
