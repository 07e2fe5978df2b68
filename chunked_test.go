package icat

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame is one parsed escape-sequence-delimited control+payload unit.
type frame struct {
	controls map[string]string
	payload  string
}

// parseFrames extracts all graphics frames from captured output, skipping
// any interleaved alignment spaces or cursor movement.
func parseFrames(t *testing.T, out []byte) []frame {
	t.Helper()
	var frames []frame
	rest := string(out)
	for {
		start := strings.Index(rest, "\x1b_G")
		if start == -1 {
			break
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "\x1b\\")
		require.NotEqual(t, -1, end, "unterminated frame")
		body := rest[:end]
		rest = rest[end+2:]

		controls, payload, _ := strings.Cut(body, ";")
		f := frame{controls: make(map[string]string), payload: payload}
		for _, kv := range strings.Split(controls, ",") {
			if k, v, ok := strings.Cut(kv, "="); ok {
				f.controls[k] = v
			}
		}
		frames = append(frames, f)
	}
	return frames
}

func testPayload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestWriteChunkedRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 4095, 4096, 1000000} {
		t.Run(fmt.Sprintf("%d_bytes", size), func(t *testing.T) {
			data := testPayload(size)

			var buf bytes.Buffer
			cmd := NewGrCommand()
			cmd.Set("a", 'T')
			cmd.Set("f", 32)
			require.NoError(t, WriteChunked(&buf, cmd, data))

			frames := parseFrames(t, buf.Bytes())
			require.NotEmpty(t, frames)

			// Exactly one m=0 frame, and it is the last one emitted.
			var encoded strings.Builder
			for i, f := range frames {
				assert.LessOrEqual(t, len(f.payload), 4096)
				if i == len(frames)-1 {
					assert.Equal(t, "0", f.controls["m"])
				} else {
					assert.Equal(t, "1", f.controls["m"])
				}
				encoded.WriteString(f.payload)
			}

			// Only the first frame carries control metadata.
			assert.Equal(t, "z", frames[0].controls["o"])
			assert.Equal(t, "32", frames[0].controls["f"])
			for _, f := range frames[1:] {
				assert.Len(t, f.controls, 1, "continuation frames carry only the m flag")
			}

			compressed, err := base64.StdEncoding.DecodeString(encoded.String())
			require.NoError(t, err)
			zr, err := zlib.NewReader(bytes.NewReader(compressed))
			require.NoError(t, err)
			decoded, err := io.ReadAll(zr)
			require.NoError(t, err)
			require.NoError(t, zr.Close())
			assert.Equal(t, data, decoded)
		})
	}
}

func TestWriteChunkedPNGSkipsCompression(t *testing.T) {
	data := testPayload(10000)

	var buf bytes.Buffer
	cmd := NewGrCommand()
	cmd.Set("a", 'T')
	cmd.Set("f", 100)
	require.NoError(t, WriteChunked(&buf, cmd, data))

	frames := parseFrames(t, buf.Bytes())
	require.NotEmpty(t, frames)
	assert.NotContains(t, frames[0].controls, "o", "PNG payloads are not recompressed")

	var encoded strings.Builder
	for _, f := range frames {
		encoded.WriteString(f.payload)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded.String())
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestWriteChunkedEmptyPayloadStillTerminates(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewGrCommand()
	cmd.Set("a", 'T')
	cmd.Set("f", 100)
	require.NoError(t, WriteChunked(&buf, cmd, nil))

	frames := parseFrames(t, buf.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, "0", frames[0].controls["m"])
	assert.Empty(t, frames[0].payload)
}
