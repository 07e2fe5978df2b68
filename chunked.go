package icat

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
)

// chunkSize is the protocol's per-escape-sequence payload limit, in encoded
// bytes. It is a protocol constant, not a tunable.
const chunkSize = 4096

// pngFormat is the protocol's "already compressed" format sentinel; payloads
// carrying it are transferred verbatim, everything else is deflated first.
const pngFormat = 100

type flusher interface {
	Flush() error
}

// WriteGr serializes cmd plus payload to w as a single frame and flushes,
// so interleaved escape sequences stay well-formed on shared streams.
func WriteGr(w io.Writer, cmd *GrCommand, payload []byte) error {
	if _, err := w.Write(cmd.Serialize(payload)); err != nil {
		return fmt.Errorf("failed to write graphics command: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush graphics command: %w", err)
		}
	}
	return nil
}

// WriteChunked transmits data as a sequence of graphics frames. Unless the
// command's format is the PNG sentinel the payload is zlib-compressed and
// the o=z flag set. The base64-encoded bytes are partitioned into frames of
// at most chunkSize bytes; every frame but the last carries m=1, the last
// carries m=0. The command is cleared between frames, so geometry keys go
// out once on the first frame and only the continuation flag persists.
// At least one frame is always emitted, so the m=0 terminator is present
// even for an empty payload.
func WriteChunked(w io.Writer, cmd *GrCommand, data []byte) error {
	if cmd.Get("f") != fmt.Sprintf("%d", pngFormat) {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("failed to compress payload: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress payload: %w", err)
		}
		data = buf.Bytes()
		cmd.Set("o", 'z')
	}

	encoded := []byte(base64.StdEncoding.EncodeToString(data))
	for first := true; first || len(encoded) > 0; first = false {
		n := min(len(encoded), chunkSize)
		chunk := encoded[:n]
		encoded = encoded[n:]
		if len(encoded) > 0 {
			cmd.Set("m", 1)
		} else {
			cmd.Set("m", 0)
		}
		if err := WriteGr(w, cmd, chunk); err != nil {
			return err
		}
		cmd.Clear()
	}
	return nil
}
