package icat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DefaultDetectionTimeout bounds the wait for probe responses. Terminals
// that do not implement the protocol simply never answer.
const DefaultDetectionTimeout = 10 * time.Second

// Capabilities records which transfer mechanisms the terminal honors,
// learned once per process and threaded through by value afterwards.
type Capabilities struct {
	// Graphics is true when the terminal answered the inline-data probe.
	Graphics bool
	// Files is true when the terminal answered the file-path probe, i.e.
	// it can read image payloads from temporary files.
	Files bool
}

// responseRe matches one probe response frame: ESC _ G i=<id> ; <msg> ESC \
var responseRe = regexp.MustCompile("\x1b_Gi=([12]);(.*?)\x1b\\\\")

// Detector drives the one-shot capability exchange with the terminal. The
// result is cached on the struct, so constructing one Detector per process
// gives idempotent detection.
type Detector struct {
	TTY    TerminalIO
	Out    io.Writer
	Silent bool

	caps *Capabilities
}

// Detect writes two probes, one inline and one by temporary file path, and
// collects their correlated responses until both have answered or the
// timeout elapses. A timeout is not an error: whatever subset of responses
// arrived determines the capabilities.
func (d *Detector) Detect(timeout time.Duration) (Capabilities, error) {
	if d.caps != nil {
		return *d.caps, nil
	}
	if !d.Silent {
		fmt.Fprintf(d.Out, "Checking for graphics (%gs max. wait)...\r", timeout.Seconds())
		defer io.WriteString(d.Out, "\x1b[J") // clear probe artifacts
	}

	payload := []byte("abcd")
	tmp, err := os.CreateTemp("", "icat-detect-")
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to create probe file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return Capabilities{}, fmt.Errorf("failed to write probe file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Capabilities{}, fmt.Errorf("failed to write probe file: %w", err)
	}

	if err := d.writeProbes(tmp.Name(), payload); err != nil {
		return Capabilities{}, err
	}

	responses, err := d.collect(timeout)
	if err != nil {
		return Capabilities{}, err
	}
	caps := Capabilities{Graphics: responses[1], Files: responses[2]}
	d.caps = &caps
	return caps, nil
}

func (d *Detector) writeProbes(path string, payload []byte) error {
	encode := func(b []byte) []byte {
		return []byte(base64.StdEncoding.EncodeToString(b))
	}

	cmd := NewGrCommand()
	cmd.Set("a", 'q')
	cmd.Set("s", 1)
	cmd.Set("v", 1)
	cmd.Set("i", 1)
	if err := WriteGr(d.Out, cmd, encode(payload)); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cmd.Clear()
	cmd.Set("a", 'q')
	cmd.Set("s", 1)
	cmd.Set("v", 1)
	cmd.Set("i", 2)
	cmd.Set("t", 'f')
	return WriteGr(d.Out, cmd, encode([]byte(abs)))
}

// collect accumulates terminal input and scans it for response frames.
// Only the first response per probe id counts.
func (d *Detector) collect(timeout time.Duration) (map[int]bool, error) {
	restore, err := d.TTY.Raw()
	if err != nil {
		return nil, err
	}
	defer restore()

	responses := make(map[int]bool)
	var received []byte
	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for len(responses) < 2 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		n, err := d.TTY.ReadTimeout(buf, remaining)
		if n > 0 {
			received = append(received, buf[:n]...)
			for _, m := range responseRe.FindAllSubmatch(received, -1) {
				id := int(m[1][0] - '0')
				if _, seen := responses[id]; !seen {
					responses[id] = string(m[2]) == "OK"
				}
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read terminal response: %w", err)
		}
	}
	return responses, nil
}
