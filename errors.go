package icat

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTerminal means the terminal cannot report its screen
	// size in pixels, which the protocol needs for placement geometry.
	ErrUnsupportedTerminal = errors.New("terminal does not support reporting screen sizes via the TIOCGWINSZ ioctl")

	// ErrGraphicsUnsupported means capability detection found neither
	// transfer mechanism. A detection timeout is a valid negative result,
	// not an error; this is only raised by callers that require support.
	ErrGraphicsUnsupported = errors.New("terminal does not support the graphics protocol")

	// ErrUnsupportedFormat means no decoder is registered for the image's
	// format, the in-process analog of a missing conversion toolkit.
	ErrUnsupportedFormat = errors.New("no decoder available for image format")

	// ErrConversionFailed wraps malformed-input failures from Convert.
	ErrConversionFailed = errors.New("image conversion failed")
)

// OpenError is a per-item failure to read an input file. Batch processing
// accumulates these and reports them at the end instead of aborting.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
