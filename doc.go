/*
Package icat transfers raster images to terminal emulators that implement
the kitty graphics protocol, over the terminal's own input/output stream.

The package covers the full client side of the protocol: escape-sequence
framed commands, chunked zlib+base64 payload transfer, runtime negotiation
of the inline-data vs. temporary-file transfer mechanisms, and cell-grid
placement geometry so images land at the right screen position.

Basic usage:

	tty, err := icat.OpenTTY()
	if err != nil {
	    log.Fatal(err)
	}
	defer tty.Close()

	screen := icat.NewScreen(tty.File())
	screen.WatchResize()

	det := &icat.Detector{TTY: tty, Out: os.Stdout}
	caps, err := det.Detect(icat.DefaultDetectionTimeout)
	if err != nil {
	    log.Fatal(err)
	}
	if !caps.Graphics {
	    log.Fatal(icat.ErrGraphicsUnsupported)
	}

	sess := &icat.Session{Out: os.Stdout, Screen: screen, Caps: caps}
	if err := sess.Process("image.png", false); err != nil {
	    log.Fatal(err)
	}

Images already in PNG form that fit on screen are transferred unmodified,
by file path when the terminal reads files, otherwise as inline frames.
Everything else is converted to a raw RGB/RGBA buffer sized for the target
box and streamed.

Explicit placement:

	place, _ := icat.ParsePlace("40x20@5x2")
	sess := &icat.Session{Out: os.Stdout, Screen: screen, Caps: caps, Place: place}

The cmd/icat command wraps all of this in a cat-like CLI.
*/
package icat
