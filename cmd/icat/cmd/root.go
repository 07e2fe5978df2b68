/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blacktop/go-icat"
)

var (
	verbose          bool
	alignFlag        string
	placeFlag        string
	scaleUp          bool
	clearImages      bool
	transferMode     string
	detectSupport    bool
	detectionTimeout float64
	printWindowSize  bool
)

func init() {
	log.SetHandler(clihander.Default)
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	rootCmd.Flags().StringVar(&alignFlag, "align", "center", "Horizontal alignment: center, left or right")
	rootCmd.Flags().StringVar(&placeFlag, "place", "", "Display the image in the WxH@LxT rectangle (cells, origin top-left)")
	rootCmd.Flags().BoolVar(&scaleUp, "scale-up", false, "With --place, scale small images up to fill the rectangle")
	rootCmd.Flags().BoolVar(&clearImages, "clear", false, "Remove all images currently displayed on the screen")
	rootCmd.Flags().StringVar(&transferMode, "transfer-mode", "detect", "Transfer mechanism: detect, file or stream")
	rootCmd.Flags().BoolVar(&detectSupport, "detect-support", false, "Detect image display support and exit (code 1 when unsupported)")
	rootCmd.Flags().Float64Var(&detectionTimeout, "detection-timeout", 10, "Seconds to wait for a terminal response during detection")
	rootCmd.Flags().BoolVar(&printWindowSize, "print-window-size", false, "Print the window size as widthxheight (pixels) and quit")
}

// item is one input source; temp items are owned by this process and
// cleaned up after transfer.
type item struct {
	path string
	temp bool
}

// countingWriter tracks bytes written so verbose mode can report per-item
// transfer sizes.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

var rootCmd = &cobra.Command{
	Use:   "icat [image-file|directory ...]",
	Short: "Display images in your terminal",
	Long: `A cat like utility to display images in the terminal.

You can specify multiple image files and/or directories. Directories are
scanned recursively for image files. If STDIN is not a terminal, image data
will be read from it as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		align, err := icat.ParseAlign(alignFlag)
		if err != nil {
			log.Fatal(err.Error())
		}

		tty, err := icat.OpenTTY()
		if err != nil {
			log.Fatalf("failed to open terminal: %v", err)
		}
		defer tty.Close()

		// Escape frames must reach the terminal even when stdout is
		// redirected.
		var out io.Writer = os.Stdout
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			out = tty.File()
		}

		screen := icat.NewScreen(tty.File())
		screen.WatchResize()

		if printWindowSize {
			g, err := screen.Geometry()
			if err != nil {
				log.Fatalf("failed to query window size: %v", err)
			}
			fmt.Printf("%dx%d", g.WidthPx, g.HeightPx)
			return
		}

		g, err := screen.Geometry()
		if err != nil || g.WidthPx == 0 {
			if detectSupport {
				os.Exit(1)
			}
			log.Fatal(icat.ErrUnsupportedTerminal.Error())
		}

		var place *icat.Place
		if placeFlag != "" {
			place, err = icat.ParsePlace(placeFlag)
			if err != nil {
				log.Fatal(err.Error())
			}
		}

		timeout := time.Duration(detectionTimeout * float64(time.Second))
		detector := &icat.Detector{TTY: tty, Out: out, Silent: detectSupport}

		if detectSupport {
			caps, err := detector.Detect(timeout)
			if err != nil || !caps.Graphics {
				os.Exit(1)
			}
			if caps.Files {
				fmt.Fprint(os.Stderr, "file")
			} else {
				fmt.Fprint(os.Stderr, "stream")
			}
			return
		}

		var caps icat.Capabilities
		switch transferMode {
		case "detect":
			caps, err = detector.Detect(timeout)
			if err != nil {
				log.Fatalf("capability detection failed: %v", err)
			}
			if !caps.Graphics {
				log.Fatalf("%v, use a terminal emulator such as kitty that does support it", icat.ErrGraphicsUnsupported)
			}
		case "file":
			caps = icat.Capabilities{Graphics: true, Files: true}
		case "stream":
			caps = icat.Capabilities{Graphics: true, Files: false}
		default:
			log.Fatalf("not a valid transfer mode: %q", transferMode)
		}

		if clearImages {
			if err := icat.DeleteAllImages(out); err != nil {
				log.Fatalf("failed to clear images: %v", err)
			}
			if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
				return
			}
		}

		items, err := gatherItems(args)
		if err != nil {
			log.Fatal(err.Error())
		}
		if len(items) == 0 {
			log.Fatal("you must specify at least one file to cat")
		}

		if place != nil {
			if len(items) > 1 || isDir(items[0].path) {
				log.Fatal("the --place option can only be used with a single image")
			}
			fmt.Fprint(out, "\x1b7") // save cursor
		}

		cw := &countingWriter{w: out}
		sess := &icat.Session{
			Out:     cw,
			Screen:  screen,
			Caps:    caps,
			Align:   align,
			Place:   place,
			ScaleUp: scaleUp,
		}

		var openErrors []error
		for _, it := range items {
			if err := processItem(sess, cw, it); err != nil {
				var openErr *icat.OpenError
				if errors.As(err, &openErr) {
					openErrors = append(openErrors, openErr)
					continue
				}
				log.Fatal(err.Error())
			}
		}

		if place != nil {
			fmt.Fprint(out, "\x1b8") // restore cursor
		}

		if len(openErrors) > 0 {
			for _, err := range openErrors {
				log.Error(err.Error())
			}
			os.Exit(1)
		}
	},
}

// gatherItems turns CLI arguments plus piped stdin data into the ordered
// list of transfer sources. Stdin data is spooled to a temp file so the
// by-path fast path stays available.
func gatherItems(args []string) ([]item, error) {
	var items []item
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read image data from stdin: %w", err)
		}
		if len(data) > 0 {
			tf, err := os.CreateTemp("", "stdin-image-data-")
			if err != nil {
				return nil, fmt.Errorf("failed to spool stdin data: %w", err)
			}
			if _, err := tf.Write(data); err != nil {
				tf.Close()
				return nil, fmt.Errorf("failed to spool stdin data: %w", err)
			}
			if err := tf.Close(); err != nil {
				return nil, fmt.Errorf("failed to spool stdin data: %w", err)
			}
			items = append(items, item{path: tf.Name(), temp: true})
		}
	}
	for _, arg := range args {
		items = append(items, item{path: arg})
	}
	return items, nil
}

func processItem(sess *icat.Session, cw *countingWriter, it item) error {
	if isDir(it.path) {
		images, err := icat.ScanImages(it.path)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := processOne(sess, cw, item{path: img}); err != nil {
				return err
			}
		}
		return nil
	}
	return processOne(sess, cw, it)
}

func processOne(sess *icat.Session, cw *countingWriter, it item) error {
	before := cw.n
	if err := sess.Process(it.path, it.temp); err != nil {
		return err
	}
	log.Debugf("transferred %s for %s", humanize.Bytes(cw.n-before), it.path)
	return nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
