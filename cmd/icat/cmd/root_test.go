package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !isDir(dir) {
		t.Fatalf("expected %s to be a directory", dir)
	}
	if isDir(file) {
		t.Fatalf("expected %s to be a file", file)
	}
	if isDir(filepath.Join(dir, "missing")) {
		t.Fatal("missing paths are not directories")
	}
}

func TestCountingWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &countingWriter{w: &buf}

	for _, chunk := range []string{"abc", "", "defg"} {
		if _, err := cw.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}

	if cw.n != 7 {
		t.Fatalf("counted %d bytes, want 7", cw.n)
	}
	if buf.String() != "abcdefg" {
		t.Fatalf("wrote %q", buf.String())
	}
}

func TestGatherItemsArgsOnly(t *testing.T) {
	items, err := gatherItems([]string{"a.png", "b.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, it := range items {
		if it.temp {
			t.Fatalf("argument item %q must not be marked temporary", it.path)
		}
	}
}
