package icat

import (
	"io/fs"
	"mime"
	"path/filepath"
	"strings"
)

// extraImageTypes covers common raster extensions missing from the
// platform MIME table.
var extraImageTypes = map[string]bool{
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether the path looks like an image by extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if extraImageTypes[ext] {
		return true
	}
	return strings.HasPrefix(mime.TypeByExtension(ext), "image/")
}

// ScanImages walks dir recursively and returns the image files found, in
// walk order. Unreadable subtrees are skipped rather than failing the scan.
func ScanImages(dir string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsImageFile(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}
