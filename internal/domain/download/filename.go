// Package download holds the pure filename logic shared by every download
// code path: sanitization of renderer-suggested names and the counter-suffix
// uniqueness algorithm.
package download

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultFilename is used when no valid filename can be determined.
const DefaultFilename = "download"

// SanitizeFilename sanitizes a suggested filename to prevent path traversal.
// Some renderer-suggested names are actually paths, so only the last
// component is kept.
func SanitizeFilename(name string) string {
	// Normalize Windows-style separators to forward slashes.
	// filepath.Base only handles the OS-native separator, so on Linux
	// backslashes would not be treated as path separators.
	name = strings.ReplaceAll(name, "\\", "/")

	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == "" || clean == "/" {
		return DefaultFilename
	}
	return clean
}

// SplitStemExt splits a filename into stem and extension (without the dot).
func SplitStemExt(filename string) (stem, ext string) {
	ext = filepath.Ext(filename)
	stem = strings.TrimSuffix(filename, ext)
	ext = strings.TrimPrefix(ext, ".")
	return stem, ext
}

// Candidate returns the nth collision-avoidance candidate for filename.
// n = 0 is the filename itself; n >= 1 appends the counter suffix before the
// extension: "report.pdf" -> "report_1.pdf".
func Candidate(filename string, n int) string {
	if n == 0 {
		return filename
	}
	stem, ext := SplitStemExt(filename)
	if ext == "" {
		return fmt.Sprintf("%s_%d", stem, n)
	}
	return fmt.Sprintf("%s_%d.%s", stem, n, ext)
}

// UniqueFilename resolves filename against dir using the counter-suffix
// algorithm: the filename itself if free, otherwise stem_n.ext for the
// smallest n >= 1 whose path does not exist. The exists function reports
// whether a path is already taken.
func UniqueFilename(dir, filename string, exists func(path string) bool) string {
	for n := 0; ; n++ {
		candidate := Candidate(filename, n)
		if !exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}
