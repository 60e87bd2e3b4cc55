package download

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal filename",
			input:    "document.pdf",
			expected: "document.pdf",
		},
		{
			name:     "path traversal with parent dirs",
			input:    "../../../etc/passwd",
			expected: "passwd",
		},
		{
			name:     "nested path",
			input:    "foo/bar/baz.txt",
			expected: "baz.txt",
		},
		{
			name:     "absolute path",
			input:    "/etc/passwd",
			expected: "passwd",
		},
		{
			name:     "dot only",
			input:    ".",
			expected: "download",
		},
		{
			name:     "double dot only",
			input:    "..",
			expected: "download",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "download",
		},
		{
			name:     "hidden file",
			input:    ".bashrc",
			expected: ".bashrc",
		},
		{
			name:     "windows style path",
			input:    "..\\..\\Windows\\System32\\config",
			expected: "config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestCandidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		n        int
		expected string
	}{
		{
			name:     "zero returns filename unchanged",
			filename: "report.pdf",
			n:        0,
			expected: "report.pdf",
		},
		{
			name:     "first counter",
			filename: "report.pdf",
			n:        1,
			expected: "report_1.pdf",
		},
		{
			name:     "later counter",
			filename: "report.pdf",
			n:        12,
			expected: "report_12.pdf",
		},
		{
			name:     "no extension",
			filename: "archive",
			n:        2,
			expected: "archive_2",
		},
		{
			name:     "double extension splits last only",
			filename: "backup.tar.gz",
			n:        1,
			expected: "backup.tar_1.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Candidate(tt.filename, tt.n))
		})
	}
}

func TestUniqueFilename(t *testing.T) {
	tests := []struct {
		name          string
		dir           string
		filename      string
		existingFiles map[string]bool
		expected      string
	}{
		{
			name:          "file does not exist",
			dir:           "/tmp",
			filename:      "report.pdf",
			existingFiles: map[string]bool{},
			expected:      "report.pdf",
		},
		{
			name:     "file exists, picks _1",
			dir:      "/tmp",
			filename: "report.pdf",
			existingFiles: map[string]bool{
				"/tmp/report.pdf": true,
			},
			expected: "report_1.pdf",
		},
		{
			name:     "file and _1 exist, picks _2",
			dir:      "/tmp",
			filename: "report.pdf",
			existingFiles: map[string]bool{
				"/tmp/report.pdf":   true,
				"/tmp/report_1.pdf": true,
			},
			expected: "report_2.pdf",
		},
		{
			name:     "gap is reused, smallest n wins",
			dir:      "/tmp",
			filename: "report.pdf",
			existingFiles: map[string]bool{
				"/tmp/report.pdf":   true,
				"/tmp/report_2.pdf": true,
			},
			expected: "report_1.pdf",
		},
		{
			name:     "no extension",
			dir:      "/tmp",
			filename: "download",
			existingFiles: map[string]bool{
				"/tmp/download": true,
			},
			expected: "download_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists := func(path string) bool {
				return tt.existingFiles[filepath.Clean(path)]
			}
			assert.Equal(t, tt.expected, UniqueFilename(tt.dir, tt.filename, exists))
		})
	}
}
