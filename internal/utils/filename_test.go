package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "keeps chinese characters",
			input:    "三体 第一部",
			expected: "三体 第一部",
		},
		{
			name:     "strips leading dots",
			input:    "../secret",
			expected: "secret",
		},
		{
			name:     "trims whitespace",
			input:    "  filename  ",
			expected: "filename",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("书", 300)

	result := SanitizeFilename(long)

	assert.True(t, utf8.ValidString(result))
	assert.Equal(t, maxFilenameRunes, utf8.RuneCountInString(result))
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"三体.txt":          "三体",
		"/tmp/Dune.EPUB":  "Dune",
		"archive.fb2.zip": "archive",
		"notes.md":        "notes",
		"README":          "README",
		".txt":            "Untitled",
		"  spaced .txt":   "spaced",
		"":                "Untitled",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, TitleFromFilename(input))
		})
	}
}

func TestSplitExtension(t *testing.T) {
	base, ext := SplitExtension("Book.TXT")
	assert.Equal(t, "Book", base)
	assert.Equal(t, ".TXT", ext)

	base, ext = SplitExtension("novel.txt.gz")
	assert.Equal(t, "novel", base)
	assert.Equal(t, ".txt.gz", ext)
}
