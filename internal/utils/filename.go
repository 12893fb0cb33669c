package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

const maxFilenameRunes = 120

// SanitizeFilename makes a display name safe to use as a file name on disk.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)
	filename = strings.Trim(filename, ".")

	// Truncate on rune boundaries; CJK names are three bytes per rune
	if runes := []rune(filename); len(runes) > maxFilenameRunes {
		filename = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// KnownBookExtensions contains file extensions commonly used for e-books.
// Multi-part extensions come first so they win over their suffix.
var KnownBookExtensions = []string{
	".fb2.zip",
	".txt.gz",
	".fb2",
	".epub",
	".pdf",
	".txt",
	".text",
	".docx",
	".doc",
	".mobi",
	".azw3",
	".azw",
	".umd",
}

// SplitExtension returns the base name and extension of a file name. Known
// book extensions are matched case-insensitively; otherwise the last
// extension is used.
func SplitExtension(filename string) (string, string) {
	base := filepath.Base(filename)
	lower := strings.ToLower(base)
	for _, ext := range KnownBookExtensions {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)], base[len(base)-len(ext):]
		}
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// TitleFromFilename derives a book title from an uploaded file's display name.
//
//	"三体.txt"        → "三体"
//	"/tmp/Dune.EPUB" → "Dune"
//	".txt"           → "Untitled"
func TitleFromFilename(filename string) string {
	base, _ := SplitExtension(filename)
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "Untitled"
	}
	return base
}
