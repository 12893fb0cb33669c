// Package parsers splits plain-text e-books into chapters.
package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/mrlokans/storyhub/internal/entities"
)

// ErrNoText is returned when a file decodes to nothing but whitespace.
var ErrNoText = errors.New("no readable text")

// PrefaceTitle names the chapter holding text found before the first heading.
const PrefaceTitle = "前言"

const defaultMaxHeadingLength = 40

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Heading patterns, matched against a trimmed line:
//
//	第一章 风起    第12回    第三卷
//	Chapter 7: The Storm
//	序章  楔子  引子  前言  尾声  后记  番外
var headingPattern = regexp.MustCompile(
	`^(?:第[0-9０-９零〇一二两三四五六七八九十百千万]+[章节回卷].*` +
		`|(?i:chapter)\s*[0-9]+.*` +
		`|(?:序章|楔子|引子|前言|尾声|后记|番外).*)$`)

// ChapterParser segments decoded text on heading lines.
type ChapterParser struct {
	// Lines longer than this (in runes) are never treated as headings.
	MaxHeadingLength int
}

func NewChapterParser() *ChapterParser {
	return &ChapterParser{MaxHeadingLength: defaultMaxHeadingLength}
}

// ParseFile reads and segments the file at path.
func (p *ChapterParser) ParseFile(path, bookTitle string) ([]entities.EbookChapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(data, bookTitle)
}

// Parse segments raw file bytes. The returned chapters partition the decoded
// text: indexes are dense from 0, the first chapter starts at offset 0, each
// chapter ends where the next begins and the last ends at the text length.
// Offsets count runes. EbookID is left empty.
func (p *ChapterParser) Parse(data []byte, bookTitle string) ([]entities.EbookChapter, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	type boundary struct {
		title string
		start int
	}

	var bounds []boundary
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if title, ok := p.heading(line); ok {
			bounds = append(bounds, boundary{title: title, start: offset})
		}
		offset += utf8.RuneCountInString(line)
	}

	runes := []rune(text)
	total := len(runes)

	switch {
	case len(bounds) == 0:
		bounds = []boundary{{title: bookTitle, start: 0}}
	case bounds[0].start > 0:
		if strings.TrimSpace(string(runes[:bounds[0].start])) != "" {
			bounds = append([]boundary{{title: PrefaceTitle, start: 0}}, bounds...)
		} else {
			bounds[0].start = 0
		}
	}

	chapters := make([]entities.EbookChapter, len(bounds))
	for i, b := range bounds {
		end := total
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}
		chapters[i] = entities.EbookChapter{
			ChapterIndex:  i,
			Title:         b.title,
			StartPosition: b.start,
			EndPosition:   end,
			Content:       string(runes[b.start:end]),
		}
	}

	return chapters, nil
}

func (p *ChapterParser) heading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	limit := p.MaxHeadingLength
	if limit <= 0 {
		limit = defaultMaxHeadingLength
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return "", false
	}
	if !headingPattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// Decode turns file bytes into text. UTF-8 input (with or without a BOM) is
// used as is; anything else is read as GB18030. Line endings are normalized
// to "\n".
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode text: %w", err)
		}
		text = string(decoded)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
