package parsers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/mrlokans/storyhub/internal/entities"
)

func assertPartition(t *testing.T, chapters []entities.EbookChapter, text string) {
	t.Helper()
	total := utf8.RuneCountInString(text)
	if len(chapters) == 0 {
		t.Fatal("expected at least one chapter")
	}
	if chapters[0].StartPosition != 0 {
		t.Errorf("first chapter should start at 0, got %d", chapters[0].StartPosition)
	}
	if last := chapters[len(chapters)-1]; last.EndPosition != total {
		t.Errorf("last chapter should end at %d, got %d", total, last.EndPosition)
	}
	var joined strings.Builder
	for i, ch := range chapters {
		if ch.ChapterIndex != i {
			t.Errorf("chapter %d has index %d", i, ch.ChapterIndex)
		}
		if ch.StartPosition >= ch.EndPosition {
			t.Errorf("chapter %d has empty range %d..%d", i, ch.StartPosition, ch.EndPosition)
		}
		if i > 0 && chapters[i-1].EndPosition != ch.StartPosition {
			t.Errorf("chapter %d does not continue chapter %d", i, i-1)
		}
		joined.WriteString(ch.Content)
	}
	if joined.String() != text {
		t.Error("chapter contents do not reassemble the text")
	}
}

func TestChapterParser_ChineseHeadings(t *testing.T) {
	text := "第一章 风起\n少年站在山顶。\n\n第二章 云涌\n大雨倾盆。\n第十二章\n结束。\n"

	chapters, err := NewChapterParser().Parse([]byte(text), "书")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(chapters))
	}
	titles := []string{"第一章 风起", "第二章 云涌", "第十二章"}
	for i, want := range titles {
		if chapters[i].Title != want {
			t.Errorf("chapter %d: expected title %q, got %q", i, want, chapters[i].Title)
		}
	}
	if !strings.HasPrefix(chapters[1].Content, "第二章 云涌\n大雨") {
		t.Errorf("unexpected content: %q", chapters[1].Content)
	}
	assertPartition(t, chapters, text)
}

func TestChapterParser_PrefaceBeforeFirstHeading(t *testing.T) {
	text := "这是作者的话。\n楔子\n很久以前。\n第1章 开端\n故事开始。"

	chapters, err := NewChapterParser().Parse([]byte(text), "书")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != PrefaceTitle {
		t.Errorf("expected preface title, got %q", chapters[0].Title)
	}
	if chapters[1].Title != "楔子" {
		t.Errorf("expected 楔子, got %q", chapters[1].Title)
	}
	assertPartition(t, chapters, text)
}

func TestChapterParser_BlankLeadIsFoldedIntoFirstChapter(t *testing.T) {
	text := "\n\n  \nChapter 1: Arrival\nIt rained.\nCHAPTER 2\nIt stopped."

	chapters, err := NewChapterParser().Parse([]byte(text), "Book")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Chapter 1: Arrival" {
		t.Errorf("unexpected title %q", chapters[0].Title)
	}
	assertPartition(t, chapters, text)
}

func TestChapterParser_NoHeadings(t *testing.T) {
	text := "只有一段文字，没有任何章节标题。"

	chapters, err := NewChapterParser().Parse([]byte(text), "短篇")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chapters))
	}
	if chapters[0].Title != "短篇" {
		t.Errorf("expected book title, got %q", chapters[0].Title)
	}
	if chapters[0].EndPosition != utf8.RuneCountInString(text) {
		t.Errorf("offsets should count runes, got end %d", chapters[0].EndPosition)
	}
	assertPartition(t, chapters, text)
}

func TestChapterParser_LongLinesAreNotHeadings(t *testing.T) {
	long := "第一章" + strings.Repeat("很长的句子", 20)
	text := "开头\n" + long + "\n"

	chapters, err := NewChapterParser().Parse([]byte(text), "书")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 1 {
		t.Errorf("expected the long line to stay in the body, got %d chapters", len(chapters))
	}
}

func TestChapterParser_EmptyText(t *testing.T) {
	for _, input := range []string{"", "   \n\t\n", "\xEF\xBB\xBF"} {
		_, err := NewChapterParser().Parse([]byte(input), "书")
		if !errors.Is(err, ErrNoText) {
			t.Errorf("input %q: expected ErrNoText, got %v", input, err)
		}
	}
}

func TestChapterParser_GB18030(t *testing.T) {
	text := "第一章 开始\n内容一\n第二章 结束\n内容二"
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	chapters, err := NewChapterParser().Parse([]byte(encoded), "书")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[1].Title != "第二章 结束" {
		t.Errorf("unexpected title %q", chapters[1].Title)
	}
	assertPartition(t, chapters, text)
}

func TestDecode_StripsBOMAndNormalizesLineEndings(t *testing.T) {
	text, err := Decode([]byte("\xEF\xBB\xBFa\r\nb\rc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a\nb\nc" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestChapterParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("序章\n开始"), 0644); err != nil {
		t.Fatal(err)
	}

	chapters, err := NewChapterParser().ParseFile(path, "书")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Title != "序章" {
		t.Errorf("unexpected chapters: %+v", chapters)
	}

	if _, err := NewChapterParser().ParseFile(filepath.Join(t.TempDir(), "missing.txt"), "书"); err == nil {
		t.Error("expected error for missing file")
	}
}
