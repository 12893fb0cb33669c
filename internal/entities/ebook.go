package entities

import "time"

type Ebook struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	Title            string         `gorm:"index;size:512" json:"title"`
	FilePath         string         `gorm:"size:1024" json:"file_path"`
	FileSize         int64          `json:"file_size"`
	TotalChapters    int            `json:"total_chapters"`
	LastReadChapter  int            `gorm:"default:0" json:"last_read_chapter"`
	LastReadPosition int            `gorm:"default:0" json:"last_read_position"`
	Chapters         []EbookChapter `gorm:"foreignKey:EbookID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Ebook) TableName() string {
	return "ebooks"
}

// EbookChapter is an immutable slice of the book's full text.
// Offsets are rune positions; StartPosition < EndPosition.
type EbookChapter struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	EbookID       string `gorm:"index:idx_ebook_chapter,unique;size:36" json:"ebook_id"`
	ChapterIndex  int    `gorm:"index:idx_ebook_chapter,unique" json:"chapter_index"`
	Title         string `gorm:"size:512" json:"title"`
	StartPosition int    `json:"start_position"`
	EndPosition   int    `json:"end_position"`
	Content       string `gorm:"type:text" json:"content,omitempty"`
}

func (EbookChapter) TableName() string {
	return "ebook_chapters"
}
