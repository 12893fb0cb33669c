package importers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/utils"
)

// FileStore keeps imported files in app-private storage.
type FileStore interface {
	// Save copies src verbatim and returns the stored path and byte count.
	Save(src io.Reader, displayName string) (path string, size int64, err error)
	// Remove deletes a stored file. Missing files are not an error.
	Remove(path string) error
}

// ChapterParser segments a stored file into chapters with rune offsets.
type ChapterParser interface {
	ParseFile(path, bookTitle string) ([]entities.EbookChapter, error)
}

// Store persists books and their chapters.
type Store interface {
	// CreateWithChapters writes the book and all chapters atomically.
	CreateWithChapters(book *entities.Ebook, chapters []entities.EbookChapter) error
	GetByID(id string) (*entities.Ebook, error)
	// Clone copies a book and its chapters under newID.
	Clone(id, newID string) (*entities.Ebook, error)
	// Delete removes a book and its chapters.
	Delete(id string) error
	// CountByFilePath counts the books backed by path.
	CountByFilePath(path string) (int64, error)
}

// ImportResult summarizes one imported file.
type ImportResult struct {
	Book             *entities.Ebook `json:"book"`
	ChaptersImported int             `json:"chapters_imported"`
}

// Pipeline handles the e-book lifecycle: import, share and delete.
type Pipeline struct {
	files  FileStore
	parser ChapterParser
	store  Store
	newID  func() string
}

func NewPipeline(files FileStore, parser ChapterParser, store Store) *Pipeline {
	return &Pipeline{
		files:  files,
		parser: parser,
		store:  store,
		newID:  uuid.NewString,
	}
}

// Import copies src into private storage, parses the copy and stores the
// book with its chapters. The title is displayName without its extension.
//
// A parser failure is returned as *ImportError. Any failure after the copy
// removes the copied file; nothing is persisted.
func (p *Pipeline) Import(ctx context.Context, src io.Reader, displayName string) (ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}

	title := utils.TitleFromFilename(displayName)

	path, size, err := p.files.Save(src, displayName)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to copy %s: %w", displayName, err)
	}

	chapters, err := p.parser.ParseFile(path, title)
	if err != nil {
		p.discard(path)
		return ImportResult{}, &ImportError{DisplayName: displayName, Message: err.Error(), Err: err}
	}

	if err := ctx.Err(); err != nil {
		p.discard(path)
		return ImportResult{}, err
	}

	book := &entities.Ebook{
		ID:            p.newID(),
		Title:         title,
		FilePath:      path,
		FileSize:      size,
		TotalChapters: len(chapters),
	}
	for i := range chapters {
		chapters[i].EbookID = book.ID
		chapters[i].ChapterIndex = i
	}

	if err := p.store.CreateWithChapters(book, chapters); err != nil {
		p.discard(path)
		return ImportResult{}, fmt.Errorf("failed to save %s: %w", displayName, err)
	}

	log.Printf("Imported %q: %d chapters, %d bytes", title, len(chapters), size)

	return ImportResult{Book: book, ChaptersImported: len(chapters)}, nil
}

// Share creates an independent copy of a book under a fresh id. Chapters are
// copied and re-keyed; the backing file is shared, not duplicated.
func (p *Pipeline) Share(ctx context.Context, id string) (*entities.Ebook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clone, err := p.store.Clone(id, p.newID())
	if err != nil {
		return nil, fmt.Errorf("failed to share book %s: %w", id, err)
	}
	return clone, nil
}

// Delete removes the backing file and then the book and its chapters.
// File removal is best effort and skipped while a shared copy still points
// at the same file.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := p.store.GetByID(id)
	if err != nil {
		return err
	}

	if book.FilePath != "" {
		p.removeUnshared(book)
	}

	if err := p.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}
	return nil
}

func (p *Pipeline) removeUnshared(book *entities.Ebook) {
	refs, err := p.store.CountByFilePath(book.FilePath)
	if err != nil {
		log.Printf("Failed to count references to %s: %v", book.FilePath, err)
		return
	}
	if refs > 1 {
		return
	}
	if err := p.files.Remove(book.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to remove file for book %s: %v", book.ID, err)
	}
}

func (p *Pipeline) discard(path string) {
	if err := p.files.Remove(path); err != nil {
		log.Printf("Failed to remove %s: %v", path, err)
	}
}
