package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/entrypoint"
)

// EbookImportCommand imports a local text file as an e-book.
type EbookImportCommand struct {
	DBOptions
	File     string `long:"file" short:"f" required:"true" description:"Path to the .txt file to import"`
	Name     string `long:"name" description:"Display name used for the title (default: the file name)"`
	BooksDir string `long:"books-dir" env:"BOOKS_DIR" description:"Directory holding imported copies"`
	Verbose  bool   `long:"verbose" short:"v" description:"List the detected chapters"`

	out io.Writer
}

func (cmd *EbookImportCommand) Execute(args []string) error {
	cfg := cmd.config()
	if cmd.BooksDir != "" {
		cfg.Storage.BooksDir = cmd.BooksDir
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cmd.File, err)
	}
	defer f.Close()

	name := cmd.Name
	if name == "" {
		name = filepath.Base(cmd.File)
	}

	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintln(cmd.out, "E-book Import")
	fmt.Fprintln(cmd.out, "=============")
	fmt.Fprintf(cmd.out, "File: %s\n", cmd.File)

	result, err := app.EbookImports.Import(context.Background(), f, name)
	app.AuditLog.LogImport(name, bookID(result.Book), result.ChaptersImported, err)
	app.Metrics.RecordImport(err == nil, result.ChaptersImported)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Imported %q as %s\n", result.Book.Title, result.Book.ID)
	fmt.Fprintf(cmd.out, "Chapters: %d\n", result.ChaptersImported)

	if cmd.Verbose {
		chapters, err := app.EbookStore.GetChapters(result.Book.ID)
		if err != nil {
			return fmt.Errorf("failed to list chapters: %w", err)
		}
		for _, ch := range chapters {
			fmt.Fprintf(cmd.out, "  %3d. %s\n", ch.ChapterIndex+1, ch.Title)
		}
	}
	return nil
}

func bookID(book *entities.Ebook) string {
	if book == nil {
		return ""
	}
	return book.ID
}
