// Package importers provides the e-book import pipeline.
//
// # Architecture
//
// An import is a straight line through three collaborators:
//
//	io.Reader → FileStore (private copy) → ChapterParser → Store (book + chapters)
//
// The copy is taken first so the parser and later reads never depend on the
// caller's stream. The book row and its chapter rows are written in a single
// Store call that the database layer runs as one transaction, so a crash can
// not leave a book without chapters. When parsing or persisting fails the
// copied file is removed again.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(
//		storage.NewLocal(cfg.Storage.BooksDir),
//		parsers.NewChapterParser(),
//		ebooks.NewRepository(db.DB),
//	)
//
//	result, err := pipeline.Import(ctx, file, header.Filename)
//	var importErr *importers.ImportError
//	if errors.As(err, &importErr) {
//		// parser rejected the file; nothing was stored
//	}
//
// Share and Delete complete the lifecycle: Share clones the book and its
// chapters under a fresh id pointing at the same file, Delete removes the
// file (best effort) and then the rows.
package importers
