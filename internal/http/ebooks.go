package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/database/ebooks"
	"github.com/mrlokans/storyhub/internal/importers"
)

// DefaultMaxUploadBytes bounds a single e-book upload.
const DefaultMaxUploadBytes = 64 << 20

type EbooksController struct {
	lifecycle EbookLifecycle
	reader    EbookReader
	audit     AuditLog
	recorder  ImportRecorder
	maxUpload int64
}

// NewEbooksController creates the e-book controller. audit and recorder may be nil.
func NewEbooksController(lifecycle EbookLifecycle, reader EbookReader, audit AuditLog, recorder ImportRecorder, maxUpload int64) *EbooksController {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &EbooksController{
		lifecycle: lifecycle,
		reader:    reader,
		audit:     audit,
		recorder:  recorder,
		maxUpload: maxUpload,
	}
}

// Import handles POST /api/ebooks
// Expects multipart/form-data with a "file" field. An optional "name" field
// replaces the uploaded file name as the display name.
func (ec *EbooksController) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ec.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
			return
		}
		respondBadRequest(c, "file is required")
		return
	}

	displayName := strings.TrimSpace(c.PostForm("name"))
	if displayName == "" {
		displayName = header.Filename
	}

	file, err := header.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer file.Close()

	result, err := ec.lifecycle.Import(c.Request.Context(), file, displayName)

	if ec.recorder != nil {
		ec.recorder.RecordImport(err == nil, result.ChaptersImported)
	}
	if ec.audit != nil {
		bookID := ""
		if result.Book != nil {
			bookID = result.Book.ID
		}
		ec.audit.LogImport(displayName, bookID, result.ChaptersImported, err)
	}

	var importErr *importers.ImportError
	if errors.As(err, &importErr) {
		respondUnprocessable(c, importErr.Error(), gin.H{"file": importErr.DisplayName})
		return
	}
	if err != nil {
		respondInternalError(c, err, "import ebook")
		return
	}
	respondCreated(c, result)
}

// ListEbooks handles GET /api/ebooks
func (ec *EbooksController) ListEbooks(c *gin.Context) {
	books, err := ec.reader.List()
	if err != nil {
		respondInternalError(c, err, "list ebooks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ebooks": books, "count": len(books)})
}

// GetEbook handles GET /api/ebooks/:id
func (ec *EbooksController) GetEbook(c *gin.Context) {
	book, err := ec.reader.GetByID(c.Param("id"))
	if ec.respondLookupError(c, err, "ebook", "get ebook") {
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetChapters handles GET /api/ebooks/:id/chapters
// Chapters are listed without their content.
func (ec *EbooksController) GetChapters(c *gin.Context) {
	id := c.Param("id")
	if _, err := ec.reader.GetByID(id); ec.respondLookupError(c, err, "ebook", "get ebook") {
		return
	}

	chapters, err := ec.reader.GetChapters(id)
	if err != nil {
		respondInternalError(c, err, "get chapters")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ebook_id": id, "chapters": chapters, "count": len(chapters)})
}

// GetChapter handles GET /api/ebooks/:id/chapters/:index
func (ec *EbooksController) GetChapter(c *gin.Context) {
	index, ok := parseIntParam(c, "index")
	if !ok {
		return
	}

	chapter, err := ec.reader.GetChapter(c.Param("id"), index)
	if ec.respondLookupError(c, err, "chapter", "get chapter") {
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// UpdateProgress handles PATCH /api/ebooks/:id/progress
func (ec *EbooksController) UpdateProgress(c *gin.Context) {
	var req struct {
		Chapter  *int `json:"chapter" binding:"required"`
		Position int  `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "chapter is required")
		return
	}

	err := ec.reader.UpdateProgress(c.Param("id"), *req.Chapter, req.Position)
	if errors.Is(err, ebooks.ErrInvalidProgress) {
		respondBadRequest(c, err.Error())
		return
	}
	if ec.respondLookupError(c, err, "ebook", "update progress") {
		return
	}
	respondSuccess(c, "progress saved")
}

// ShareEbook handles POST /api/ebooks/:id/share
func (ec *EbooksController) ShareEbook(c *gin.Context) {
	id := c.Param("id")
	clone, err := ec.lifecycle.Share(c.Request.Context(), id)
	if ec.respondLookupError(c, err, "ebook", "share ebook") {
		return
	}
	if ec.audit != nil {
		ec.audit.LogShare(id, clone.ID, clone.Title)
	}
	respondCreated(c, clone)
}

// DeleteEbook handles DELETE /api/ebooks/:id
func (ec *EbooksController) DeleteEbook(c *gin.Context) {
	id := c.Param("id")
	if err := ec.lifecycle.Delete(c.Request.Context(), id); ec.respondLookupError(c, err, "ebook", "delete ebook") {
		return
	}
	if ec.audit != nil {
		ec.audit.LogDelete("ebook", id, "")
	}
	respondSuccess(c, "ebook deleted")
}

// respondLookupError writes the response for a failed lookup and reports
// whether one was written.
func (ec *EbooksController) respondLookupError(c *gin.Context, err error, resource, context string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, resource)
	default:
		respondInternalError(c, err, context)
	}
	return true
}
