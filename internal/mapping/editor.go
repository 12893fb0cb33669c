package mapping

import (
	"errors"
	"fmt"

	"github.com/mrlokans/storyhub/internal/entities"
)

// ErrIndexOutOfRange is returned by the row editing operations when the
// index does not address an existing mapping row.
var ErrIndexOutOfRange = errors.New("mapping index out of range")

// Editor applies the source settings screen operations to a Config.
type Editor struct {
	config    *Config
	templates Templates
}

func NewEditor(config *Config, templates Templates) *Editor {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Editor{config: config, templates: templates}
}

// Config returns the edited configuration.
func (e *Editor) Config() *Config {
	return e.config
}

// SelectContentType switches the content type.
//
// Choosing MOVIE, BOOK or MUSIC replaces every mapping row with the template
// of that type and resets the detail screen, discarding manual edits. CUSTOM
// keeps the current rows, or starts a single empty row when there are none.
func (e *Editor) SelectContentType(t entities.ContentType) error {
	if _, err := ParseContentType(string(t)); err != nil {
		return err
	}

	e.config.ContentType = t

	if t == entities.ContentTypeCustom {
		if len(e.config.FieldMappings) == 0 {
			e.config.FieldMappings = []entities.FieldMapping{{}}
		}
		if e.config.DetailScreenType == "" {
			e.config.DetailScreenType = entities.DetailScreenWebView
		}
		return nil
	}

	tpl, ok := e.templates.For(t)
	if !ok {
		return fmt.Errorf("no template for content type %s", t)
	}
	e.config.FieldMappings = tpl.Mappings
	e.config.DetailScreenType = tpl.DetailScreen
	return nil
}

// SetDetailScreen overrides the detail screen independently of the content type.
func (e *Editor) SetDetailScreen(t entities.DetailScreenType) error {
	if _, err := ParseDetailScreenType(string(t)); err != nil {
		return err
	}
	e.config.DetailScreenType = t
	return nil
}

// AddMapping appends a row and returns its index.
func (e *Editor) AddMapping(m entities.FieldMapping) int {
	e.config.FieldMappings = append(e.config.FieldMappings, m)
	return len(e.config.FieldMappings) - 1
}

// UpdateMapping replaces the row at index.
func (e *Editor) UpdateMapping(index int, m entities.FieldMapping) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.config.FieldMappings[index] = m
	return nil
}

// DeleteMapping removes the row at index, keeping the order of the rest.
func (e *Editor) DeleteMapping(index int) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	rows := e.config.FieldMappings
	e.config.FieldMappings = append(rows[:index:index], rows[index+1:]...)
	return nil
}

func (e *Editor) checkIndex(index int) error {
	if index < 0 || index >= len(e.config.FieldMappings) {
		return fmt.Errorf("%w: %d (have %d rows)", ErrIndexOutOfRange, index, len(e.config.FieldMappings))
	}
	return nil
}
