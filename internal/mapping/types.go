// Package mapping projects externally shaped JSON records onto the internal
// record schema of a content type, driven by user-editable field mappings.
//
// # Overview
//
// A Config carries the content type, the detail screen used to open items,
// the ordered field mappings and the key paths locating payloads inside a
// source's response envelope. Editor mutates a Config the way the source
// settings screen does; Apply runs the mappings against one raw record.
//
//	cfg := mapping.Config{}
//	editor := mapping.NewEditor(&cfg, mapping.DefaultTemplates())
//	editor.SelectContentType(entities.ContentTypeMovie)
//
//	items, _ := mapping.ExtractList(envelope, cfg.ListResponsePath)
//	for _, raw := range items {
//		result := mapping.Apply(raw, cfg.FieldMappings)
//		if !result.Valid() {
//			log.Printf("missing: %v", result.Missing)
//		}
//	}
package mapping

import (
	"fmt"
	"strings"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Config is the content type configuration of one source.
type Config struct {
	ContentType          entities.ContentType      `json:"content_type"`
	DetailScreenType     entities.DetailScreenType `json:"detail_screen_type"`
	FieldMappings        []entities.FieldMapping   `json:"field_mappings"`
	ListResponsePath     string                    `json:"list_response_path"`
	CategoryResponsePath string                    `json:"category_response_path"`
	DetailResponsePath   string                    `json:"detail_response_path"`
	SearchResponsePath   string                    `json:"search_response_path"`
}

// ConfigFromSource copies the content type configuration out of a source.
func ConfigFromSource(src *entities.ContentSource) Config {
	mappings := make([]entities.FieldMapping, len(src.FieldMappings))
	copy(mappings, src.FieldMappings)
	return Config{
		ContentType:          src.ContentType,
		DetailScreenType:     src.DetailScreenType,
		FieldMappings:        mappings,
		ListResponsePath:     src.ListResponsePath,
		CategoryResponsePath: src.CategoryResponsePath,
		DetailResponsePath:   src.DetailResponsePath,
		SearchResponsePath:   src.SearchResponsePath,
	}
}

// ApplyTo writes the configuration back onto a source. Mapping positions are
// renumbered from insertion order.
func (c Config) ApplyTo(src *entities.ContentSource) {
	src.ContentType = c.ContentType
	src.DetailScreenType = c.DetailScreenType
	src.ListResponsePath = c.ListResponsePath
	src.CategoryResponsePath = c.CategoryResponsePath
	src.DetailResponsePath = c.DetailResponsePath
	src.SearchResponsePath = c.SearchResponsePath

	src.FieldMappings = make([]entities.FieldMapping, len(c.FieldMappings))
	for i, m := range c.FieldMappings {
		m.ID = 0
		m.SourceID = 0
		m.Position = i
		src.FieldMappings[i] = m
	}
}

var contentTypes = []entities.ContentType{
	entities.ContentTypeMovie,
	entities.ContentTypeBook,
	entities.ContentTypeMusic,
	entities.ContentTypeCustom,
}

var detailScreens = []entities.DetailScreenType{
	entities.DetailScreenVideoPlayer,
	entities.DetailScreenBookReader,
	entities.DetailScreenAudioPlayer,
	entities.DetailScreenWebView,
}

// ParseContentType accepts any casing of a known content type.
func ParseContentType(s string) (entities.ContentType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range contentTypes {
		if string(t) == up {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// ParseDetailScreenType accepts any casing of a known detail screen type.
func ParseDetailScreenType(s string) (entities.DetailScreenType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range detailScreens {
		if string(t) == up {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown detail screen type %q", s)
}

// ContentTypes lists the supported content types.
func ContentTypes() []entities.ContentType {
	out := make([]entities.ContentType, len(contentTypes))
	copy(out, contentTypes)
	return out
}
