package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Template is the built-in mapping set of one content type.
type Template struct {
	DetailScreen entities.DetailScreenType `yaml:"detail_screen"`
	Mappings     []entities.FieldMapping   `yaml:"mappings"`
}

// Templates holds one Template per non-custom content type.
type Templates map[entities.ContentType]Template

// DefaultTemplates returns the built-in movie, book and music templates.
// The field names follow the common video CMS list format.
func DefaultTemplates() Templates {
	return Templates{
		entities.ContentTypeMovie: {
			DetailScreen: entities.DetailScreenVideoPlayer,
			Mappings: []entities.FieldMapping{
				required("vod_id", "id"),
				required("vod_name", "title"),
				optional("vod_pic", "cover", ""),
				optional("vod_remarks", "remarks", ""),
				optional("vod_content", "description", ""),
				optional("type_id", "category_id", "0"),
				optional("vod_year", "year", ""),
				optional("vod_actor", "actors", ""),
				optional("vod_director", "director", ""),
				required("vod_play_url", "play_url"),
			},
		},
		entities.ContentTypeBook: {
			DetailScreen: entities.DetailScreenBookReader,
			Mappings: []entities.FieldMapping{
				required("book_id", "id"),
				required("book_name", "title"),
				optional("author", "author", "佚名"),
				optional("cover", "cover", ""),
				optional("intro", "description", ""),
				optional("category", "category", ""),
				optional("word_count", "word_count", "0"),
				required("chapter_url", "content_url"),
			},
		},
		entities.ContentTypeMusic: {
			DetailScreen: entities.DetailScreenAudioPlayer,
			Mappings: []entities.FieldMapping{
				required("song_id", "id"),
				required("song_name", "title"),
				optional("singer", "artist", ""),
				optional("album", "album", ""),
				optional("pic", "cover", ""),
				optional("duration", "duration", "0"),
				optional("lrc", "lyrics", ""),
				required("url", "audio_url"),
			},
		},
	}
}

// For returns a copy of the template of t.
func (ts Templates) For(t entities.ContentType) (Template, bool) {
	tpl, ok := ts[t]
	if !ok {
		return Template{}, false
	}
	return Template{DetailScreen: tpl.DetailScreen, Mappings: cloneMappings(tpl.Mappings)}, true
}

type templateFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// LoadTemplateOverrides reads a YAML file and replaces the templates it names.
// Content types not present in the file keep their built-in template.
//
//	templates:
//	  movie:
//	    detail_screen: VIDEO_PLAYER
//	    mappings:
//	      - {source_field: name, target_field: title, required: true}
func LoadTemplateOverrides(base Templates, path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template overrides: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template overrides %s: %w", path, err)
	}

	out := make(Templates, len(base))
	for k, v := range base {
		out[k] = v
	}

	for name, tpl := range file.Templates {
		ct, err := ParseContentType(name)
		if err != nil {
			return nil, fmt.Errorf("template overrides %s: %w", path, err)
		}
		if ct == entities.ContentTypeCustom {
			return nil, fmt.Errorf("template overrides %s: CUSTOM has no template", path)
		}
		if tpl.DetailScreen == "" {
			tpl.DetailScreen = base[ct].DetailScreen
		}
		screen, err := ParseDetailScreenType(string(tpl.DetailScreen))
		if err != nil {
			return nil, fmt.Errorf("template overrides %s: %w", path, err)
		}
		tpl.DetailScreen = screen
		out[ct] = tpl
	}

	return out, nil
}

func required(source, target string) entities.FieldMapping {
	return entities.FieldMapping{SourceField: source, TargetField: target, IsRequired: true}
}

func optional(source, target, def string) entities.FieldMapping {
	return entities.FieldMapping{SourceField: source, TargetField: target, DefaultValue: &def}
}

func cloneMappings(in []entities.FieldMapping) []entities.FieldMapping {
	out := make([]entities.FieldMapping, len(in))
	for i, m := range in {
		if m.DefaultValue != nil {
			v := *m.DefaultValue
			m.DefaultValue = &v
		}
		out[i] = m
	}
	return out
}
