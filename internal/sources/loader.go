package sources

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/mapping"
)

// FileConfig is the YAML shape of one source definition.
//
//	namespace: vod1
//	name: Example VOD
//	base_url: https://vod.example.com/api.php/provide/vod
//	category_path: "?ac=list"
//	list_path: "?ac=detail"
//	content_type: movie
//	response_paths:
//	  list: list
//	  category: class
type FileConfig struct {
	Namespace       string `yaml:"namespace"`
	Name            string `yaml:"name"`
	BaseURL         string `yaml:"base_url"`
	CategoryPath    string `yaml:"category_path"`
	ListPath        string `yaml:"list_path"`
	RemoteConfigURL string `yaml:"remote_config_url"`
	ContentType     string `yaml:"content_type"`
	DetailScreen    string `yaml:"detail_screen"`
	ResponsePaths   struct {
		List     string `yaml:"list"`
		Category string `yaml:"category"`
		Detail   string `yaml:"detail"`
		Search   string `yaml:"search"`
	} `yaml:"response_paths"`
	Mappings []entities.FieldMapping `yaml:"mappings"`
}

// Loader reads source definitions from a directory of YAML files.
type Loader struct {
	dir       string
	templates mapping.Templates
}

func NewLoader(dir string, templates mapping.Templates) *Loader {
	if templates == nil {
		templates = mapping.DefaultTemplates()
	}
	return &Loader{dir: dir, templates: templates}
}

// LoadAll loads every *.yaml and *.yml file in the directory, sorted by file
// name. A missing directory yields no sources.
func (l *Loader) LoadAll() ([]*entities.ContentSource, error) {
	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(l.dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	seen := make(map[string]string)
	var out []*entities.ContentSource
	for _, file := range files {
		src, err := l.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		if prev, dup := seen[src.Namespace]; dup {
			return nil, fmt.Errorf("namespace %q defined in both %s and %s", src.Namespace, prev, file)
		}
		seen[src.Namespace] = file
		out = append(out, src)
		log.Printf("Loaded source %s from %s", src.Namespace, file)
	}

	return out, nil
}

// LoadFile parses and validates one source definition.
func (l *Loader) LoadFile(path string) (*entities.ContentSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return l.build(fc)
}

func (l *Loader) build(fc FileConfig) (*entities.ContentSource, error) {
	if fc.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if fc.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}

	contentType := entities.ContentTypeMovie
	if fc.ContentType != "" {
		ct, err := mapping.ParseContentType(fc.ContentType)
		if err != nil {
			return nil, err
		}
		contentType = ct
	}

	cfg := mapping.Config{
		FieldMappings:        fc.Mappings,
		ListResponsePath:     fc.ResponsePaths.List,
		CategoryResponsePath: fc.ResponsePaths.Category,
		DetailResponsePath:   fc.ResponsePaths.Detail,
		SearchResponsePath:   fc.ResponsePaths.Search,
	}
	editor := mapping.NewEditor(&cfg, l.templates)

	// Explicit mappings win over the template of the content type.
	if len(fc.Mappings) == 0 || contentType == entities.ContentTypeCustom {
		if err := editor.SelectContentType(contentType); err != nil {
			return nil, err
		}
	} else {
		cfg.ContentType = contentType
		if tpl, ok := l.templates.For(contentType); ok {
			cfg.DetailScreenType = tpl.DetailScreen
		}
	}

	if fc.DetailScreen != "" {
		screen, err := mapping.ParseDetailScreenType(fc.DetailScreen)
		if err != nil {
			return nil, err
		}
		if err := editor.SetDetailScreen(screen); err != nil {
			return nil, err
		}
	}

	name := fc.Name
	if name == "" {
		name = fc.Namespace
	}
	src := &entities.ContentSource{
		Namespace:       fc.Namespace,
		Name:            name,
		BaseURL:         fc.BaseURL,
		CategoryPath:    fc.CategoryPath,
		ListPath:        fc.ListPath,
		RemoteConfigURL: fc.RemoteConfigURL,
	}
	cfg.ApplyTo(src)
	return src, nil
}

// RegisterAll upserts loaded sources by namespace. Nothing is pushed to remote
// config URLs.
func RegisterAll(store SourceStore, srcs []*entities.ContentSource) error {
	for _, src := range srcs {
		if err := store.Save(src); err != nil {
			return fmt.Errorf("failed to register source %s: %w", src.Namespace, err)
		}
	}
	return nil
}
