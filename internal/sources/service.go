// Package sources manages external content sources: their stored
// configuration, category synchronization and mapped item listings.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/mapping"
)

var (
	// ErrSourceNotFound is returned when no source is stored under a namespace.
	ErrSourceNotFound = errors.New("content source not found")
	// ErrInvalidSource wraps configuration errors rejected before storage.
	ErrInvalidSource = errors.New("invalid content source")
)

// SourceStore persists source configurations.
// Implemented by database/contentsources.Repository.
type SourceStore interface {
	Save(src *entities.ContentSource) error
	GetByNamespace(namespace string) (*entities.ContentSource, error)
	List() ([]entities.ContentSource, error)
	Delete(namespace string) error
}

// CategoryStore persists reconciled category trees.
// Implemented by database/categories.Repository.
type CategoryStore interface {
	ReplaceNamespace(namespace string, cats []entities.Category) error
	GetAll(namespace string) ([]entities.Category, error)
	GetTopLevel(namespace string) ([]entities.Category, error)
	GetChildren(namespace string, parentID int) ([]entities.Category, error)
}

// Fetcher performs the network calls. Implemented by Client.
type Fetcher interface {
	FetchCategories(ctx context.Context, src *entities.ContentSource) (any, error)
	FetchList(ctx context.Context, src *entities.ContentSource, page, typeID int) (any, error)
	PushConfig(ctx context.Context, url string, payload any) error
}

// EnvelopeRecorder keeps a copy of raw responses. Implemented by audit.Auditor.
type EnvelopeRecorder interface {
	SaveEnvelope(namespace, kind string, data any) (string, error)
}

// SyncLogger records sync outcomes. Implemented by audit.Service.
type SyncLogger interface {
	LogSync(namespace, action, description string, err error)
}

// MetricsRecorder is implemented by metrics.Collector.
type MetricsRecorder interface {
	RecordSync(namespace string, success bool, duration time.Duration)
	RecordItems(namespace string, valid, invalid int)
	RecordPush(namespace string, success bool)
}

// SyncResult is the outcome of a category sync. Reason is set on failure.
type SyncResult struct {
	Namespace string `json:"namespace"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Count     int    `json:"count"`
}

// ItemPage is one mapped page of a source's item list.
type ItemPage struct {
	Namespace string           `json:"namespace"`
	Page      int              `json:"page"`
	TypeID    int              `json:"type_id,omitempty"`
	Items     []mapping.Result `json:"items"`
	Invalid   int              `json:"invalid"`
}

// SaveResult reports the outcome of storing a source configuration.
type SaveResult struct {
	Source   *entities.ContentSource `json:"source"`
	Problems []mapping.Problem       `json:"problems,omitempty"`
	Pushed   bool                    `json:"pushed"`
}

// Option configures a Service.
type Option func(*Service)

func WithTaxonomy(t categories.Taxonomy) Option {
	return func(s *Service) { s.taxonomy = t }
}

func WithTemplates(t mapping.Templates) Option {
	return func(s *Service) { s.templates = t }
}

func WithEnvelopeRecorder(r EnvelopeRecorder) Option {
	return func(s *Service) { s.envelopes = r }
}

func WithSyncLogger(l SyncLogger) Option {
	return func(s *Service) { s.syncLog = l }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// Service coordinates sources, their categories and the remote endpoints.
type Service struct {
	sources    SourceStore
	categories CategoryStore
	fetcher    Fetcher
	taxonomy   categories.Taxonomy
	templates  mapping.Templates
	envelopes  EnvelopeRecorder
	syncLog    SyncLogger
	metrics    MetricsRecorder
}

func NewService(sources SourceStore, cats CategoryStore, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		sources:    sources,
		categories: cats,
		fetcher:    fetcher,
		taxonomy:   categories.DefaultTaxonomy(),
		templates:  mapping.DefaultTemplates(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Templates returns the mapping templates used when switching content types.
func (s *Service) Templates() mapping.Templates {
	return s.templates
}

// ListSources returns every stored source.
func (s *Service) ListSources() ([]entities.ContentSource, error) {
	return s.sources.List()
}

// GetSource returns the source stored under namespace.
func (s *Service) GetSource(namespace string) (*entities.ContentSource, error) {
	src, err := s.sources.GetByNamespace(namespace)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, namespace)
	}
	return src, err
}

// DeleteSource removes a source together with its categories.
func (s *Service) DeleteSource(namespace string) error {
	err := s.sources.Delete(namespace)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, namespace)
	}
	return err
}

// SaveSource stores src locally, then pushes its configuration to the
// source's remote config URL when one is set. A failed push is logged and
// does not undo the local write.
func (s *Service) SaveSource(ctx context.Context, src *entities.ContentSource) (*SaveResult, error) {
	if err := normalizeSource(src); err != nil {
		return nil, err
	}

	problems := mapping.Validate(mapping.ConfigFromSource(src))
	for _, p := range problems {
		if p.Index < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSource, p.Message)
		}
	}

	if err := s.sources.Save(src); err != nil {
		return nil, fmt.Errorf("failed to save source: %w", err)
	}

	result := &SaveResult{Source: src, Problems: problems}
	if src.RemoteConfigURL == "" {
		return result, nil
	}

	err := s.fetcher.PushConfig(ctx, src.RemoteConfigURL, src)
	if err != nil {
		log.Printf("[Sources] Push of %s config to %s failed: %v", src.Namespace, src.RemoteConfigURL, err)
	} else {
		result.Pushed = true
	}
	if s.metrics != nil {
		s.metrics.RecordPush(src.Namespace, err == nil)
	}
	return result, nil
}

// EditConfig loads the source under namespace, lets edit change its content
// type configuration through a mapping.Editor and saves the result.
func (s *Service) EditConfig(ctx context.Context, namespace string, edit func(*mapping.Editor) error) (*SaveResult, error) {
	src, err := s.GetSource(namespace)
	if err != nil {
		return nil, err
	}

	cfg := mapping.ConfigFromSource(src)
	if err := edit(mapping.NewEditor(&cfg, s.templates)); err != nil {
		return nil, err
	}
	cfg.ApplyTo(src)

	return s.SaveSource(ctx, src)
}

// SyncCategories fetches the category list of a source, reconciles it with
// the taxonomy and replaces the stored tree. Failures never leave a partial
// tree; the previous one stays in place.
func (s *Service) SyncCategories(ctx context.Context, namespace string) SyncResult {
	start := time.Now()
	result := s.syncCategories(ctx, namespace)

	if s.metrics != nil {
		s.metrics.RecordSync(namespace, result.Success, time.Since(start))
	}
	if s.syncLog != nil {
		var err error
		description := fmt.Sprintf("Synced %d categories", result.Count)
		if !result.Success {
			err = errors.New(result.Reason)
			description = "Category sync failed"
		}
		s.syncLog.LogSync(namespace, "category_sync", description, err)
	}

	if result.Success {
		log.Printf("[Sources] Synced %d categories for %s", result.Count, namespace)
	} else {
		log.Printf("[Sources] Category sync for %s failed: %s", namespace, result.Reason)
	}
	return result
}

func (s *Service) syncCategories(ctx context.Context, namespace string) SyncResult {
	result := SyncResult{Namespace: namespace}

	src, err := s.GetSource(namespace)
	if errors.Is(err, ErrSourceNotFound) {
		result.Reason = fmt.Sprintf("Source %q is not configured", namespace)
		return result
	}
	if err != nil {
		result.Reason = fmt.Sprintf("Could not load source %q: %v", namespace, err)
		return result
	}

	envelope, err := s.fetcher.FetchCategories(ctx, src)
	if err != nil {
		result.Reason = fmt.Sprintf("Could not reach %s: %v", src.Name, err)
		return result
	}
	s.recordEnvelope(namespace, "categories", envelope)

	rows, err := mapping.ExtractList(envelope, src.CategoryResponsePath)
	if err != nil {
		result.Reason = fmt.Sprintf("Unexpected category response from %s: %v", src.Name, err)
		return result
	}

	input := make([]entities.Category, 0, len(rows))
	for i, row := range rows {
		cat, err := decodeCategory(row)
		if err != nil {
			result.Reason = fmt.Sprintf("Unexpected category #%d from %s: %v", i+1, src.Name, err)
			return result
		}
		input = append(input, cat)
	}

	merged := categories.Reconcile(input, s.taxonomy)
	if err := s.categories.ReplaceNamespace(namespace, merged); err != nil {
		result.Reason = fmt.Sprintf("Could not store categories: %v", err)
		return result
	}

	result.Success = true
	result.Count = len(merged)
	return result
}

// SyncAll syncs every stored source in turn.
func (s *Service) SyncAll(ctx context.Context) ([]SyncResult, error) {
	srcs, err := s.sources.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	results := make([]SyncResult, 0, len(srcs))
	for _, src := range srcs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, s.SyncCategories(ctx, src.Namespace))
	}
	return results, nil
}

// GetCategories returns the stored tree of namespace in reconciled order.
func (s *Service) GetCategories(namespace string) ([]entities.Category, error) {
	return s.categories.GetAll(namespace)
}

// GetTopLevelCategories returns "All" and the top-level categories of namespace.
func (s *Service) GetTopLevelCategories(namespace string) ([]entities.Category, error) {
	return s.categories.GetTopLevel(namespace)
}

// GetChildCategories returns the children of parentID in namespace.
func (s *Service) GetChildCategories(namespace string, parentID int) ([]entities.Category, error) {
	return s.categories.GetChildren(namespace, parentID)
}

// ListItems fetches one page of items and maps each record with the source's
// field mappings. Records with missing required fields are returned with
// their Missing list filled.
func (s *Service) ListItems(ctx context.Context, namespace string, page, typeID int) (*ItemPage, error) {
	src, err := s.GetSource(namespace)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	envelope, err := s.fetcher.FetchList(ctx, src, page, typeID)
	if err != nil {
		return nil, fmt.Errorf("could not reach %s: %w", src.Name, err)
	}
	s.recordEnvelope(namespace, "list", envelope)

	rows, err := mapping.ExtractList(envelope, src.ListResponsePath)
	if err != nil {
		return nil, fmt.Errorf("unexpected list response from %s: %w", src.Name, err)
	}

	out := &ItemPage{Namespace: namespace, Page: page, TypeID: typeID, Items: make([]mapping.Result, 0, len(rows))}
	for _, row := range rows {
		res := mapping.Apply(row, src.FieldMappings)
		if !res.Valid() {
			out.Invalid++
		}
		out.Items = append(out.Items, res)
	}

	if s.metrics != nil {
		s.metrics.RecordItems(namespace, len(out.Items)-out.Invalid, out.Invalid)
	}
	return out, nil
}

func (s *Service) recordEnvelope(namespace, kind string, envelope any) {
	if s.envelopes == nil {
		return
	}
	if _, err := s.envelopes.SaveEnvelope(namespace, kind, envelope); err != nil {
		log.Printf("[Sources] Failed to save %s envelope for %s: %v", kind, namespace, err)
	}
}

func normalizeSource(src *entities.ContentSource) error {
	src.Namespace = strings.TrimSpace(src.Namespace)
	if src.Namespace == "" {
		return fmt.Errorf("%w: namespace is required", ErrInvalidSource)
	}
	if strings.TrimSpace(src.Name) == "" {
		src.Name = src.Namespace
	}
	if src.ContentType == "" {
		src.ContentType = entities.ContentTypeMovie
	}
	if src.DetailScreenType == "" {
		src.DetailScreenType = entities.DetailScreenVideoPlayer
	}
	return nil
}

func decodeCategory(row map[string]any) (entities.Category, error) {
	id, ok, err := intField(row, "type_id")
	if err != nil {
		return entities.Category{}, err
	}
	if !ok {
		return entities.Category{}, errors.New("type_id is missing")
	}

	name, _ := row["type_name"].(string)
	if name == "" {
		if v, present := row["type_name"]; present && v != nil {
			return entities.Category{}, fmt.Errorf("type_name has unexpected type %T", v)
		}
	}

	parent, _, err := intField(row, "parent_type_id")
	if err != nil {
		return entities.Category{}, err
	}

	return entities.Category{TypeID: id, TypeName: name, ParentTypeID: parent}, nil
}

// intField reads an integer given as a JSON number or a numeric string.
func intField(row map[string]any, key string) (int, bool, error) {
	v, present := row[key]
	if !present || v == nil {
		return 0, false, nil
	}

	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, true, fmt.Errorf("%s is not an integer: %s", key, n)
		}
		return i, true, nil
	case float64:
		if n != float64(int(n)) {
			return 0, true, fmt.Errorf("%s is not an integer: %v", key, n)
		}
		return int(n), true, nil
	case int:
		return n, true, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, true, fmt.Errorf("%s is not an integer: %q", key, n)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("%s has unexpected type %T", key, v)
	}
}
