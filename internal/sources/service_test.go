package sources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/mapping"
)

type memSourceStore struct {
	sources map[string]*entities.ContentSource
	saveErr error
}

func newMemSourceStore(srcs ...*entities.ContentSource) *memSourceStore {
	m := &memSourceStore{sources: make(map[string]*entities.ContentSource)}
	for _, s := range srcs {
		m.sources[s.Namespace] = s
	}
	return m
}

func (m *memSourceStore) Save(src *entities.ContentSource) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *src
	m.sources[src.Namespace] = &cp
	return nil
}

func (m *memSourceStore) GetByNamespace(namespace string) (*entities.ContentSource, error) {
	src, ok := m.sources[namespace]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *src
	return &cp, nil
}

func (m *memSourceStore) List() ([]entities.ContentSource, error) {
	out := make([]entities.ContentSource, 0, len(m.sources))
	for _, ns := range []string{"a", "b", "vod1"} {
		if s, ok := m.sources[ns]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSourceStore) Delete(namespace string) error {
	if _, ok := m.sources[namespace]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.sources, namespace)
	return nil
}

type memCategoryStore struct {
	trees map[string][]entities.Category
}

func (m *memCategoryStore) ReplaceNamespace(namespace string, cats []entities.Category) error {
	if m.trees == nil {
		m.trees = make(map[string][]entities.Category)
	}
	m.trees[namespace] = cats
	return nil
}

func (m *memCategoryStore) GetAll(namespace string) ([]entities.Category, error) {
	return m.trees[namespace], nil
}

func (m *memCategoryStore) GetTopLevel(namespace string) ([]entities.Category, error) {
	var out []entities.Category
	for _, c := range m.trees[namespace] {
		if c.IsTopLevel() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategoryStore) GetChildren(namespace string, parentID int) ([]entities.Category, error) {
	var out []entities.Category
	for _, c := range m.trees[namespace] {
		if parentID != 0 && c.ParentTypeID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubFetcher struct {
	categories any
	list       any
	err        error
	pushErr    error
	pushedURL  string
	pushed     any
	listPage   int
	listType   int
}

func (f *stubFetcher) FetchCategories(ctx context.Context, src *entities.ContentSource) (any, error) {
	return f.categories, f.err
}

func (f *stubFetcher) FetchList(ctx context.Context, src *entities.ContentSource, page, typeID int) (any, error) {
	f.listPage, f.listType = page, typeID
	return f.list, f.err
}

func (f *stubFetcher) PushConfig(ctx context.Context, url string, payload any) error {
	f.pushedURL, f.pushed = url, payload
	return f.pushErr
}

type syncCall struct {
	namespace string
	err       error
}

type recordingLog struct {
	calls []syncCall
}

func (r *recordingLog) LogSync(namespace, action, description string, err error) {
	r.calls = append(r.calls, syncCall{namespace: namespace, err: err})
}

type recordingMetrics struct {
	syncs   map[bool]int
	valid   int
	invalid int
	pushes  map[bool]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{syncs: map[bool]int{}, pushes: map[bool]int{}}
}

func (r *recordingMetrics) RecordSync(namespace string, success bool, d time.Duration) {
	r.syncs[success]++
}

func (r *recordingMetrics) RecordItems(namespace string, valid, invalid int) {
	r.valid += valid
	r.invalid += invalid
}

func (r *recordingMetrics) RecordPush(namespace string, success bool) {
	r.pushes[success]++
}

type recordingEnvelopes struct {
	kinds []string
}

func (r *recordingEnvelopes) SaveEnvelope(namespace, kind string, data any) (string, error) {
	r.kinds = append(r.kinds, kind)
	return "/tmp/" + namespace + "_" + kind + ".json", nil
}

func vodSource() *entities.ContentSource {
	src := &entities.ContentSource{
		Namespace:            "vod1",
		Name:                 "VOD One",
		BaseURL:              "https://vod.example.com/api",
		ContentType:          entities.ContentTypeMovie,
		DetailScreenType:     entities.DetailScreenVideoPlayer,
		CategoryResponsePath: "class",
		ListResponsePath:     "list",
	}
	tpl, _ := mapping.DefaultTemplates().For(entities.ContentTypeMovie)
	src.FieldMappings = tpl.Mappings
	return src
}

func TestService_SyncCategories(t *testing.T) {
	fetcher := &stubFetcher{categories: map[string]any{
		"class": []any{
			map[string]any{"type_id": json.Number("101"), "type_name": "电影/动作片"},
			map[string]any{"type_id": "999", "type_name": "未知类别", "parent_type_id": "0"},
			map[string]any{"type_id": float64(50), "type_name": "电影"},
		},
	}}
	cats := &memCategoryStore{}
	logs := &recordingLog{}
	metrics := newRecordingMetrics()
	envelopes := &recordingEnvelopes{}

	svc := NewService(newMemSourceStore(vodSource()), cats, fetcher,
		WithSyncLogger(logs), WithMetrics(metrics), WithEnvelopeRecorder(envelopes))

	result := svc.SyncCategories(context.Background(), "vod1")

	require.True(t, result.Success, result.Reason)
	assert.Equal(t, 8, result.Count)
	assert.Empty(t, result.Reason)

	stored := cats.trees["vod1"]
	require.Len(t, stored, 8)
	assert.Equal(t, entities.Category{TypeID: 101, TypeName: "动作片", ParentTypeID: 1}, stored[5])
	assert.Equal(t, entities.Category{TypeID: 999, TypeName: "未知类别", ParentTypeID: 0}, stored[6])
	assert.Equal(t, entities.Category{TypeID: 50, TypeName: "电影", ParentTypeID: 0}, stored[7])

	require.Len(t, logs.calls, 1)
	assert.NoError(t, logs.calls[0].err)
	assert.Equal(t, 1, metrics.syncs[true])
	assert.Equal(t, []string{"categories"}, envelopes.kinds)
}

func TestService_SyncCategories_EmptyListStoresTaxonomy(t *testing.T) {
	fetcher := &stubFetcher{categories: map[string]any{"class": []any{}}}
	cats := &memCategoryStore{}
	svc := NewService(newMemSourceStore(vodSource()), cats, fetcher)

	result := svc.SyncCategories(context.Background(), "vod1")

	require.True(t, result.Success)
	assert.Equal(t, 22, result.Count)
	assert.Len(t, cats.trees["vod1"], 22)
}

func TestService_SyncCategories_Failures(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		fetcher   *stubFetcher
		reason    string
	}{
		{
			name:      "unknown source",
			namespace: "missing",
			fetcher:   &stubFetcher{},
			reason:    "not configured",
		},
		{
			name:      "network failure",
			namespace: "vod1",
			fetcher:   &stubFetcher{err: errors.New("connection refused")},
			reason:    "connection refused",
		},
		{
			name:      "envelope is not a list",
			namespace: "vod1",
			fetcher:   &stubFetcher{categories: map[string]any{"class": "nope"}},
			reason:    "Unexpected category response",
		},
		{
			name:      "bad type id",
			namespace: "vod1",
			fetcher: &stubFetcher{categories: map[string]any{"class": []any{
				map[string]any{"type_id": "abc", "type_name": "x"},
			}}},
			reason: "type_id is not an integer",
		},
		{
			name:      "missing type id",
			namespace: "vod1",
			fetcher: &stubFetcher{categories: map[string]any{"class": []any{
				map[string]any{"type_name": "x"},
			}}},
			reason: "type_id is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := &memCategoryStore{trees: map[string][]entities.Category{
				"vod1": {{TypeID: 7, TypeName: "previous"}},
			}}
			logs := &recordingLog{}
			metrics := newRecordingMetrics()
			svc := NewService(newMemSourceStore(vodSource()), cats, tt.fetcher,
				WithSyncLogger(logs), WithMetrics(metrics))

			result := svc.SyncCategories(context.Background(), tt.namespace)

			assert.False(t, result.Success)
			assert.Contains(t, result.Reason, tt.reason)
			assert.Equal(t, []entities.Category{{TypeID: 7, TypeName: "previous"}}, cats.trees["vod1"],
				"previous tree must be kept")
			require.Len(t, logs.calls, 1)
			assert.Error(t, logs.calls[0].err)
			assert.Equal(t, 1, metrics.syncs[false])
		})
	}
}

func TestService_SyncAll(t *testing.T) {
	a := vodSource()
	a.Namespace = "a"
	b := vodSource()
	b.Namespace = "b"
	fetcher := &stubFetcher{categories: map[string]any{"class": []any{}}}
	cats := &memCategoryStore{}
	svc := NewService(newMemSourceStore(a, b), cats, fetcher)

	results, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Namespace)
	assert.Equal(t, "b", results[1].Namespace)
	assert.Len(t, cats.trees, 2)
}

func TestService_ListItems(t *testing.T) {
	fetcher := &stubFetcher{list: map[string]any{
		"list": []any{
			map[string]any{"vod_id": json.Number("1"), "vod_name": "A", "vod_play_url": "https://p/1"},
			map[string]any{"vod_id": json.Number("2"), "vod_name": "B"},
			"junk",
		},
	}}
	metrics := newRecordingMetrics()
	svc := NewService(newMemSourceStore(vodSource()), &memCategoryStore{}, fetcher, WithMetrics(metrics))

	page, err := svc.ListItems(context.Background(), "vod1", 2, 101)

	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.listPage)
	assert.Equal(t, 101, fetcher.listType)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Invalid)

	assert.True(t, page.Items[0].Valid())
	assert.Equal(t, "A", page.Items[0].Fields["title"])
	assert.Equal(t, "0", page.Items[0].Fields["category_id"])
	assert.Equal(t, []string{"play_url"}, page.Items[1].Missing)

	assert.Equal(t, 1, metrics.valid)
	assert.Equal(t, 1, metrics.invalid)
}

func TestService_ListItems_Errors(t *testing.T) {
	svc := NewService(newMemSourceStore(vodSource()), &memCategoryStore{}, &stubFetcher{err: errors.New("timeout")})

	_, err := svc.ListItems(context.Background(), "missing", 1, 0)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = svc.ListItems(context.Background(), "vod1", 1, 0)
	assert.ErrorContains(t, err, "timeout")
}

func TestService_SaveSource_PushesConfig(t *testing.T) {
	store := newMemSourceStore()
	fetcher := &stubFetcher{}
	metrics := newRecordingMetrics()
	svc := NewService(store, &memCategoryStore{}, fetcher, WithMetrics(metrics))

	src := vodSource()
	src.RemoteConfigURL = "https://cfg.example.com/vod1"

	result, err := svc.SaveSource(context.Background(), src)

	require.NoError(t, err)
	assert.True(t, result.Pushed)
	assert.Equal(t, "https://cfg.example.com/vod1", fetcher.pushedURL)
	assert.Contains(t, store.sources, "vod1")
	assert.Equal(t, 1, metrics.pushes[true])
}

func TestService_SaveSource_PushFailureKeepsLocalWrite(t *testing.T) {
	store := newMemSourceStore()
	fetcher := &stubFetcher{pushErr: errors.New("unreachable")}
	svc := NewService(store, &memCategoryStore{}, fetcher)

	src := vodSource()
	src.RemoteConfigURL = "https://cfg.example.com/vod1"

	result, err := svc.SaveSource(context.Background(), src)

	require.NoError(t, err)
	assert.False(t, result.Pushed)
	assert.Contains(t, store.sources, "vod1")
}

func TestService_SaveSource_Validation(t *testing.T) {
	svc := NewService(newMemSourceStore(), &memCategoryStore{}, &stubFetcher{})

	_, err := svc.SaveSource(context.Background(), &entities.ContentSource{})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = svc.SaveSource(context.Background(), &entities.ContentSource{Namespace: "x", ContentType: "PODCAST"})
	assert.ErrorContains(t, err, "unknown content type")

	result, err := svc.SaveSource(context.Background(), &entities.ContentSource{
		Namespace:     " x ",
		FieldMappings: []entities.FieldMapping{{SourceField: "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "x", result.Source.Namespace)
	assert.Equal(t, "x", result.Source.Name)
	assert.Equal(t, entities.ContentTypeMovie, result.Source.ContentType)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, 0, result.Problems[0].Index)
	assert.False(t, result.Pushed)
}

func TestService_SaveSource_StoreError(t *testing.T) {
	store := newMemSourceStore()
	store.saveErr = errors.New("disk full")
	fetcher := &stubFetcher{}
	svc := NewService(store, &memCategoryStore{}, fetcher)

	src := vodSource()
	src.RemoteConfigURL = "https://cfg.example.com/vod1"
	_, err := svc.SaveSource(context.Background(), src)

	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, fetcher.pushedURL, "nothing is pushed when the local write fails")
}

func TestService_EditConfig(t *testing.T) {
	store := newMemSourceStore(vodSource())
	svc := NewService(store, &memCategoryStore{}, &stubFetcher{})

	_, err := svc.EditConfig(context.Background(), "vod1", func(e *mapping.Editor) error {
		return e.SelectContentType(entities.ContentTypeBook)
	})
	require.NoError(t, err)

	stored := store.sources["vod1"]
	assert.Equal(t, entities.ContentTypeBook, stored.ContentType)
	assert.Equal(t, entities.DetailScreenBookReader, stored.DetailScreenType)
	assert.Equal(t, "book_id", stored.FieldMappings[0].SourceField)

	_, err = svc.EditConfig(context.Background(), "vod1", func(e *mapping.Editor) error {
		return e.DeleteMapping(99)
	})
	assert.ErrorIs(t, err, mapping.ErrIndexOutOfRange)

	_, err = svc.EditConfig(context.Background(), "nope", func(e *mapping.Editor) error { return nil })
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestService_DeleteSource(t *testing.T) {
	svc := NewService(newMemSourceStore(vodSource()), &memCategoryStore{}, &stubFetcher{})

	require.NoError(t, svc.DeleteSource("vod1"))
	assert.ErrorIs(t, svc.DeleteSource("vod1"), ErrSourceNotFound)
}

func TestIntField(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		present bool
		wantErr bool
	}{
		{"json number", json.Number("42"), 42, true, false},
		{"float", float64(7), 7, true, false},
		{"fractional float", 7.5, 0, true, true},
		{"numeric string", " 12 ", 12, true, false},
		{"empty string", "", 0, false, false},
		{"bad string", "x1", 0, true, true},
		{"nil", nil, 0, false, false},
		{"bool", true, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := intField(map[string]any{"k": tt.value}, "k")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.present, present)
		})
	}
}
