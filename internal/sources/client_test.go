package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrlokans/storyhub/internal/entities"
)

func newTestClient(server *httptest.Server, retries int) *Client {
	return NewClient(time.Second,
		WithHTTPClient(server.Client()),
		WithMaxRetries(retries),
		WithRetryDelay(time.Millisecond),
	)
}

func TestClient_FetchCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/categories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ac") != "list" {
			t.Errorf("expected ac=list, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"class":[{"type_id":1,"type_name":"电影"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server, 1)
	src := &entities.ContentSource{BaseURL: server.URL + "/api/", CategoryPath: "/categories?ac=list"}

	body, err := client.FetchCategories(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}

	envelope, ok := body.(map[string]any)
	if !ok {
		t.Fatalf("expected object envelope, got %T", body)
	}
	class := envelope["class"].([]any)
	first := class[0].(map[string]any)
	if _, ok := first["type_id"].(json.Number); !ok {
		t.Errorf("expected json.Number for type_id, got %T", first["type_id"])
	}
}

func TestClient_FetchList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pg") != "3" {
			t.Errorf("expected pg=3, got %q", q.Get("pg"))
		}
		if q.Get("t") != "101" {
			t.Errorf("expected t=101, got %q", q.Get("t"))
		}
		if q.Get("ac") != "detail" {
			t.Errorf("expected ac=detail to be preserved, got %q", q.Get("ac"))
		}
		_, _ = w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server, 1)
	src := &entities.ContentSource{BaseURL: server.URL, ListPath: "?ac=detail"}

	if _, err := client.FetchList(context.Background(), src, 3, 101); err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
}

func TestClient_FetchList_NoTypeFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("t") {
			t.Errorf("did not expect t parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("pg") != "1" {
			t.Errorf("expected page clamped to 1, got %q", r.URL.Query().Get("pg"))
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server, 1)
	if _, err := client.FetchList(context.Background(), &entities.ContentSource{BaseURL: server.URL}, 0, 0); err != nil {
		t.Fatalf("FetchList failed: %v", err)
	}
}

func TestClient_NoEndpoint(t *testing.T) {
	client := NewClient(0)
	_, err := client.FetchCategories(context.Background(), &entities.ContentSource{})
	if !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestClient_RateLimitRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(server, 3)
	if _, err := client.Fetch(context.Background(), server.URL, nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestClient_ServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	_, err := client.Fetch(context.Background(), server.URL, nil)

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", serverErr.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such page", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server, 3)
	_, err := client.Fetch(context.Background(), server.URL, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Body != "no such page" {
		t.Errorf("unexpected body %q", statusErr.Body)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	client := newTestClient(server, 3)
	if _, err := client.Fetch(context.Background(), server.URL, nil); err == nil {
		t.Error("expected decode error")
	}
}

func TestClient_CancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(time.Second, WithHTTPClient(server.Client()), WithMaxRetries(3), WithRetryDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, server.URL, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_PushConfig(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server, 1)
	err := client.PushConfig(context.Background(), server.URL, &entities.ContentSource{Namespace: "vod1"})
	if err != nil {
		t.Fatalf("PushConfig failed: %v", err)
	}
	if received["namespace"] != "vod1" {
		t.Errorf("expected namespace in payload, got %v", received)
	}
}

func TestClient_PushConfigRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server, 1)
	if err := client.PushConfig(context.Background(), server.URL, map[string]string{}); err == nil {
		t.Error("expected error for 403")
	}
}

func TestCalculateRetryDelay(t *testing.T) {
	client := NewClient(0)
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := client.calculateRetryDelay(tt.attempt); got != tt.expected {
			t.Errorf("calculateRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(ErrRateLimited) {
		t.Error("rate limit should be retryable")
	}
	if !isRetryableError(&ServerError{StatusCode: 500}) {
		t.Error("server error should be retryable")
	}
	if isRetryableError(&StatusError{StatusCode: 404}) {
		t.Error("404 should not be retryable")
	}
	if isRetryableError(errors.New("boom")) {
		t.Error("generic error should not be retryable")
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://a.example/api", "", "https://a.example/api"},
		{"https://a.example/api/", "/list", "https://a.example/api/list"},
		{"https://a.example/api", "list?ac=1", "https://a.example/api/list?ac=1"},
		{"https://a.example/api", "https://b.example/x", "https://b.example/x"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
