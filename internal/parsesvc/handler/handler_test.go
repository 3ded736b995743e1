package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/medjobs/jobquery/internal/analytics"
	"github.com/medjobs/jobquery/internal/query/formatter"
	"github.com/medjobs/jobquery/internal/query/parser"
	"github.com/medjobs/jobquery/pkg/metrics"
	"github.com/medjobs/jobquery/pkg/middleware"
)

type fakeCache struct {
	mu            sync.Mutex
	entries       map[string]parser.ParsedQuery
	invalidateErr error
	hits, misses  int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]parser.ParsedQuery)}
}

func (c *fakeCache) GetOrCompute(_ context.Context, query string, compute func(string) parser.ParsedQuery) (parser.ParsedQuery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[query]; ok {
		c.hits++
		return p, true
	}
	c.misses++
	p := compute(query)
	c.entries[query] = p
	return p, false
}

func (c *fakeCache) Invalidate(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidateErr != nil {
		return 0, c.invalidateErr
	}
	n := int64(len(c.entries))
	c.entries = make(map[string]parser.ParsedQuery)
	return n, nil
}

func (c *fakeCache) Stats() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

type fakeTracker struct {
	mu       sync.Mutex
	parses   []analytics.ParseEvent
	suggests []analytics.SuggestEvent
}

func (f *fakeTracker) TrackParse(e analytics.ParseEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parses = append(f.parses, e)
}

func (f *fakeTracker) TrackSuggest(e analytics.SuggestEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggests = append(f.suggests, e)
}

var testConfig = Config{MaxQueryBytes: 256, DefaultSuggestLimit: 5, MaxSuggestLimit: 10}

func newTestServer(t *testing.T, opts ...Option) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	h := New(testConfig, append([]Option{WithMetrics(m)}, opts...)...)
	mux := http.NewServeMux()
	h.Register(mux)
	return middleware.RequestID(mux), m
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestParseGet(t *testing.T) {
	srv, m := newTestServer(t)
	q := "MBBS doctor in Mumbai"
	rec := do(t, srv, http.MethodGet, "/api/v1/parse?q="+url.QueryEscape(q), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	want := formatter.ParseQueryToJSON(q) + "\n"
	if rec.Body.String() != want {
		t.Errorf("body =\n%s\nwant\n%s", rec.Body.String(), want)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := testutil.ToFloat64(m.ParseRequestsTotal.WithLabelValues("matched")); got != 1 {
		t.Errorf("parse_requests_total{result=matched} = %v, want 1", got)
	}
}

func TestParseGetMissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/v1/parse", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseGetEmptyQuery(t *testing.T) {
	srv, m := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/v1/parse?q=", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var p parser.ParsedQuery
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.MatchedFields() != 0 || len(p.Synonyms) != 0 {
		t.Errorf("empty query parsed to %+v", p)
	}
	if got := testutil.ToFloat64(m.ParseRequestsTotal.WithLabelValues("empty")); got != 1 {
		t.Errorf("parse_requests_total{result=empty} = %v, want 1", got)
	}
}

func TestParsePost(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/v1/parse", `{"query":"fresher nurse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var p parser.ParsedQuery
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Experience != "0 years" {
		t.Errorf("experience = %q, want 0 years", p.Experience)
	}
}

func TestParsePostInvalidBodies(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"query":`, http.StatusBadRequest},
		{"unknown field", `{"query":"nurse","extra":1}`, http.StatusBadRequest},
		{"missing query", `{}`, http.StatusBadRequest},
		{"trailing data", `{"query":"nurse"}{"query":"doctor"}`, http.StatusBadRequest},
		{"oversized query", `{"query":"` + strings.Repeat("a", 300) + `"}`, http.StatusRequestEntityTooLarge},
		{"oversized body", `{"query":"` + strings.Repeat("a", 2000) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/v1/parse", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
				t.Errorf("expected JSON error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestParseUsesCacheAndTracker(t *testing.T) {
	cache := newFakeCache()
	tracker := &fakeTracker{}
	srv, m := newTestServer(t, WithCache(cache), WithTracker(tracker))

	target := "/api/v1/parse?q=" + url.QueryEscape("nurse in Pune")
	do(t, srv, http.MethodGet, target, "")
	rec := do(t, srv, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d/%d, want 1/1", hits, misses)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache_hits_total = %v, want 1", got)
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if len(tracker.parses) != 2 {
		t.Fatalf("tracked %d parse events, want 2", len(tracker.parses))
	}
	ev := tracker.parses[1]
	if !ev.CacheHit || ev.Location != "Pune" || ev.Query != "nurse in Pune" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.RequestID == "" {
		t.Error("event missing request ID")
	}
}

func TestParseEmptyQueryBypassesCache(t *testing.T) {
	cache := newFakeCache()
	srv, _ := newTestServer(t, WithCache(cache))
	do(t, srv, http.MethodGet, "/api/v1/parse?q=%20", "")
	if hits, misses := cache.Stats(); hits+misses != 0 {
		t.Errorf("cache consulted for a blank query: %d/%d", hits, misses)
	}
}

func TestSuggest(t *testing.T) {
	tracker := &fakeTracker{}
	srv, _ := newTestServer(t, WithTracker(tracker))

	rec := do(t, srv, http.MethodGet, "/api/v1/suggest?q=%20%20card&limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp suggestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Query != "card" {
		t.Errorf("query = %q, want card", resp.Query)
	}
	if len(resp.Suggestions) != 3 {
		t.Errorf("got %d suggestions, want 3", len(resp.Suggestions))
	}
	if len(tracker.suggests) != 1 || tracker.suggests[0].Returned != 3 {
		t.Errorf("tracked suggests = %+v", tracker.suggests)
	}
}

func TestSuggestLimits(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/suggest?q=a&limit=1000", "")
	var resp suggestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Suggestions) != testConfig.MaxSuggestLimit {
		t.Errorf("got %d suggestions, want cap %d", len(resp.Suggestions), testConfig.MaxSuggestLimit)
	}

	for _, bad := range []string{"0", "-1", "abc"} {
		rec := do(t, srv, http.MethodGet, "/api/v1/suggest?q=a&limit="+bad, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", bad, rec.Code)
		}
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/suggest", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Suggestions == nil || len(resp.Suggestions) != 0 {
		t.Errorf("empty prefix returned %v, want []", resp.Suggestions)
	}
}

func TestCacheEndpointsDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/cache/stats", "")
	if !strings.Contains(rec.Body.String(), "disabled") {
		t.Errorf("stats body = %s, want disabled", rec.Body.String())
	}
	rec = do(t, srv, http.MethodPost, "/api/v1/cache/invalidate", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate status = %d, want 503", rec.Code)
	}
}

func TestCacheEndpoints(t *testing.T) {
	cache := newFakeCache()
	srv, _ := newTestServer(t, WithCache(cache))
	do(t, srv, http.MethodGet, "/api/v1/parse?q=nurse", "")
	do(t, srv, http.MethodGet, "/api/v1/parse?q=nurse", "")

	rec := do(t, srv, http.MethodGet, "/api/v1/cache/stats", "")
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["hit_rate"] != "50.0%" {
		t.Errorf("hit_rate = %v, want 50.0%%", stats["hit_rate"])
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/cache/invalidate", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"keys_deleted":1`) {
		t.Errorf("invalidate = %d %s", rec.Code, rec.Body.String())
	}

	cache.invalidateErr = errors.New("dial tcp: connection refused")
	rec = do(t, srv, http.MethodPost, "/api/v1/cache/invalidate", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "dial tcp") {
		t.Errorf("driver error leaked to client: %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodDelete, "/api/v1/parse", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
