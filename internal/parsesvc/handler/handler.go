// Package handler exposes the job-query parser and dropdown suggestions
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medjobs/jobquery/internal/analytics"
	"github.com/medjobs/jobquery/internal/query/dictionary"
	"github.com/medjobs/jobquery/internal/query/formatter"
	"github.com/medjobs/jobquery/internal/query/parser"
	"github.com/medjobs/jobquery/internal/query/tokenizer"
	apperrors "github.com/medjobs/jobquery/pkg/errors"
	"github.com/medjobs/jobquery/pkg/logger"
	"github.com/medjobs/jobquery/pkg/metrics"
)

// Cache is implemented by cache.ParseCache.
type Cache interface {
	GetOrCompute(ctx context.Context, query string, compute func(string) parser.ParsedQuery) (parser.ParsedQuery, bool)
	Invalidate(ctx context.Context) (int64, error)
	Stats() (hits, misses int64)
}

// Tracker is implemented by analytics.Collector.
type Tracker interface {
	TrackParse(event analytics.ParseEvent)
	TrackSuggest(event analytics.SuggestEvent)
}

type Config struct {
	MaxQueryBytes       int
	DefaultSuggestLimit int
	MaxSuggestLimit     int
}

type Option func(*Handler)

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(h *Handler) { h.cache = c }
}

// WithTracker enables analytics events.
func WithTracker(t Tracker) Option {
	return func(h *Handler) { h.tracker = t }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

type Handler struct {
	cfg     Config
	cache   Cache
	tracker Tracker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(cfg Config, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg,
		logger: slog.Default().With("component", "parse-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/parse", h.ParseGet)
	mux.HandleFunc("POST /api/v1/parse", h.ParsePost)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type parseRequest struct {
	Query *string `json:"query"`
}

type suggestResponse struct {
	Query       string                  `json:"query"`
	Suggestions []dictionary.Suggestion `json:"suggestions"`
}

// ParseGet serves GET /api/v1/parse?q=…. An empty q is valid and yields an
// empty result.
func (h *Handler) ParseGet(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if !values.Has("q") {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	h.serveParse(w, r, values.Get("q"))
}

// ParsePost serves POST /api/v1/parse with a {"query": "…"} body.
func (h *Handler) ParsePost(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, int64(h.cfg.MaxQueryBytes)+1024)
	var req parseRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, apperrors.Newf(apperrors.ErrQueryTooLarge, http.StatusRequestEntityTooLarge,
				"request body exceeds %d bytes", maxErr.Limit))
			return
		}
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body: %v", err))
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "request body must contain a single JSON object"))
		return
	}
	if req.Query == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "field 'query' is required"))
		return
	}
	h.serveParse(w, r, *req.Query)
}

func (h *Handler) serveParse(w http.ResponseWriter, r *http.Request, query string) {
	if len(query) > h.cfg.MaxQueryBytes {
		h.writeError(w, apperrors.Newf(apperrors.ErrQueryTooLarge, http.StatusRequestEntityTooLarge,
			"query exceeds %d bytes", h.cfg.MaxQueryBytes))
		return
	}
	ctx := r.Context()
	log := logger.FromContext(ctx)
	start := time.Now()

	parsed, cacheStatus := h.parse(ctx, query)
	latency := time.Since(start)

	data, err := formatter.Marshal(parsed)
	if err != nil {
		log.Error("formatting parse result failed", "error", err)
		h.writeError(w, fmt.Errorf("formatting parse result: %w", err))
		return
	}

	matched := parsed.MatchedFields()
	h.observeParse(query, matched, cacheStatus, latency)
	log.Debug("query parsed",
		"matched_fields", matched,
		"cache", cacheStatus,
		"latency_us", latency.Microseconds(),
	)
	if h.tracker != nil {
		event := analytics.NewParseEvent(query, parsed)
		event.CacheHit = cacheStatus == cacheHit
		event.LatencyUs = latency.Microseconds()
		event.RequestID = logger.RequestID(ctx)
		h.tracker.TrackParse(event)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

func (h *Handler) parse(ctx context.Context, query string) (parser.ParsedQuery, string) {
	if h.cache == nil || strings.TrimSpace(query) == "" {
		return parser.ParseJobQuery(query), cacheBypass
	}
	parsed, hit := h.cache.GetOrCompute(ctx, query, parser.ParseJobQuery)
	if hit {
		return parsed, cacheHit
	}
	return parsed, cacheMiss
}

func (h *Handler) observeParse(query string, matched int, cacheStatus string, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	result := "matched"
	switch {
	case strings.TrimSpace(query) == "":
		result = "empty"
	case matched == 0:
		result = "unmatched"
	}
	h.metrics.ParseRequestsTotal.WithLabelValues(result).Inc()
	h.metrics.ParseLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.ParsedFieldsCount.Observe(float64(matched))
	switch cacheStatus {
	case cacheHit:
		h.metrics.CacheHitsTotal.Inc()
	case cacheMiss:
		h.metrics.CacheMissesTotal.Inc()
	}
}

// Suggest serves GET /api/v1/suggest?q=…&limit=….
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := tokenizer.Normalize(r.URL.Query().Get("q"))
	limit := h.cfg.DefaultSuggestLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, h.cfg.MaxSuggestLimit)
	}

	suggestions := dictionary.Suggest(q, limit)
	if h.metrics != nil {
		h.metrics.SuggestRequestsTotal.Inc()
	}
	if h.tracker != nil && q != "" {
		h.tracker.TrackSuggest(analytics.SuggestEvent{
			Type:      analytics.EventSuggest,
			Prefix:    q,
			Returned:  len(suggestions),
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(r.Context()),
		})
	}
	h.writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: suggestions})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrCacheUnavailable, err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": apperrors.Message(err)})
}
