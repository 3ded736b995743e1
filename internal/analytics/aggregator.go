// Package analytics tracks how job-search queries are parsed: the service
// side publishes ParseEvent and SuggestEvent records through a Collector,
// and the analytics service folds them into AggregatedStats for dashboards.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/medjobs/jobquery/pkg/kafka"
)

// latencyWindow bounds the number of latency samples kept for percentiles.
const latencyWindow = 10000

type AggregatedStats struct {
	TotalParses       int64   `json:"total_parses"`
	TotalSuggests     int64   `json:"total_suggests"`
	CacheHits         int64   `json:"cache_hits"`
	CacheMisses       int64   `json:"cache_misses"`
	UnmatchedCount    int64   `json:"unmatched_count"`
	AvgLatencyUs      float64 `json:"avg_latency_us"`
	P50LatencyUs      int64   `json:"p50_latency_us"`
	P95LatencyUs      int64   `json:"p95_latency_us"`
	P99LatencyUs      int64   `json:"p99_latency_us"`
	TopQueries        []Count `json:"top_queries"`
	UnmatchedQueries  []Count `json:"unmatched_queries"`
	TopTitles         []Count `json:"top_titles"`
	TopQualifications []Count `json:"top_qualifications"`
	TopDepartments    []Count `json:"top_departments"`
	TopLocations      []Count `json:"top_locations"`
	TopJobTypes       []Count `json:"top_job_types"`
	ExperienceBands   []Count `json:"experience_bands"`
	ParsesPerMinute   float64 `json:"parses_per_minute"`
}

type Count struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Aggregator folds analytics events into in-memory counters.
type Aggregator struct {
	mu             sync.RWMutex
	topN           int
	totalParses    int64
	totalSuggests  int64
	cacheHits      int64
	cacheMisses    int64
	unmatched      int64
	latencies      []int64
	latencyNext    int
	queries        map[string]int64
	unmatchedQuery map[string]int64
	titles         map[string]int64
	qualifications map[string]int64
	departments    map[string]int64
	locations      map[string]int64
	jobTypes       map[string]int64
	experience     map[string]int64
	startTime      time.Time
	logger         *slog.Logger
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		topN:           topN,
		latencies:      make([]int64, 0, 1024),
		queries:        make(map[string]int64),
		unmatchedQuery: make(map[string]int64),
		titles:         make(map[string]int64),
		qualifications: make(map[string]int64),
		departments:    make(map[string]int64),
		locations:      make(map[string]int64),
		jobTypes:       make(map[string]int64),
		experience:     make(map[string]int64),
		startTime:      time.Now(),
		logger:         slog.Default().With("component", "analytics-aggregator"),
	}
}

// Handle is a kafka.MessageHandler. Undecodable or unknown messages are
// logged and acknowledged so they do not block the partition.
func (a *Aggregator) Handle(ctx context.Context, msg kafka.Message) error {
	switch EventType(msg.Type) {
	case EventParse:
		event, err := kafka.DecodeJSON[ParseEvent](msg.Value)
		if err != nil {
			a.logger.Error("dropping malformed parse event", "error", err)
			return nil
		}
		a.RecordParse(event)
	case EventSuggest:
		event, err := kafka.DecodeJSON[SuggestEvent](msg.Value)
		if err != nil {
			a.logger.Error("dropping malformed suggest event", "error", err)
			return nil
		}
		a.RecordSuggest(event)
	default:
		a.logger.Warn("ignoring unknown analytics event", "type", msg.Type)
	}
	return nil
}

func (a *Aggregator) RecordParse(event ParseEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalParses++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.recordLatency(event.LatencyUs)

	a.queries[event.Query]++
	if event.MatchedFields == 0 {
		a.unmatched++
		a.unmatchedQuery[event.Query]++
	}
	countAll(a.titles, event.Titles)
	countAll(a.qualifications, event.Qualifications)
	countAll(a.departments, event.Departments)
	countAll(a.locations, []string{event.Location})
	countAll(a.jobTypes, []string{event.JobType})
	countAll(a.experience, []string{event.Experience})
}

func (a *Aggregator) RecordSuggest(event SuggestEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSuggests++
}

// recordLatency keeps the most recent latencyWindow samples.
func (a *Aggregator) recordLatency(us int64) {
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, us)
		return
	}
	a.latencies[a.latencyNext] = us
	a.latencyNext = (a.latencyNext + 1) % latencyWindow
}

func countAll(counts map[string]int64, values []string) {
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalParses:       a.totalParses,
		TotalSuggests:     a.totalSuggests,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		UnmatchedCount:    a.unmatched,
		TopQueries:        topN(a.queries, a.topN),
		UnmatchedQueries:  topN(a.unmatchedQuery, a.topN),
		TopTitles:         topN(a.titles, a.topN),
		TopQualifications: topN(a.qualifications, a.topN),
		TopDepartments:    topN(a.departments, a.topN),
		TopLocations:      topN(a.locations, a.topN),
		TopJobTypes:       topN(a.jobTypes, a.topN),
		ExperienceBands:   topN(a.experience, a.topN),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.ParsesPerMinute = float64(stats.TotalParses) / elapsed
	}
	return stats
}

// Restore seeds the counters from a persisted snapshot so totals survive a
// restart. Latency samples are not restored.
func (a *Aggregator) Restore(snapshot AggregatedStats) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.totalParses != 0 || a.totalSuggests != 0 {
		return fmt.Errorf("restoring analytics: aggregator already has %d parses", a.totalParses)
	}
	a.totalParses = snapshot.TotalParses
	a.totalSuggests = snapshot.TotalSuggests
	a.cacheHits = snapshot.CacheHits
	a.cacheMisses = snapshot.CacheMisses
	a.unmatched = snapshot.UnmatchedCount
	restore := func(dst map[string]int64, src []Count) {
		for _, c := range src {
			dst[c.Value] = c.Count
		}
	}
	restore(a.queries, snapshot.TopQueries)
	restore(a.unmatchedQuery, snapshot.UnmatchedQueries)
	restore(a.titles, snapshot.TopTitles)
	restore(a.qualifications, snapshot.TopQualifications)
	restore(a.departments, snapshot.TopDepartments)
	restore(a.locations, snapshot.TopLocations)
	restore(a.jobTypes, snapshot.TopJobTypes)
	restore(a.experience, snapshot.ExperienceBands)
	return nil
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n highest counts, ties broken alphabetically.
func topN(counts map[string]int64, n int) []Count {
	result := make([]Count, 0, len(counts))
	for value, count := range counts {
		result = append(result, Count{Value: value, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
