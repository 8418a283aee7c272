// Package stats aggregates search usage statistics in memory: query counts,
// cache effectiveness, latency percentiles, and zero-result queries.
package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxLatencySamples = 10000

// QueryCount pairs a query string with the number of times it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time view of the aggregated statistics.
type Snapshot struct {
	TotalSearches     int64        `json:"total_searches"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

// Recorder accumulates search statistics. All methods are safe for
// concurrent use.
type Recorder struct {
	mu                sync.Mutex
	totalSearches     atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	zeroResults       atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
	}
}

// RecordSearch tracks one executed search.
func (r *Recorder) RecordSearch(query string, results int, cacheHit bool, latency time.Duration) {
	r.totalSearches.Add(1)
	if cacheHit {
		r.cacheHits.Add(1)
	} else {
		r.cacheMisses.Add(1)
	}
	if results == 0 {
		r.zeroResults.Add(1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.queryCounts[query]++
	if results == 0 {
		r.zeroResultQueries[query]++
	}
	if len(r.latencies) >= maxLatencySamples {
		r.latencies = r.latencies[len(r.latencies)-maxLatencySamples/2:]
	}
	r.latencies = append(r.latencies, latency.Milliseconds())
}

// Snapshot returns the aggregated view with at most topN entries in each
// query ranking.
func (r *Recorder) Snapshot(topN int) Snapshot {
	r.mu.Lock()
	latencies := make([]int64, len(r.latencies))
	copy(latencies, r.latencies)
	topQueries := topCounts(r.queryCounts, topN)
	zeroQueries := topCounts(r.zeroResultQueries, topN)
	r.mu.Unlock()

	snap := Snapshot{
		TotalSearches:     r.totalSearches.Load(),
		CacheHits:         r.cacheHits.Load(),
		CacheMisses:       r.cacheMisses.Load(),
		ZeroResultCount:   r.zeroResults.Load(),
		TopQueries:        topQueries,
		ZeroResultQueries: zeroQueries,
	}
	if minutes := time.Since(r.startTime).Minutes(); minutes > 0 {
		snap.QueriesPerMinute = float64(snap.TotalSearches) / minutes
	}
	if len(latencies) > 0 {
		var sum int64
		for _, l := range latencies {
			sum += l
		}
		snap.AvgLatencyMs = float64(sum) / float64(len(latencies))
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		snap.P50LatencyMs = percentile(latencies, 0.50)
		snap.P95LatencyMs = percentile(latencies, 0.95)
		snap.P99LatencyMs = percentile(latencies, 0.99)
	}
	return snap
}

// percentile returns the p-th percentile of a sorted sample.
func percentile(sorted []int64, p float64) int64 {
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func topCounts(counts map[string]int64, n int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
