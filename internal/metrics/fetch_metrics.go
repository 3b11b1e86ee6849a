package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// FetchMetrics aggregates per-store fetch outcomes and catalog cache usage.
// It is safe for concurrent use.
type FetchMetrics struct {
	mu         sync.RWMutex
	stores     map[string]*storeMetrics
	maxSamples int
	startTime  time.Time

	CacheHits   atomic.Uint64
	CacheMisses atomic.Uint64
}

type storeMetrics struct {
	latency  *Histogram
	requests atomic.Uint64
	failures atomic.Uint64
	retries  atomic.Uint64
}

// NewFetchMetrics creates an empty collector. maxSamples bounds each
// store's latency window.
func NewFetchMetrics(maxSamples int) *FetchMetrics {
	return &FetchMetrics{
		stores:     make(map[string]*storeMetrics),
		maxSamples: maxSamples,
		startTime:  time.Now(),
	}
}

func (m *FetchMetrics) store(name string) *storeMetrics {
	m.mu.RLock()
	sm, ok := m.stores[name]
	m.mu.RUnlock()
	if ok {
		return sm
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sm, ok = m.stores[name]; !ok {
		sm = &storeMetrics{latency: NewHistogram(m.maxSamples)}
		m.stores[name] = sm
	}
	return sm
}

// RecordFetch records one store lookup, retries included.
func (m *FetchMetrics) RecordFetch(store string, elapsed time.Duration, attempts int, err error) {
	sm := m.store(store)
	sm.requests.Add(1)
	sm.latency.Record(elapsed)
	if attempts > 1 {
		sm.retries.Add(uint64(attempts - 1))
	}
	if err != nil {
		sm.failures.Add(1)
	}
}

// RecordCacheLookup counts a catalog cache hit or miss.
func (m *FetchMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.CacheHits.Add(1)
		return
	}
	m.CacheMisses.Add(1)
}

// StoreStats is the snapshot of one store.
type StoreStats struct {
	Store       string       `json:"store"`
	Requests    uint64       `json:"requests"`
	Failures    uint64       `json:"failures"`
	Retries     uint64       `json:"retries"`
	SuccessRate float64      `json:"success_rate"` // percentage
	Latency     LatencyStats `json:"latency"`
}

// Stats is a point-in-time view of the collector.
type Stats struct {
	Stores       []StoreStats `json:"stores"`
	CacheHits    uint64       `json:"cache_hits"`
	CacheMisses  uint64       `json:"cache_misses"`
	CacheHitRate float64      `json:"cache_hit_rate"` // percentage
	Uptime       string       `json:"uptime"`
}

// GetStats returns a snapshot with stores sorted by name.
func (m *FetchMetrics) GetStats() *Stats {
	m.mu.RLock()
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	startTime := m.startTime
	m.mu.RUnlock()
	sort.Strings(names)

	stats := &Stats{
		Stores:      make([]StoreStats, 0, len(names)),
		CacheHits:   m.CacheHits.Load(),
		CacheMisses: m.CacheMisses.Load(),
		Uptime:      time.Since(startTime).Round(time.Second).String(),
	}
	if total := stats.CacheHits + stats.CacheMisses; total > 0 {
		stats.CacheHitRate = float64(stats.CacheHits) / float64(total) * 100
	}

	for _, name := range names {
		sm := m.store(name)
		s := StoreStats{
			Store:    name,
			Requests: sm.requests.Load(),
			Failures: sm.failures.Load(),
			Retries:  sm.retries.Load(),
			Latency:  sm.latency.Stats(),
		}
		if s.Requests > 0 {
			s.SuccessRate = float64(s.Requests-s.Failures) / float64(s.Requests) * 100
		}
		stats.Stores = append(stats.Stores, s)
	}
	return stats
}

// Reset clears every counter and restarts the uptime clock.
func (m *FetchMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores = make(map[string]*storeMetrics)
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)
	m.startTime = time.Now()
}
