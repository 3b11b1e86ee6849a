package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Stats(t *testing.T) {
	h := NewHistogram(100)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * 10 * time.Millisecond)
	}

	stats := h.Stats()
	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, 30.0, stats.Mean, 0.001)
	assert.InDelta(t, 30.0, stats.P50, 0.001)
	assert.InDelta(t, 48.0, stats.P95, 0.001)
	assert.InDelta(t, 10.0, stats.Min, 0.001)
	assert.InDelta(t, 50.0, stats.Max, 0.001)
}

func TestHistogram_Empty(t *testing.T) {
	assert.Equal(t, LatencyStats{}, NewHistogram(0).Stats())
}

func TestHistogram_TrimsOldest(t *testing.T) {
	h := NewHistogram(10)
	for i := 0; i < 11; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	// 11 samples overflow a window of 10, so the oldest 2 are dropped.
	assert.Equal(t, 9, h.Count())
	assert.InDelta(t, 2.0, h.Stats().Min, 0.001)

	h.Reset()
	assert.Equal(t, 0, h.Count())
}

func TestFetchMetrics_RecordFetch(t *testing.T) {
	m := NewFetchMetrics(100)
	m.RecordFetch("wizardstower", 20*time.Millisecond, 1, nil)
	m.RecordFetch("facetoface", 10*time.Millisecond, 3, errors.New("timeout"))
	m.RecordFetch("facetoface", 30*time.Millisecond, 1, nil)

	stats := m.GetStats()
	require.Len(t, stats.Stores, 2)

	ftf := stats.Stores[0]
	assert.Equal(t, "facetoface", ftf.Store)
	assert.Equal(t, uint64(2), ftf.Requests)
	assert.Equal(t, uint64(1), ftf.Failures)
	assert.Equal(t, uint64(2), ftf.Retries)
	assert.InDelta(t, 50.0, ftf.SuccessRate, 0.001)
	assert.Equal(t, 2, ftf.Latency.Count)

	assert.Equal(t, "wizardstower", stats.Stores[1].Store)
	assert.InDelta(t, 100.0, stats.Stores[1].SuccessRate, 0.001)
}

func TestFetchMetrics_CacheHitRate(t *testing.T) {
	m := NewFetchMetrics(0)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)

	stats := m.GetStats()
	assert.Equal(t, uint64(3), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
	assert.InDelta(t, 75.0, stats.CacheHitRate, 0.001)
}

func TestFetchMetrics_Reset(t *testing.T) {
	m := NewFetchMetrics(0)
	m.RecordFetch("401games", time.Millisecond, 1, nil)
	m.RecordCacheLookup(false)

	m.Reset()

	stats := m.GetStats()
	assert.Empty(t, stats.Stores)
	assert.Zero(t, stats.CacheMisses)
}

func TestFetchMetrics_Concurrent(t *testing.T) {
	m := NewFetchMetrics(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordFetch("facetoface", time.Millisecond, 1, nil)
			m.RecordCacheLookup(true)
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	require.Len(t, stats.Stores, 1)
	assert.Equal(t, uint64(50), stats.Stores[0].Requests)
	assert.Equal(t, uint64(50), stats.CacheHits)
}
