// Package metrics provides simple built-in counters for the placeholder
// engine with no external dependencies.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks resolution activity across a Processor's lifetime.
type Collector struct {
	snapshot       *Snapshot
	customCounters map[string]*int64
	mu             sync.RWMutex
	startTime      time.Time
}

// Snapshot is a point-in-time copy of the engine counters.
type Snapshot struct {
	// Placeholder resolution
	PlaceholdersResolved   int64 `json:"placeholders_resolved"`
	PlaceholdersUnresolved int64 `json:"placeholders_unresolved"`

	// JSON root activity
	RootFetches   int64 `json:"root_fetches"`
	FetchFailures int64 `json:"fetch_failures"`

	// Invocation throughput
	ContentsProcessed int64 `json:"contents_processed"`

	// Uptime
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		snapshot:       &Snapshot{StartTime: time.Now()},
		customCounters: make(map[string]*int64),
		startTime:      time.Now(),
	}
}

// IncrementResolved records a successfully substituted placeholder.
func (c *Collector) IncrementResolved() {
	atomic.AddInt64(&c.snapshot.PlaceholdersResolved, 1)
}

// IncrementUnresolved records a placeholder left in place.
func (c *Collector) IncrementUnresolved() {
	atomic.AddInt64(&c.snapshot.PlaceholdersUnresolved, 1)
}

// IncrementRootFetch records one JSON root fetch attempt and its outcome.
func (c *Collector) IncrementRootFetch(ok bool) {
	atomic.AddInt64(&c.snapshot.RootFetches, 1)
	if !ok {
		atomic.AddInt64(&c.snapshot.FetchFailures, 1)
	}
}

// AddContentsProcessed records completed content strings.
func (c *Collector) AddContentsProcessed(n int64) {
	atomic.AddInt64(&c.snapshot.ContentsProcessed, n)
}

// IncrementCustomCounter increments a custom named counter.
func (c *Collector) IncrementCustomCounter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.customCounters[name]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var newCounter int64 = 1
		c.customCounters[name] = &newCounter
	}
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		PlaceholdersResolved:   atomic.LoadInt64(&c.snapshot.PlaceholdersResolved),
		PlaceholdersUnresolved: atomic.LoadInt64(&c.snapshot.PlaceholdersUnresolved),
		RootFetches:            atomic.LoadInt64(&c.snapshot.RootFetches),
		FetchFailures:          atomic.LoadInt64(&c.snapshot.FetchFailures),
		ContentsProcessed:      atomic.LoadInt64(&c.snapshot.ContentsProcessed),
		StartTime:              c.snapshot.StartTime,
		Uptime:                 time.Since(c.startTime),
	}
}

// CustomCounters returns all custom counters.
func (c *Collector) CustomCounters() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64)
	for name, counter := range c.customCounters {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// Reset resets all counters to zero.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	atomic.StoreInt64(&c.snapshot.PlaceholdersResolved, 0)
	atomic.StoreInt64(&c.snapshot.PlaceholdersUnresolved, 0)
	atomic.StoreInt64(&c.snapshot.RootFetches, 0)
	atomic.StoreInt64(&c.snapshot.FetchFailures, 0)
	atomic.StoreInt64(&c.snapshot.ContentsProcessed, 0)

	c.customCounters = make(map[string]*int64)

	c.startTime = time.Now()
	c.snapshot.StartTime = time.Now()
}

// FetchFailureRate returns the percentage of root fetches that failed.
func (c *Collector) FetchFailureRate() float64 {
	fetches := atomic.LoadInt64(&c.snapshot.RootFetches)
	failures := atomic.LoadInt64(&c.snapshot.FetchFailures)

	if fetches == 0 {
		return 0.0
	}
	return float64(failures) / float64(fetches) * 100.0
}

// ResolutionRate returns the percentage of placeholders that resolved.
func (c *Collector) ResolutionRate() float64 {
	resolved := atomic.LoadInt64(&c.snapshot.PlaceholdersResolved)
	unresolved := atomic.LoadInt64(&c.snapshot.PlaceholdersUnresolved)

	total := resolved + unresolved
	if total == 0 {
		return 100.0 // no placeholders means nothing failed to resolve
	}
	return float64(resolved) / float64(total) * 100.0
}
