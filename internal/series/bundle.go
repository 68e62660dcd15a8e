package series

import (
	"sort"
	"sync"
	"time"
)

// Config configures a Bundle.
type Config struct {
	// Metrics is the fixed set of tracked metric names, known at startup.
	Metrics []string

	// Retention is the raw-point retention horizon.
	// Defaults to DefaultRetention.
	Retention time.Duration

	// Now overrides the clock used by Summary and RetainRecent.
	// Defaults to time.Now. Tests use this for synthetic clocks.
	Now func() time.Time
}

// Bundle owns one Series per tracked metric behind a single reader/writer
// lock. Ingest and RetainRecent take the lock exclusively; Summary takes it
// shared, so readers always observe a state in which either every metric
// reflects a given ingest cycle or none does.
type Bundle struct {
	mu        sync.RWMutex
	series    map[string]*Series
	names     []string
	retention time.Duration
	now       func() time.Time
}

// NewBundle creates a Bundle with one empty Series per configured metric.
func NewBundle(cfg Config) *Bundle {
	b := &Bundle{
		series:    make(map[string]*Series, len(cfg.Metrics)),
		names:     append([]string(nil), cfg.Metrics...),
		retention: cfg.Retention,
		now:       cfg.Now,
	}
	if b.retention <= 0 {
		b.retention = DefaultRetention
	}
	if b.now == nil {
		b.now = time.Now
	}
	sort.Strings(b.names)
	for _, name := range b.names {
		b.series[name] = New()
	}
	return b
}

// Metrics returns the tracked metric names in sorted order.
func (b *Bundle) Metrics() []string {
	return append([]string(nil), b.names...)
}

// Retention returns the raw-point retention horizon.
func (b *Bundle) Retention() time.Duration {
	return b.retention
}

// Ingest records one sample per named metric, all at the same instant, under
// a single write acquisition. Names outside the tracked set are ignored;
// tracked metrics missing from values simply skip this cycle.
func (b *Bundle) Ingest(t time.Time, values map[string]Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, v := range values {
		if s, ok := b.series[name]; ok {
			s.Append(t, v)
		}
	}
}

// Summary summarizes every metric under one read acquisition. The reference
// instant is computed once so all metrics share it.
func (b *Bundle) Summary() map[string]Summary {
	now := b.now()
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Summary, len(b.series))
	for name, s := range b.series {
		out[name] = s.Summarize(now)
	}
	return out
}

// RetainRecent prunes raw points older than the retention horizon on every
// metric under one write acquisition. Rollup stores are never pruned.
func (b *Bundle) RetainRecent() {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.series {
		s.RetainRecent(now, b.retention)
	}
}
