package collector

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Stats tracks poll outcomes and fetch latency for the collector.
//
// Counters use atomic operations for lock-free updates; the latency sketch
// is protected by a mutex.
type Stats struct {
	PollsTotal   atomic.Int64
	PollsSuccess atomic.Int64
	PollsFailed  atomic.Int64

	mu     sync.Mutex
	sketch *ddsketch.DDSketch
}

// NewStats creates a Stats with a DDSketch at 1% relative accuracy.
func NewStats() *Stats {
	s := &Stats{}
	// Constant accuracy within the valid range; construction cannot fail.
	if sketch, err := ddsketch.NewDefaultDDSketch(0.01); err == nil {
		s.sketch = sketch
	}
	return s
}

// RecordFetch records one poll cycle's outcome and duration.
func (s *Stats) RecordFetch(d time.Duration, success bool) {
	s.PollsTotal.Add(1)
	if success {
		s.PollsSuccess.Add(1)
	} else {
		s.PollsFailed.Add(1)
	}

	if s.sketch != nil {
		s.mu.Lock()
		s.sketch.Add(float64(d.Milliseconds()))
		s.mu.Unlock()
	}
}

// Snapshot is a point-in-time copy of the collector statistics. Latency
// percentiles are in milliseconds and zero until the first recorded fetch.
type Snapshot struct {
	PollsTotal   int64   `json:"polls_total"`
	PollsSuccess int64   `json:"polls_success"`
	PollsFailed  int64   `json:"polls_failed"`
	FetchMsP50   float64 `json:"fetch_ms_p50"`
	FetchMsP90   float64 `json:"fetch_ms_p90"`
	FetchMsP99   float64 `json:"fetch_ms_p99"`
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		PollsTotal:   s.PollsTotal.Load(),
		PollsSuccess: s.PollsSuccess.Load(),
		PollsFailed:  s.PollsFailed.Load(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sketch != nil && s.sketch.GetCount() > 0 {
		if p50, err := s.sketch.GetValueAtQuantile(0.50); err == nil {
			snap.FetchMsP50 = p50
		}
		if p90, err := s.sketch.GetValueAtQuantile(0.90); err == nil {
			snap.FetchMsP90 = p90
		}
		if p99, err := s.sketch.GetValueAtQuantile(0.99); err == nil {
			snap.FetchMsP99 = p99
		}
	}
	return snap
}
