package series

import (
	"sort"
	"strconv"
	"time"
)

// DefaultRetention is how long raw points are kept before RetainRecent
// evicts them.
const DefaultRetention = 14 * 24 * time.Hour

// Series holds the raw points and derived rollups for one metric.
//
// Series is not safe for concurrent use; Bundle provides the locking.
type Series struct {
	raw    map[time.Time]Point
	hourly map[time.Time]Statistics
	daily  map[time.Time]Statistics
	weekly map[time.Time]Statistics
}

// New creates an empty Series.
func New() *Series {
	return &Series{
		raw:    make(map[time.Time]Point),
		hourly: make(map[time.Time]Statistics),
		daily:  make(map[time.Time]Statistics),
		weekly: make(map[time.Time]Statistics),
	}
}

// Append inserts or overwrites the point at t (latest wins per instant) and
// recomputes the rollup entry for the most recent bucket at each granularity.
//
// Only the bucket containing the newest raw instant is recomputed. Once the
// stream has moved past a bucket its rollup entry stays frozen at whatever it
// held on the last append made while it was current, so a backfilled point
// older than the current bucket lands in the raw series only.
func (s *Series) Append(t time.Time, v Point) {
	s.raw[t.UTC()] = v
	s.aggregate(TruncateHour, s.hourly)
	s.aggregate(TruncateDay, s.daily)
	s.aggregate(TruncateWeek, s.weekly)
}

// aggregate recomputes the single most recent bucket in store from the raw
// points whose truncation equals it.
func (s *Series) aggregate(truncate func(time.Time) time.Time, store map[time.Time]Statistics) {
	if len(s.raw) == 0 {
		return
	}
	var current time.Time
	first := true
	for t := range s.raw {
		if b := truncate(t); first || b.After(current) {
			current = b
			first = false
		}
	}
	var values []Point
	for t, v := range s.raw {
		if truncate(t).Equal(current) {
			values = append(values, v)
		}
	}
	store[current] = FromPoints(values)
}

// Summary is the point-in-time view of one metric. Hour, Day and Week are
// the current-bucket rollups as of the reference instant, nil when no sample
// has ever fallen in that bucket.
type Summary struct {
	Hour    *Statistics `json:"hour"`
	Day     *Statistics `json:"day"`
	Week    *Statistics `json:"week"`
	Last24h Trailing    `json:"last_24h"`
}

// HourlyAverage is one hourly bucket in the trailing window.
type HourlyAverage struct {
	Bucket  time.Time
	Average Point
}

// Trailing is the ascending-by-time list of hourly bucket averages within
// the last day. It marshals as a JSON object keyed by RFC3339 bucket start,
// in that order.
type Trailing []HourlyAverage

// MarshalJSON implements json.Marshaler.
func (tr Trailing) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(tr)*32)
	buf = append(buf, '{')
	for i, h := range tr {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = h.Bucket.UTC().AppendFormat(buf, time.RFC3339)
		buf = append(buf, '"', ':')
		buf = strconv.AppendInt(buf, h.Average, 10)
	}
	return append(buf, '}'), nil
}

// Summarize reads the current-bucket statistics and the trailing 24h of
// hourly averages as of now. It never mutates the series; rollup entries are
// looked up, not recomputed.
func (s *Series) Summarize(now time.Time) Summary {
	sum := Summary{
		Hour: lookup(s.hourly, TruncateHour(now)),
		Day:  lookup(s.daily, TruncateDay(now)),
		Week: lookup(s.weekly, TruncateWeek(now)),
	}
	cutoff := now.Add(-24 * time.Hour)
	for t, st := range s.hourly {
		if !t.Before(cutoff) {
			sum.Last24h = append(sum.Last24h, HourlyAverage{Bucket: t, Average: st.Average})
		}
	}
	sort.Slice(sum.Last24h, func(i, j int) bool {
		return sum.Last24h[i].Bucket.Before(sum.Last24h[j].Bucket)
	})
	return sum
}

func lookup(store map[time.Time]Statistics, bucket time.Time) *Statistics {
	if st, ok := store[bucket]; ok {
		return &st
	}
	return nil
}

// RetainRecent drops raw points strictly older than the horizon. Rollup
// entries are kept forever regardless of age; only raw storage is bounded.
// Idempotent.
func (s *Series) RetainRecent(now time.Time, horizon time.Duration) {
	threshold := now.Add(-horizon)
	for t := range s.raw {
		if t.Before(threshold) {
			delete(s.raw, t)
		}
	}
}
