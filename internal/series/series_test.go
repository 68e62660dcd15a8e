package series

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromPoints(t *testing.T) {
	st := FromPoints([]Point{5, 10, 15})

	if st.Average != 10 {
		t.Errorf("expected average=10, got %d", st.Average)
	}
	if st.Count != 3 {
		t.Errorf("expected count=3, got %d", st.Count)
	}
	if st.Min == nil || *st.Min != 5 {
		t.Errorf("expected min=5, got %v", st.Min)
	}
	if st.Max == nil || *st.Max != 15 {
		t.Errorf("expected max=15, got %v", st.Max)
	}
}

func TestFromPoints_SingleValue(t *testing.T) {
	st := FromPoints([]Point{7})

	if st.Average != 7 || st.Count != 1 {
		t.Errorf("expected average=7 count=1, got average=%d count=%d", st.Average, st.Count)
	}
	if st.Min == nil || *st.Min != 7 || st.Max == nil || *st.Max != 7 {
		t.Errorf("expected min=max=7, got min=%v max=%v", st.Min, st.Max)
	}
}

func TestFromPoints_NegativeValues(t *testing.T) {
	// Grid and storage channels go negative when exporting / charging.
	st := FromPoints([]Point{-500, 300})

	if st.Average != -100 {
		t.Errorf("expected average=-100, got %d", st.Average)
	}
	if *st.Min != -500 || *st.Max != 300 {
		t.Errorf("expected min=-500 max=300, got min=%d max=%d", *st.Min, *st.Max)
	}
}

func TestSeries_AppendAggregatesHourBucket(t *testing.T) {
	s := New()
	day := time.Date(2026, time.August, 19, 0, 0, 0, 0, time.UTC)

	s.Append(day.Add(10*time.Hour+5*time.Minute), 100)
	s.Append(day.Add(10*time.Hour+40*time.Minute), 200)
	s.Append(day.Add(10*time.Hour+58*time.Minute), 300)

	st, ok := s.hourly[day.Add(10*time.Hour)]
	if !ok {
		t.Fatal("expected hourly bucket at 10:00")
	}
	if st.Count != 3 || st.Average != 200 {
		t.Errorf("expected count=3 average=200, got count=%d average=%d", st.Count, st.Average)
	}
	if *st.Min != 100 || *st.Max != 300 {
		t.Errorf("expected min=100 max=300, got min=%d max=%d", *st.Min, *st.Max)
	}
}

func TestSeries_CrossingBoundaryFreezesOldBucket(t *testing.T) {
	s := New()
	day := time.Date(2026, time.August, 19, 0, 0, 0, 0, time.UTC)

	s.Append(day.Add(10*time.Hour+5*time.Minute), 100)
	s.Append(day.Add(10*time.Hour+40*time.Minute), 200)
	s.Append(day.Add(10*time.Hour+58*time.Minute), 300)
	s.Append(day.Add(11*time.Hour+2*time.Minute), 400)

	old, ok := s.hourly[day.Add(10*time.Hour)]
	if !ok {
		t.Fatal("expected frozen bucket at 10:00")
	}
	if old.Count != 3 || old.Average != 200 {
		t.Errorf("old bucket changed: count=%d average=%d", old.Count, old.Average)
	}

	cur, ok := s.hourly[day.Add(11*time.Hour)]
	if !ok {
		t.Fatal("expected new bucket at 11:00")
	}
	if cur.Count != 1 || cur.Average != 400 {
		t.Errorf("expected count=1 average=400, got count=%d average=%d", cur.Count, cur.Average)
	}
}

func TestSeries_AppendSameInstantOverwrites(t *testing.T) {
	s := New()
	at := time.Date(2026, time.August, 19, 10, 5, 0, 0, time.UTC)

	s.Append(at, 100)
	s.Append(at, 250)

	if len(s.raw) != 1 {
		t.Fatalf("expected 1 raw point, got %d", len(s.raw))
	}
	st := s.hourly[TruncateHour(at)]
	if st.Count != 1 || st.Average != 250 {
		t.Errorf("expected count=1 average=250, got count=%d average=%d", st.Count, st.Average)
	}
}

func TestSeries_BackfillDoesNotThawFrozenBucket(t *testing.T) {
	s := New()
	day := time.Date(2026, time.August, 19, 0, 0, 0, 0, time.UTC)

	s.Append(day.Add(10*time.Hour+30*time.Minute), 100)
	s.Append(day.Add(11*time.Hour+10*time.Minute), 400)

	// Out-of-order sample into the 10:00 bucket: raw only, the frozen
	// rollup entry must not change.
	s.Append(day.Add(10*time.Hour+45*time.Minute), 999)

	old := s.hourly[day.Add(10*time.Hour)]
	if old.Count != 1 || old.Average != 100 {
		t.Errorf("frozen bucket recomputed: count=%d average=%d", old.Count, old.Average)
	}
	if len(s.raw) != 3 {
		t.Errorf("expected 3 raw points, got %d", len(s.raw))
	}
}

func TestSeries_Summarize(t *testing.T) {
	s := New()
	now := time.Date(2026, time.August, 19, 10, 59, 0, 0, time.UTC)

	s.Append(now.Add(-54*time.Minute), 100)
	s.Append(now.Add(-19*time.Minute), 200)
	s.Append(now.Add(-time.Minute), 300)

	sum := s.Summarize(now)

	if sum.Hour == nil || sum.Hour.Count != 3 || sum.Hour.Average != 200 {
		t.Errorf("unexpected hour stats: %+v", sum.Hour)
	}
	if sum.Day == nil || sum.Day.Count != 3 {
		t.Errorf("unexpected day stats: %+v", sum.Day)
	}
	if sum.Week == nil || sum.Week.Count != 3 {
		t.Errorf("unexpected week stats: %+v", sum.Week)
	}
	if len(sum.Last24h) != 1 {
		t.Fatalf("expected 1 trailing bucket, got %d", len(sum.Last24h))
	}
	if sum.Last24h[0].Average != 200 {
		t.Errorf("expected trailing average=200, got %d", sum.Last24h[0].Average)
	}
}

func TestSeries_SummarizeEmpty(t *testing.T) {
	s := New()
	sum := s.Summarize(time.Date(2026, time.August, 19, 10, 0, 0, 0, time.UTC))

	if sum.Hour != nil || sum.Day != nil || sum.Week != nil {
		t.Errorf("expected nil stats on empty series, got %+v", sum)
	}
	if len(sum.Last24h) != 0 {
		t.Errorf("expected empty trailing window, got %d entries", len(sum.Last24h))
	}
}

func TestSeries_Last24hWindowAndOrder(t *testing.T) {
	s := New()
	now := time.Date(2026, time.August, 19, 12, 0, 0, 0, time.UTC)

	// One sample every 6 hours over 2 days, appended in time order so each
	// hourly bucket is aggregated while it is current.
	for i := 8; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * 6 * time.Hour)
		s.Append(at, Point(1000+i))
	}

	sum := s.Summarize(now)

	cutoff := now.Add(-24 * time.Hour)
	for _, h := range sum.Last24h {
		if h.Bucket.Before(cutoff) {
			t.Errorf("bucket %v older than cutoff %v", h.Bucket, cutoff)
		}
	}
	if len(sum.Last24h) != 5 {
		t.Errorf("expected 5 buckets in window, got %d", len(sum.Last24h))
	}
	for i := 1; i < len(sum.Last24h); i++ {
		if !sum.Last24h[i-1].Bucket.Before(sum.Last24h[i].Bucket) {
			t.Errorf("trailing window not ascending at %d", i)
		}
	}
}

func TestSeries_RetainRecent(t *testing.T) {
	s := New()
	now := time.Date(2026, time.August, 19, 12, 0, 0, 0, time.UTC)

	old := now.Add(-15 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)
	s.Append(old, 100)
	s.Append(fresh, 200)

	rollups := len(s.hourly) + len(s.daily) + len(s.weekly)

	s.RetainRecent(now, DefaultRetention)

	if _, ok := s.raw[old]; ok {
		t.Error("expected old raw point to be evicted")
	}
	if _, ok := s.raw[fresh]; !ok {
		t.Error("expected fresh raw point to survive")
	}
	if got := len(s.hourly) + len(s.daily) + len(s.weekly); got != rollups {
		t.Errorf("rollup entries changed: %d != %d", got, rollups)
	}

	// Idempotent.
	s.RetainRecent(now, DefaultRetention)
	if len(s.raw) != 1 {
		t.Errorf("expected 1 raw point after second run, got %d", len(s.raw))
	}
}

func TestTrailing_MarshalJSON(t *testing.T) {
	tr := Trailing{
		{Bucket: time.Date(2026, time.August, 19, 10, 0, 0, 0, time.UTC), Average: 150},
		{Bucket: time.Date(2026, time.August, 19, 11, 0, 0, 0, time.UTC), Average: -20},
	}

	got, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"2026-08-19T10:00:00Z":150,"2026-08-19T11:00:00Z":-20}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}

	empty, err := json.Marshal(Trailing(nil))
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if string(empty) != "{}" {
		t.Errorf("empty trailing = %s, want {}", empty)
	}
}
