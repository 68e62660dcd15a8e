package series

import "time"

// Bucket truncation. All buckets are computed in UTC. Each function is
// idempotent and order-preserving (t1 <= t2 implies truncate(t1) <=
// truncate(t2)), which the latest-bucket aggregation in Append relies on.

// TruncateHour returns the start of the hour containing t.
func TruncateHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// TruncateDay returns midnight UTC of the day containing t.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateWeek returns midnight UTC of the Monday starting the week
// containing t.
func TruncateWeek(t time.Time) time.Time {
	u := t.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	back := (int(u.Weekday()) + 6) % 7
	return TruncateDay(u.AddDate(0, 0, -back))
}
