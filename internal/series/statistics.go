package series

// Point is a single integer measurement. The Envoy reports power in
// milliwatts, which fits comfortably in an int64; averages use integer
// (truncating) division on purpose.
type Point = int64

// Statistics aggregates the points falling in one bucket.
//
// Min and Max are nil iff Count is zero, which never happens for values
// produced by FromPoints.
type Statistics struct {
	Average Point  `json:"average"`
	Count   int    `json:"count"`
	Min     *Point `json:"min"`
	Max     *Point `json:"max"`
}

// FromPoints computes count, average, min and max in one pass.
//
// values must be non-empty. Callers only invoke this for buckets that are
// known to contain at least the point just inserted, so the empty case is
// unreachable by construction.
func FromPoints(values []Point) Statistics {
	var sum Point
	lo, hi := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Statistics{
		Average: sum / Point(len(values)),
		Count:   len(values),
		Min:     &lo,
		Max:     &hi,
	}
}
