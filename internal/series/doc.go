// Package series implements the in-memory rollup and retention engine.
//
// Each tracked metric owns a Series: the raw points observed for that metric
// plus three derived rollup stores (hourly, daily, weekly) holding aggregate
// Statistics keyed by bucket start. A Bundle groups the fixed set of metric
// series behind a single reader/writer lock so that one ingest cycle updates
// all metrics atomically with respect to readers.
//
// The engine provides:
//   - Latest-bucket aggregation on every append (older buckets stay frozen)
//   - Point-in-time summaries: current hour/day/week plus a trailing 24h window
//   - Age-based eviction of raw points (rollup entries are kept forever)
//
// All state lives in memory and resets at process start.
package series
