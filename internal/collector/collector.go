// Package collector runs the poll cycles against the gateway and feeds the
// results into the live state tracker and the rollup engine.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xtxerr/gridwatch/internal/envoy"
	"github.com/xtxerr/gridwatch/internal/logging"
	"github.com/xtxerr/gridwatch/internal/metrics"
	"github.com/xtxerr/gridwatch/internal/series"
	"github.com/xtxerr/gridwatch/internal/state"
)

// Tracked metric names. These are the keys of the series bundle and of the
// summary JSON.
const (
	MetricPV      = "pv"
	MetricStorage = "storage"
	MetricGrid    = "grid"
	MetricLoad    = "load"
)

// MetricNames returns the fixed set of tracked metrics.
func MetricNames() []string {
	return []string{MetricPV, MetricStorage, MetricGrid, MetricLoad}
}

// Config configures a Collector.
type Config struct {
	Client  *envoy.Client
	Bundle  *series.Bundle
	Tracker *state.Tracker

	// Metrics is optional; when nil no Prometheus instruments are updated.
	Metrics *metrics.Set
}

// Collector fetches from the gateway and updates the shared state. One
// status cycle produces one ingest into the bundle; a failed fetch skips the
// cycle and the engine tolerates the gap.
type Collector struct {
	client  *envoy.Client
	bundle  *series.Bundle
	tracker *state.Tracker
	metrics *metrics.Set
	stats   *Stats
	log     *slog.Logger
}

// New creates a Collector.
func New(cfg Config) *Collector {
	return &Collector{
		client:  cfg.Client,
		bundle:  cfg.Bundle,
		tracker: cfg.Tracker,
		metrics: cfg.Metrics,
		stats:   NewStats(),
		log:     logging.Component("collector"),
	}
}

// Stats returns the collector statistics.
func (c *Collector) Stats() *Stats {
	return c.stats
}

// PollStatus runs one status cycle: fetch live meters and energy totals,
// update the tracker, and ingest the four power channels into the bundle at
// the device-reported instant.
func (c *Collector) PollStatus(ctx context.Context) error {
	start := time.Now()

	status, err := c.client.FetchStatus(ctx)
	if err != nil {
		c.recordFetch(time.Since(start), false)
		return fmt.Errorf("fetch status: %w", err)
	}
	energy, err := c.client.FetchEnergy(ctx)
	if err != nil {
		c.recordFetch(time.Since(start), false)
		return fmt.Errorf("fetch energy: %w", err)
	}
	c.recordFetch(time.Since(start), true)

	m := status.Meters
	at := m.LastUpdateTime()

	next := state.SystemState{
		LastUpdate:                     at,
		BatterySOC:                     m.SOC,
		PVMilliwatts:                   m.PV.AggregateMilliwatts,
		StorageMilliwatts:              m.Storage.AggregateMilliwatts,
		GridMilliwatts:                 m.Grid.AggregateMilliwatts,
		LoadMilliwatts:                 m.Load.AggregateMilliwatts,
		ProductionTodayMilliwattHours:  energy.Production.EIM.WattHoursToday * 1000,
		ConsumptionTodayMilliwattHours: energy.Consumption.EIM.WattHoursToday * 1000,
	}
	c.tracker.SetState(next)

	c.bundle.Ingest(at, map[string]series.Point{
		MetricPV:      m.PV.AggregateMilliwatts,
		MetricStorage: m.Storage.AggregateMilliwatts,
		MetricGrid:    m.Grid.AggregateMilliwatts,
		MetricLoad:    m.Load.AggregateMilliwatts,
	})

	if c.metrics != nil {
		c.metrics.ObserveState(next)
	}

	c.log.Debug("status cycle complete",
		"at", at,
		"pv_mw", m.PV.AggregateMilliwatts,
		"load_mw", m.Load.AggregateMilliwatts,
	)
	return nil
}

// PollInventory refreshes the battery and grid-state inventory.
func (c *Collector) PollInventory(ctx context.Context) error {
	rows, err := c.client.FetchInventory(ctx)
	if err != nil {
		return fmt.Errorf("fetch inventory: %w", err)
	}

	var inv state.Inventory
	for i := range rows {
		batteries, err := rows[i].Encharges()
		if err != nil {
			return err
		}
		inv.NumBatteries += len(batteries)
		for _, b := range batteries {
			inv.BatteryCapacity += b.Capacity
		}

		collars, err := rows[i].Collars()
		if err != nil {
			return err
		}
		if inv.GridState == "" && len(collars) > 0 {
			inv.GridState = string(collars[0].GridState)
		}
	}

	c.tracker.SetInventory(inv)
	c.log.Debug("inventory refreshed",
		"batteries", inv.NumBatteries,
		"capacity", inv.BatteryCapacity,
		"grid_state", inv.GridState,
	)
	return nil
}

func (c *Collector) recordFetch(d time.Duration, success bool) {
	c.stats.RecordFetch(d, success)
	if c.metrics != nil {
		c.metrics.RecordPoll(d, success)
	}
}
