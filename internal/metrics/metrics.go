// Package metrics exposes the agent's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtxerr/gridwatch/internal/state"
)

// Power channel label values.
const (
	ChannelPV      = "pv"
	ChannelStorage = "storage"
	ChannelGrid    = "grid"
	ChannelLoad    = "load"
)

// Set holds the Prometheus registry and instruments for the agent.
type Set struct {
	registry *prometheus.Registry

	power         *prometheus.GaugeVec
	batterySOC    prometheus.Gauge
	energyToday   *prometheus.GaugeVec
	polls         *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewSet creates and registers all instruments on a fresh registry.
func NewSet() *Set {
	s := &Set{
		registry: prometheus.NewRegistry(),

		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridwatch_power_milliwatts",
			Help: "Instantaneous power per channel, in milliwatts.",
		}, []string{"channel"}),

		batterySOC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridwatch_battery_soc_percent",
			Help: "Battery state of charge.",
		}),

		energyToday: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridwatch_energy_today_milliwatt_hours",
			Help: "Energy produced or consumed since midnight, in mWh.",
		}, []string{"direction"}),

		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_polls_total",
			Help: "Poll cycles against the gateway, by result.",
		}, []string{"result"}),

		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridwatch_fetch_duration_seconds",
			Help:    "Duration of one poll cycle against the gateway.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.power,
		s.batterySOC,
		s.energyToday,
		s.polls,
		s.fetchDuration,
	)
	return s
}

// Handler returns the HTTP handler serving the Prometheus text exposition.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveState updates the gauges from a live snapshot.
func (s *Set) ObserveState(st state.SystemState) {
	s.power.WithLabelValues(ChannelPV).Set(float64(st.PVMilliwatts))
	s.power.WithLabelValues(ChannelStorage).Set(float64(st.StorageMilliwatts))
	s.power.WithLabelValues(ChannelGrid).Set(float64(st.GridMilliwatts))
	s.power.WithLabelValues(ChannelLoad).Set(float64(st.LoadMilliwatts))
	s.batterySOC.Set(float64(st.BatterySOC))
	s.energyToday.WithLabelValues("production").Set(float64(st.ProductionTodayMilliwattHours))
	s.energyToday.WithLabelValues("consumption").Set(float64(st.ConsumptionTodayMilliwattHours))
}

// RecordPoll records one poll cycle's result and duration.
func (s *Set) RecordPoll(d time.Duration, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	s.polls.WithLabelValues(result).Inc()
	s.fetchDuration.Observe(d.Seconds())
}
