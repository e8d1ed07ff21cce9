// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics bundles the Prometheus collectors exported by the harvester.

All collectors live on a dedicated registry that the operator server exposes at
/metrics. Every method is safe to call on a nil [*Metrics], so tests and
one-shot CLI commands can run without instrumentation.
*/
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "harvester"

// Metrics bundles Prometheus collectors for the harvester.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthRefreshes   *prometheus.CounterVec

	SweepsTotal     *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	SkippedTriggers prometheus.Counter
	PagesProcessed  prometheus.Counter
	ItemsTotal      *prometheus.CounterVec

	CursorPosition prometheus.Gauge
	CursorTotal    prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Remote catalog requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Remote catalog request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		AuthRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refreshes_total",
			Help:      "Credential refreshes by result.",
		}, []string{"result"}),
		SweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Finished sweeps by outcome.",
		}, []string{"outcome"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one sweep.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		SkippedTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_skipped_total",
			Help:      "Triggers dropped because a sweep was already running.",
		}),
		PagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_pages_processed_total",
			Help:      "Catalog pages fully processed.",
		}),
		ItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Catalog items seen by result (stored, known).",
		}, []string{"result"}),
		CursorPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cursor_position",
			Help:      "Catalog page the next sweep iteration will read.",
		}),
		CursorTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cursor_last_total_pages",
			Help:      "Catalog page count observed at the last reconciliation.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal, m.RequestDuration, m.AuthRefreshes,
		m.SweepsTotal, m.SweepDuration, m.SkippedTriggers, m.PagesProcessed, m.ItemsTotal,
		m.CursorPosition, m.CursorTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records one remote catalog call.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncRefresh records a credential refresh attempt.
func (m *Metrics) IncRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.AuthRefreshes.WithLabelValues(result).Inc()
}

// ObserveSweep records a finished sweep.
func (m *Metrics) ObserveSweep(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SweepsTotal.WithLabelValues(outcome).Inc()
	m.SweepDuration.Observe(d.Seconds())
}

// IncSkipped records a dropped trigger.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.SkippedTriggers.Inc()
}

// IncPage records a fully processed catalog page.
func (m *Metrics) IncPage() {
	if m == nil {
		return
	}
	m.PagesProcessed.Inc()
}

// IncItem records one catalog item by result.
func (m *Metrics) IncItem(result string) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(result).Inc()
}

// SetCursor publishes the current cursor.
func (m *Metrics) SetCursor(position, total int) {
	if m == nil {
		return
	}
	m.CursorPosition.Set(float64(position))
	m.CursorTotal.Set(float64(total))
}
