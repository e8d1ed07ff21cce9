// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
)

/*
TestMetrics_Record verifies the helpers update the expected collectors.
*/
func TestMetrics_Record(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest("comics", 200, 120*time.Millisecond)
	m.ObserveRequest("comics", 200, 80*time.Millisecond)
	m.ObserveRequest("comics", 401, 10*time.Millisecond)
	m.IncItem("stored")
	m.IncItem("known")
	m.IncItem("known")
	m.IncSkipped()
	m.ObserveSweep("completed", time.Minute)
	m.SetCursor(7, 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("comics", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("comics", "401")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsTotal.WithLabelValues("known")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTriggers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepsTotal.WithLabelValues("completed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.CursorPosition))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.CursorTotal))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

/*
TestMetrics_NilSafe verifies a nil collector set is a no-op.
*/
func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("comics", 200, time.Second)
		m.IncRefresh(true)
		m.ObserveSweep("failed", time.Second)
		m.IncSkipped()
		m.IncPage()
		m.IncItem("stored")
		m.SetCursor(1, 1)
	})
}
