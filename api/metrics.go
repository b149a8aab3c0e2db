package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricReloads counts reload cycles by result
	metricReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tailplane_reloads_total",
		Help: "Total configuration reloads by result",
	}, []string{"result"})

	// metricPatterns tracks the content patterns in the current configuration
	metricPatterns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailplane_config_patterns",
		Help: "Content patterns in the current configuration",
	})

	// metricColors tracks the color tokens in the current configuration
	metricColors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailplane_config_colors",
		Help: "Color tokens in the current configuration",
	})

	// metricWSClients tracks connected websocket clients
	metricWSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailplane_ws_clients",
		Help: "Current websocket clients",
	})

	// metricSnapshotErrors counts snapshots that could not be written
	metricSnapshotErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tailplane_snapshot_errors_total",
		Help: "Total snapshot write failures",
	})
)
