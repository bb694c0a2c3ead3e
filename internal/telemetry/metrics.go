package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DevicesProcessed counts devices that completed the full pipeline
	DevicesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesync",
			Name:      "devices_processed_total",
			Help:      "Total number of devices that completed a reconciliation run",
		},
		[]string{"result"},
	)

	// CaptureFailures counts failed capture attempts per phase
	CaptureFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesync",
			Name:      "capture_failures_total",
			Help:      "Total number of failed configuration captures",
		},
		[]string{"device", "phase"},
	)

	// InterfacesClassified counts classified interfaces by resulting state
	InterfacesClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesync",
			Name:      "interfaces_classified_total",
			Help:      "Total number of interface classifications by state",
		},
		[]string{"state"},
	)

	// ConfigPushes counts command sequences applied to devices
	ConfigPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesync",
			Name:      "config_pushes_total",
			Help:      "Total number of configuration pushes",
		},
		[]string{"device"},
	)

	// SuccessRate exposes the last reconciliation success rate per device
	SuccessRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "profilesync",
			Name:      "reconciliation_success_rate",
			Help:      "Success rate of the last reconciliation run per device (percent)",
		},
		[]string{"device"},
	)

	// Regressions counts detected compliance regressions
	Regressions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesync",
			Name:      "regressions_total",
			Help:      "Total number of interfaces that lost compliance during a run",
		},
		[]string{"device"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(DevicesProcessed)
		prometheus.DefaultRegisterer.Register(CaptureFailures)
		prometheus.DefaultRegisterer.Register(InterfacesClassified)
		prometheus.DefaultRegisterer.Register(ConfigPushes)
		prometheus.DefaultRegisterer.Register(SuccessRate)
		prometheus.DefaultRegisterer.Register(Regressions)
	})
}
