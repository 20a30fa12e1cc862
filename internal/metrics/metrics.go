// Package metrics provides Prometheus metrics for the dpinput daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationTotal counts input validations by outcome (valid/invalid/error).
	ValidationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpinput_validation_total",
		Help: "Total number of input document validations, by outcome.",
	}, []string{"outcome"})

	// MigrationTotal counts input migrations by source version.
	MigrationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpinput_migration_total",
		Help: "Total number of input document migrations, by source version.",
	}, []string{"from_version"})

	// RegisteredInputs tracks the number of inputs in the registry.
	RegisteredInputs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dpinput_registered_inputs",
		Help: "Current number of registered input documents.",
	})

	// HTTPRequestsTotal counts API requests by route and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpinput_http_requests_total",
		Help: "Total number of HTTP requests, by route and status class.",
	}, []string{"route", "status"})

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dpinput_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// ConfigReloadTotal counts daemon config reload attempts by result.
	ConfigReloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpinput_config_reload_total",
		Help: "Total number of daemon configuration reload attempts, by result.",
	}, []string{"result"})
)
