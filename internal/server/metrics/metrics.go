// Package metrics exposes the server's Prometheus collectors. Collectors are
// registered on the default registry at init and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts successful credential logins.
	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcraft_logins_total",
		Help: "Successful logins.",
	})

	// Registrations counts newly created accounts.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcraft_registrations_total",
		Help: "Newly registered users.",
	})

	// TokenRotations counts successful refresh-token rotations.
	TokenRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcraft_token_rotations_total",
		Help: "Successful refresh token rotations.",
	})

	// ReuseDetected counts refresh-token replays that triggered the
	// cascade revocation of a user's sessions.
	ReuseDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcraft_token_reuse_detected_total",
		Help: "Refresh token replays treated as theft.",
	})

	// OrdersPlaced counts successfully created orders.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcraft_orders_placed_total",
		Help: "Successfully placed orders.",
	})

	// RequestDuration observes HTTP request latency by method, route and
	// status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopcraft_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
