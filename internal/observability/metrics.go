// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability holds the structured logger and the Prometheus
// instruments of the profile server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "sirseer_profile"

	StatusOK    = "ok"
	StatusError = "error"
)

// durationBuckets covers 10ms to 30s GitHub round trips.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics is a set of instruments registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamInflight *prometheus.GaugeVec
	cacheLookups     *prometheus.CounterVec
	sessions         prometheus.Gauge
	screenEvents     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewMetrics creates and registers all instruments. Each call uses its own
// registry so tests can create as many as they need.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "GitHub GraphQL requests by operation and status.",
		}, []string{"op", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "GitHub GraphQL request duration in seconds.",
			Buckets:   durationBuckets,
		}, []string{"op"}),
		upstreamInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_inflight_requests",
			Help:      "GitHub GraphQL requests currently in flight.",
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by operation and result.",
		}, []string{"op", "result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Open live screen connections.",
		}),
		screenEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screen_events_total",
			Help:      "Browser events received by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by route.",
			Buckets:   durationBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.upstreamInflight,
		m.cacheLookups,
		m.sessions,
		m.screenEvents,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordRequest records a completed upstream request.
func (m *Metrics) RecordRequest(op string, err error, d time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.upstreamRequests.WithLabelValues(op, status).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (m *Metrics) TrackInflight(op string) func() {
	g := m.upstreamInflight.WithLabelValues(op)
	g.Inc()
	return g.Dec
}

// CacheHit counts a cache hit for op.
func (m *Metrics) CacheHit(op string) { m.cacheLookups.WithLabelValues(op, "hit").Inc() }

// CacheMiss counts a cache miss for op.
func (m *Metrics) CacheMiss(op string) { m.cacheLookups.WithLabelValues(op, "miss").Inc() }

// SessionOpened increments the live session gauge and returns its decrement.
func (m *Metrics) SessionOpened() func() {
	m.sessions.Inc()
	return m.sessions.Dec
}

// ScreenEvent counts one browser event.
func (m *Metrics) ScreenEvent(kind string) { m.screenEvents.WithLabelValues(kind).Inc() }

// HTTPRequest records a served request. route is the matched route
// template, not the raw path, to keep label cardinality bounded.
func (m *Metrics) HTTPRequest(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
