// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package metrics exposes Prometheus collectors for the blog pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	llmRequestsTotal           *prometheus.CounterVec
	botUpdatesTotal            *prometheus.CounterVec
	scriptRunsTotal            *prometheus.CounterVec
	scriptDurationSeconds      *prometheus.HistogramVec
	queueLength                prometheus.Gauge
	recentAPICalls             prometheus.Gauge
	unresolvedConflicts        prometheus.Gauge

	once sync.Once
)

// Init registers the collectors with the default registry. It is safe to
// call more than once.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoblog_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoblog_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.05, 0.25, 1, 5},
			},
			[]string{"method", "route"},
		)

		llmRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoblog_llm_requests_total",
				Help: "Total number of text generation calls, labeled by provider and status.",
			},
			[]string{"provider", "status"},
		)

		botUpdatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoblog_bot_updates_total",
				Help: "Total number of Telegram updates handled, labeled by kind.",
			},
			[]string{"kind"},
		)

		scriptRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoblog_script_runs_total",
				Help: "Total number of pipeline commands run by the bot, labeled by command and status.",
			},
			[]string{"script", "status"},
		)

		scriptDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoblog_script_duration_seconds",
				Help:    "Histogram of pipeline command run times.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"script"},
		)

		queueLength = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoblog_queue_length",
				Help: "Number of queued generation tasks.",
			},
		)

		recentAPICalls = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoblog_recent_api_calls",
				Help: "Language model calls made in the last minute.",
			},
		)

		unresolvedConflicts = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoblog_unresolved_conflicts",
				Help: "Unresolved conflicts in the shared state.",
			},
		)
	})
}

// Handler returns an http.Handler exposing the metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Middleware records request counts and latencies by route pattern.
func Middleware(next http.Handler) http.Handler {
	Init()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, route, code, time.Since(start))
	})
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveLLM counts a generation call.
func ObserveLLM(provider string, err error) {
	Init()
	llmRequestsTotal.WithLabelValues(provider, status(err)).Inc()
}

// ObserveUpdate counts a handled Telegram update.
func ObserveUpdate(kind string) {
	Init()
	botUpdatesTotal.WithLabelValues(kind).Inc()
}

// ObserveScript records a pipeline command run.
func ObserveScript(script, status string, duration time.Duration) {
	Init()
	scriptRunsTotal.WithLabelValues(script, status).Inc()
	scriptDurationSeconds.WithLabelValues(script).Observe(duration.Seconds())
}

// SetQueueLength sets the queued task gauge.
func SetQueueLength(n int) {
	Init()
	queueLength.Set(float64(n))
}

// SetRecentAPICalls sets the recent call gauge.
func SetRecentAPICalls(n int) {
	Init()
	recentAPICalls.Set(float64(n))
}

// SetUnresolvedConflicts sets the unresolved conflict gauge.
func SetUnresolvedConflicts(n int) {
	Init()
	unresolvedConflicts.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
