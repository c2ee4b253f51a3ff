// Package metrics registers and serves the Prometheus metrics for the
// analysis engine.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	AnalysisErrors   *prometheus.CounterVec // labels: kind
	AnalysisDur      prometheus.Histogram
	BatchDur         prometheus.Histogram
	BatchSymbols     prometheus.Gauge
	SignalsEmitted   *prometheus.CounterVec // labels: direction
	ValidationsTotal *prometheus.CounterVec // labels: outcome
}

// New registers and returns the engine metrics on the given registerer
// (pass prometheus.DefaultRegisterer in the binary).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_analyses_total",
			Help: "Total per-symbol analyses completed",
		}),
		AnalysisErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_analysis_errors_total",
			Help: "Total per-symbol analysis failures by error kind",
		}, []string{"kind"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_analysis_duration_seconds",
			Help:    "Duration of one symbol's full analysis pipeline",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		BatchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_batch_duration_seconds",
			Help:    "Duration of a whole batch run",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		BatchSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_batch_symbols",
			Help: "Symbol count of the most recent batch",
		}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_signals_emitted_total",
			Help: "Signals emitted by direction",
		}, []string{"direction"}),
		ValidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_validations_total",
			Help: "Trade validations by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisErrors,
		m.AnalysisDur,
		m.BatchDur,
		m.BatchSymbols,
		m.SignalsEmitted,
		m.ValidationsTotal,
	)
	return m
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("metrics server failed", "addr", addr, "error", err)
	}
}
