// Package engineobs wraps an Analyzer with tracing, logging, and
// Prometheus metrics. The wrapped engine stays free of observability
// concerns; this middleware is the only place spans are opened.
package engineobs

import (
	"context"
	"time"

	"signal-engine/internal/interfaces"
	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/trace"
	"signal-engine/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.Analyzer
	metrics  *metrics.Metrics
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

// Wrap decorates an Analyzer. metrics may be nil (e.g. in tests).
func Wrap(a interfaces.Analyzer, m *metrics.Metrics) interfaces.Analyzer {
	return &observableAnalyzer{analyzer: a, metrics: m}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, symbol string) (*types.Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Analyze")
	defer span.End()

	start := time.Now()
	analysis, err := oa.analyzer.Analyze(ctx, symbol)
	dur := time.Since(start)

	if oa.metrics != nil {
		oa.metrics.AnalysisDur.Observe(dur.Seconds())
	}

	if err != nil {
		if oa.metrics != nil {
			oa.metrics.AnalysisErrors.WithLabelValues(errKind(err)).Inc()
		}
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"symbol", symbol,
			"duration_ms", dur.Milliseconds(),
		)
		return nil, err
	}

	if oa.metrics != nil {
		oa.metrics.AnalysesTotal.Inc()
		for _, s := range analysis.Bundle.Signals {
			oa.metrics.SignalsEmitted.WithLabelValues(string(s.Direction)).Inc()
		}
	}
	logger.InfoSkip(ctx, 1, "Analysis completed",
		"symbol", symbol,
		"trend", string(analysis.Bundle.Trend),
		"signals", len(analysis.Bundle.Signals),
		"price", analysis.Price,
		"duration_ms", dur.Milliseconds(),
	)
	return analysis, nil
}

func (oa *observableAnalyzer) AnalyzeBatch(ctx context.Context, symbols []string) types.BatchResult {
	ctx, span := trace.StartSpan(ctx, "engine.AnalyzeBatch")
	defer span.End()

	start := time.Now()
	result := oa.analyzer.AnalyzeBatch(ctx, symbols)
	dur := time.Since(start)

	failed := 0
	for _, r := range result {
		if r.Err != nil {
			failed++
		}
	}

	if oa.metrics != nil {
		oa.metrics.BatchDur.Observe(dur.Seconds())
		oa.metrics.BatchSymbols.Set(float64(len(result)))
	}
	logger.InfoSkip(ctx, 1, "Batch completed",
		"symbols", len(result),
		"failed", failed,
		"duration_ms", dur.Milliseconds(),
	)
	return result
}

func errKind(err error) string {
	switch {
	case types.IsInsufficientData(err):
		return "insufficient_data"
	case types.IsInvalidInput(err):
		return "invalid_input"
	default:
		return "other"
	}
}
