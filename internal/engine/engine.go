// Package engine composes the pure analysis components into the
// per-symbol pipeline and fans that pipeline out over a batch of symbols.
package engine

import (
	"context"
	"fmt"

	"signal-engine/internal/interfaces"
	"signal-engine/internal/levels"
	"signal-engine/internal/logger"
	"signal-engine/internal/signal"
	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

// Config holds the engine wiring knobs.
type Config struct {
	CandleCount   int // candles fetched per symbol
	MaxConcurrent int // batch concurrency bound
}

// Engine runs the indicator, level, and signal stages for one symbol at
// a time. It retains no per-series state between calls; every analysis
// is computed fresh from the fetched candles.
type Engine struct {
	cfg    Config
	source interfaces.MarketData
	calc   *ta.Calculator
	det    *levels.Detector
	gen    *signal.Generator
}

// New wires an Engine from its components.
func New(cfg Config, source interfaces.MarketData, calc *ta.Calculator, det *levels.Detector, gen *signal.Generator) *Engine {
	if cfg.CandleCount <= 0 {
		cfg.CandleCount = 250
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Engine{cfg: cfg, source: source, calc: calc, det: det, gen: gen}
}

// Analyze fetches candles for one symbol and runs the full pipeline.
// Returns either a complete analysis or a single typed error, never both.
func (e *Engine) Analyze(ctx context.Context, symbol string) (*types.Analysis, error) {
	series, err := e.source.RecentCandles(ctx, symbol, e.cfg.CandleCount)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	return e.AnalyzeSeries(ctx, series)
}

// AnalyzeSeries runs the pipeline over an already-fetched series.
func (e *Engine) AnalyzeSeries(ctx context.Context, series types.Series) (*types.Analysis, error) {
	inds, err := e.calc.Compute(series)
	if err != nil {
		return nil, err
	}

	levelSet := e.det.Detect(series)
	closes := series.Closes()
	bundle := e.gen.Generate(inds, levelSet, closes)

	last := series.Last()
	for _, s := range bundle.Signals {
		logger.Signal(ctx, last.Symbol, string(s.Direction), string(s.Strength), s.Indicator, s.Rationale, "price", last.Close)
	}

	return &types.Analysis{
		Symbol:     last.Symbol,
		Timestamp:  last.Timestamp,
		Price:      last.Close,
		Indicators: inds,
		Levels:     levelSet,
		Bundle:     bundle,
	}, nil
}
