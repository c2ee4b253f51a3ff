package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"signal-engine/internal/auditlog"
	"signal-engine/internal/engine"
	"signal-engine/internal/engine/engineobs"
	"signal-engine/internal/interfaces"
	"signal-engine/internal/levels"
	"signal-engine/internal/logger"
	"signal-engine/internal/marketdata"
	"signal-engine/internal/metrics"
	"signal-engine/internal/risk"
	"signal-engine/internal/signal"
	"signal-engine/internal/store"
	"signal-engine/internal/ta"
	"signal-engine/internal/trace"
	"signal-engine/internal/types"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldAudit compresses old audit files if retention is configured
func compressOldAudit(ctx context.Context) {
	if v := os.Getenv("ENGINE_AUDIT_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := auditlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old audit files", "error", err)
		}
	}
}

// initializeMetrics registers the engine metrics and serves /metrics
func initializeMetrics(ctx context.Context, cfg *store.Config) *metrics.Metrics {
	m := metrics.New(prometheus.DefaultRegisterer)
	go metrics.Serve(ctx, cfg.MetricsAddr)
	return m
}

// initializeEngine builds the analysis pipeline with observability
func initializeEngine(cfg *store.Config, m *metrics.Metrics) interfaces.Analyzer {
	source := marketdata.NewSim(time.Now())

	eng := engine.New(
		engine.Config{
			CandleCount:   cfg.CandleCount,
			MaxConcurrent: cfg.Batch.MaxConcurrent,
		},
		source,
		ta.NewCalculator(cfg.Indicators),
		levels.NewDetector(cfg.Levels),
		signal.NewGenerator(),
	)

	return engineobs.Wrap(eng, m)
}

func initializeValidator(cfg *store.Config) *risk.Validator {
	return risk.NewValidator(cfg.Risk)
}

func riskProfile(cfg *store.Config) types.RiskProfile {
	return types.RiskProfile{
		MaxDailyRiskPercent: cfg.Profile.MaxDailyRiskPercent,
		PortfolioValue:      cfg.Profile.PortfolioValue,
		DefaultPositionSize: cfg.Profile.DefaultPositionSize,
		AllowShorting:       cfg.Profile.AllowShorting,
	}
}

// proposalFrom derives a long proposal from a bullish analysis, sizing
// the stop and targets off ATR. Returns false when the analysis is not
// actionable (no ATR yet, or no bullish lean).
func proposalFrom(an *types.Analysis, profile types.RiskProfile) (types.TradeProposal, bool) {
	if an.Indicators.ATR == nil || an.Bundle.Trend != types.Bullish {
		return types.TradeProposal{}, false
	}
	buys := 0
	for _, s := range an.Bundle.Signals {
		if s.Direction == types.Buy {
			buys++
		}
	}
	if buys == 0 {
		return types.TradeProposal{}, false
	}

	atr := *an.Indicators.ATR
	if atr <= 0 || an.Price-1.5*atr <= 0 {
		return types.TradeProposal{}, false
	}

	return types.TradeProposal{
		Symbol:      an.Symbol,
		Entry:       an.Price,
		StopLoss:    round2(an.Price - 1.5*atr),
		Targets:     []float64{round2(an.Price + 2.25*atr), round2(an.Price + 4.5*atr)},
		RiskPercent: profile.MaxDailyRiskPercent,
		Confidence:  math.Min(50+float64(buys)*15, 95),
	}, true
}

// validateProposals runs each proposal through the validator, audits
// the verdicts, and logs the portfolio aggregate.
func validateProposals(ctx context.Context, validator *risk.Validator, m *metrics.Metrics, profile types.RiskProfile, proposals []types.TradeProposal) {
	if len(proposals) == 0 {
		return
	}

	var accepted []types.TradeProposal
	for _, p := range proposals {
		sizing, result, err := validator.Validate(p, profile)
		outcome := "valid"
		switch {
		case err != nil:
			outcome = "error"
			logger.ErrorWithErr(ctx, "Proposal rejected as malformed", err, "symbol", p.Symbol)
		case !result.IsValid:
			outcome = "invalid"
			logger.Risk(ctx, p.Symbol, "proposal_rejected", "warnings", result.Warnings)
		default:
			accepted = append(accepted, p)
			logger.Risk(ctx, p.Symbol, "proposal_accepted",
				"entry", p.Entry,
				"stop", p.StopLoss,
				"position_size", sizing.PositionSize,
				"risk_reward", sizing.RiskRewardRatio,
				"warnings", result.Warnings,
			)
		}
		if m != nil {
			m.ValidationsTotal.WithLabelValues(outcome).Inc()
		}
		if err == nil {
			_ = auditlog.AppendValidation(auditlog.ValidationEntry{
				Symbol:      p.Symbol,
				Entry:       p.Entry,
				Stop:        p.StopLoss,
				RiskPercent: p.RiskPercent,
				IsValid:     result.IsValid,
				Warnings:    result.Warnings,
			})
		}
	}

	if len(accepted) > 0 {
		report := validator.AggregateRisk(accepted, profile)
		logger.Info(ctx, "Portfolio risk aggregate",
			"positions", report.PositionCount,
			"total_risk_percent", report.TotalRiskPercent,
			"total_exposure", report.TotalExposure,
			"avg_confidence", report.AvgConfidence,
			"warnings", report.Warnings,
		)
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
