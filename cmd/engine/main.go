package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-engine/internal/auditlog"
	"signal-engine/internal/interfaces"
	"signal-engine/internal/logger"
	"signal-engine/internal/metrics"
	"signal-engine/internal/risk"
	"signal-engine/internal/store"
	"signal-engine/internal/trace"
	"signal-engine/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldAudit(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	m := initializeMetrics(ctx, cfg)
	eng := initializeEngine(cfg, m)
	validator := initializeValidator(cfg)
	profile := riskProfile(cfg)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Engine started",
		"universe", len(cfg.Universe),
		"candles", cfg.CandleCount,
		"poll_seconds", cfg.PollSeconds,
	)

	for {
		select {
		case <-tick.C:
			runCycle(ctx, cfg, eng, validator, m, profile)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			_ = trace.Shutdown(context.Background())
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle analyzes the whole universe once, emits each analysis as a
// JSON line, and validates the proposals derived from actionable ones.
func runCycle(ctx context.Context, cfg *store.Config, eng interfaces.Analyzer, validator *risk.Validator, m *metrics.Metrics, profile types.RiskProfile) {
	result := eng.AnalyzeBatch(ctx, cfg.Universe)

	var proposals []types.TradeProposal
	for _, sym := range cfg.Universe {
		r, ok := result[sym]
		if !ok {
			continue
		}
		if r.Err != nil {
			logger.Warn(ctx, "Symbol analysis failed", "symbol", sym, "error", r.Err)
			_ = auditlog.Append(auditlog.AnalysisEntry{Symbol: sym, Err: r.Err.Error()})
			continue
		}
		an := r.Analysis
		b, _ := json.Marshal(an)
		fmt.Println(string(b))

		_ = auditlog.Append(auditlog.AnalysisEntry{
			Symbol:     an.Symbol,
			Trend:      string(an.Bundle.Trend),
			Price:      an.Price,
			Signals:    len(an.Bundle.Signals),
			Indicators: keyIndicators(an.Indicators),
		})

		if p, ok := proposalFrom(an, profile); ok {
			proposals = append(proposals, p)
		}
	}

	validateProposals(ctx, validator, m, profile, proposals)
}

func keyIndicators(inds types.IndicatorSet) map[string]float64 {
	out := map[string]float64{}
	put := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	put("rsi", inds.RSI)
	put("ema20", inds.EMA20)
	put("ema50", inds.EMA50)
	put("atr", inds.ATR)
	put("adx", inds.ADX)
	return out
}
