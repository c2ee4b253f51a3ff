// Package risk sizes proposed trades and validates them against account
// and portfolio risk rules.
package risk

import (
	"fmt"
	"math"

	"signal-engine/internal/types"
)

// Config holds the validation thresholds.
type Config struct {
	MinRiskReward       float64 `yaml:"min_risk_reward"`
	MaxPositionPct      float64 `yaml:"max_position_pct"`
	MaxPortfolioRiskPct float64 `yaml:"max_portfolio_risk_pct"`
	StopTightPct        float64 `yaml:"stop_tight_pct"`
	StopWidePct         float64 `yaml:"stop_wide_pct"`
	MinConfidence       float64 `yaml:"min_confidence"`
}

// DefaultConfig returns the standard thresholds: risk/reward floor 1.5,
// 20% max single-position share, 10% portfolio risk ceiling, stop
// distance flagged outside 0.5%-5%, confidence floor 60.
func DefaultConfig() Config {
	return Config{
		MinRiskReward:       1.5,
		MaxPositionPct:      0.20,
		MaxPortfolioRiskPct: 10.0,
		StopTightPct:        0.5,
		StopWidePct:         5.0,
		MinConfidence:       60,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinRiskReward <= 0 {
		c.MinRiskReward = d.MinRiskReward
	}
	if c.MaxPositionPct <= 0 {
		c.MaxPositionPct = d.MaxPositionPct
	}
	if c.MaxPortfolioRiskPct <= 0 {
		c.MaxPortfolioRiskPct = d.MaxPortfolioRiskPct
	}
	if c.StopTightPct <= 0 {
		c.StopTightPct = d.StopTightPct
	}
	if c.StopWidePct <= 0 {
		c.StopWidePct = d.StopWidePct
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = d.MinConfidence
	}
	return c
}

// Sizing is the derived position sizing for a proposal.
type Sizing struct {
	PositionSize    int     `json:"positionSize"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
}

// Validator applies the risk rules. Stateless, safe for concurrent use.
type Validator struct {
	cfg Config
}

// NewValidator builds a Validator, filling unset thresholds with defaults.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg.withDefaults()}
}

// Validate derives position sizing and risk/reward for the proposal and
// checks it against the profile. All checks run and accumulate warnings;
// none aborts early. Structurally invalid money fields (entry == stop,
// non-positive prices or portfolio value) are a hard ErrInvalidInput,
// never a warning.
func (v *Validator) Validate(trade types.TradeProposal, profile types.RiskProfile) (Sizing, types.ValidationResult, error) {
	if err := checkInputs(trade, profile); err != nil {
		return Sizing{}, types.ValidationResult{}, err
	}

	result := types.ValidationResult{IsValid: true, Warnings: []string{}}
	stopDist := math.Abs(trade.Entry - trade.StopLoss)

	// 1. Stop distance: informational only.
	stopPct := stopDist / trade.Entry * 100
	if stopPct < v.cfg.StopTightPct {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("stop loss too tight (%.2f%% < %.2f%%), may get stopped out prematurely", stopPct, v.cfg.StopTightPct))
	} else if stopPct > v.cfg.StopWidePct {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("stop loss too wide (%.2f%% > %.2f%%), excessive risk per trade", stopPct, v.cfg.StopWidePct))
	}

	// 2. Risk/reward against the first target.
	rr := math.Abs(trade.Targets[0]-trade.Entry) / stopDist
	if rr < v.cfg.MinRiskReward {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("risk/reward ratio %.2f below minimum %.2f", rr, v.cfg.MinRiskReward))
		result.IsValid = false
	}

	// 3. Position sizing and portfolio share.
	riskAmount := profile.PortfolioValue * trade.RiskPercent / 100
	size := int(math.Floor(riskAmount / stopDist))
	if size < 1 {
		size = 1
	}
	positionValue := float64(size) * trade.Entry
	if share := positionValue / profile.PortfolioValue; share > v.cfg.MaxPositionPct {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("position size %.1f%% of portfolio exceeds maximum %.1f%%", share*100, v.cfg.MaxPositionPct*100))
		result.IsValid = false
	}

	// 4. Declared trade risk against the profile cap.
	if trade.RiskPercent > profile.MaxDailyRiskPercent {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("trade risk %.1f%% exceeds daily limit %.1f%%", trade.RiskPercent, profile.MaxDailyRiskPercent))
		result.IsValid = false
	}

	// 5. Confidence floor: informational only.
	if trade.Confidence < v.cfg.MinConfidence {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("low confidence trade (%.0f < %.0f), consider reducing position size", trade.Confidence, v.cfg.MinConfidence))
	}

	return Sizing{PositionSize: size, RiskRewardRatio: rr}, result, nil
}

// AggregateRisk sums declared risk across open proposals and reports
// portfolio-level concentration. Exposure is derived per proposal with
// the same sizing formula Validate uses; average confidence and total
// exposure are observability fields, not validity gates.
func (v *Validator) AggregateRisk(trades []types.TradeProposal, profile types.RiskProfile) types.RiskReport {
	report := types.RiskReport{Warnings: []string{}}
	if len(trades) == 0 {
		report.Warnings = append(report.Warnings, "no open positions")
		return report
	}

	seen := map[string]int{}
	order := []string{}
	confSum := 0.0
	for _, t := range trades {
		report.TotalRiskPercent += t.RiskPercent
		confSum += t.Confidence
		if seen[t.Symbol] == 0 {
			order = append(order, t.Symbol)
		}
		seen[t.Symbol]++

		stopDist := math.Abs(t.Entry - t.StopLoss)
		if stopDist > 0 && profile.PortfolioValue > 0 {
			riskAmount := profile.PortfolioValue * t.RiskPercent / 100
			size := math.Floor(riskAmount / stopDist)
			if size < 1 {
				size = 1
			}
			report.TotalExposure += size * t.Entry
		}
	}
	report.PositionCount = len(trades)
	report.AvgConfidence = confSum / float64(len(trades))

	if report.TotalRiskPercent > v.cfg.MaxPortfolioRiskPct {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("total portfolio risk %.1f%% exceeds maximum %.1f%%", report.TotalRiskPercent, v.cfg.MaxPortfolioRiskPct))
	}
	for _, sym := range order {
		if n := seen[sym]; n > 1 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d positions in %s increase concentration risk", n, sym))
		}
	}
	return report
}

func checkInputs(trade types.TradeProposal, profile types.RiskProfile) error {
	if trade.Entry <= 0 || trade.StopLoss <= 0 {
		return fmt.Errorf("entry and stop loss must be positive: %w", types.ErrInvalidInput)
	}
	if trade.Entry == trade.StopLoss {
		return fmt.Errorf("entry equals stop loss: %w", types.ErrInvalidInput)
	}
	if len(trade.Targets) != 2 {
		return fmt.Errorf("exactly 2 targets required, got %d: %w", len(trade.Targets), types.ErrInvalidInput)
	}
	for _, t := range trade.Targets {
		if t <= 0 {
			return fmt.Errorf("targets must be positive: %w", types.ErrInvalidInput)
		}
	}
	if math.Abs(trade.Targets[1]-trade.Entry) < math.Abs(trade.Targets[0]-trade.Entry) {
		return fmt.Errorf("targets must ascend by distance from entry: %w", types.ErrInvalidInput)
	}
	if profile.PortfolioValue <= 0 {
		return fmt.Errorf("portfolio value must be positive: %w", types.ErrInvalidInput)
	}
	return nil
}
