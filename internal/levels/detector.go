// Package levels finds support/resistance price levels and simple chart
// patterns from a candle series.
package levels

import (
	"math"
	"sort"

	"signal-engine/internal/types"
)

// Config holds the detection tunables. The slope threshold and breakout
// multipliers are calibration constants, not universal laws; override
// them per instrument class if the defaults misfire.
type Config struct {
	Lookback       int     `yaml:"lookback"`
	MaxLevels      int     `yaml:"max_levels"`
	SlopeThreshold float64 `yaml:"slope_threshold"`
	BreakoutMult   float64 `yaml:"breakout_mult"`
	BreakdownMult  float64 `yaml:"breakdown_mult"`
	TrendWindow    int     `yaml:"trend_window"`
	PatternMin     int     `yaml:"pattern_min_candles"`
}

// DefaultConfig returns the calibration the signal rules expect:
// lookback 20, at most 5 levels per side, slope threshold 0.5, breakout
// at 1.02x / breakdown at 0.98x, trend fitted over the last 10 closes.
func DefaultConfig() Config {
	return Config{
		Lookback:       20,
		MaxLevels:      5,
		SlopeThreshold: 0.5,
		BreakoutMult:   1.02,
		BreakdownMult:  0.98,
		TrendWindow:    10,
		PatternMin:     20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Lookback <= 0 {
		c.Lookback = d.Lookback
	}
	if c.MaxLevels <= 0 {
		c.MaxLevels = d.MaxLevels
	}
	if c.SlopeThreshold <= 0 {
		c.SlopeThreshold = d.SlopeThreshold
	}
	if c.BreakoutMult <= 0 {
		c.BreakoutMult = d.BreakoutMult
	}
	if c.BreakdownMult <= 0 {
		c.BreakdownMult = d.BreakdownMult
	}
	if c.TrendWindow <= 0 {
		c.TrendWindow = d.TrendWindow
	}
	if c.PatternMin <= 0 {
		c.PatternMin = d.PatternMin
	}
	// detectPatterns slices the last 20 closes for breakout/breakdown and
	// the last TrendWindow closes for the trend fit; the pattern floor
	// must cover both or those slices go out of range.
	if c.PatternMin < 20 {
		c.PatternMin = 20
	}
	if c.PatternMin < c.TrendWindow {
		c.PatternMin = c.TrendWindow
	}
	return c
}

// Detector finds levels and patterns. Stateless, safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector builds a Detector, filling unset tunables with defaults.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults()}
}

// Detect returns the level set for the series. A series too short for
// level detection (< 2*lookback+1 candles) yields empty level slices,
// and one too short for pattern detection yields no pattern tags; short
// input is degraded output here, never an error.
func (d *Detector) Detect(series types.Series) types.LevelSet {
	set := types.LevelSet{
		Support:    []float64{},
		Resistance: []float64{},
		Patterns:   []string{},
	}
	d.detectLevels(series, &set)
	d.detectPatterns(series, &set)
	return set
}

// detectLevels marks high[i] as resistance when it is the maximum high in
// the centered window [i-lookback, i+lookback], and low[i] as support when
// it is the window minimum. Levels are deduplicated at 2 decimal places;
// the 5 highest resistances and 5 lowest supports are kept.
func (d *Detector) detectLevels(series types.Series, set *types.LevelSet) {
	lb := d.cfg.Lookback
	if series.Len() < 2*lb+1 {
		return
	}
	highs := series.Highs()
	lows := series.Lows()

	resSeen := map[float64]bool{}
	supSeen := map[float64]bool{}

	for i := lb; i < len(highs)-lb; i++ {
		isRes, isSup := true, true
		for j := i - lb; j <= i+lb; j++ {
			if highs[j] > highs[i] {
				isRes = false
			}
			if lows[j] < lows[i] {
				isSup = false
			}
			if !isRes && !isSup {
				break
			}
		}
		if isRes {
			resSeen[round2(highs[i])] = true
		}
		if isSup {
			supSeen[round2(lows[i])] = true
		}
	}

	res := keys(resSeen)
	sup := keys(supSeen)
	sort.Sort(sort.Reverse(sort.Float64Slice(res)))
	sort.Float64s(sup)
	set.Resistance = truncate(res, d.cfg.MaxLevels)
	set.Support = truncate(sup, d.cfg.MaxLevels)
}

// detectPatterns tags trend direction from a least-squares fit over the
// last trendWindow closes, and breakout/breakdown from the last 5 closes
// against the prior 15.
func (d *Detector) detectPatterns(series types.Series, set *types.LevelSet) {
	if series.Len() < d.cfg.PatternMin {
		return
	}
	closes := series.Closes()

	slope := fitSlope(closes[len(closes)-d.cfg.TrendWindow:])
	if slope > d.cfg.SlopeThreshold {
		set.Patterns = append(set.Patterns, types.PatternUptrend)
	} else if slope < -d.cfg.SlopeThreshold {
		set.Patterns = append(set.Patterns, types.PatternDowntrend)
	}

	recentHigh := maxOf(closes[len(closes)-5:])
	priorHigh := maxOf(closes[len(closes)-20 : len(closes)-5])
	if recentHigh > priorHigh*d.cfg.BreakoutMult {
		set.Patterns = append(set.Patterns, types.PatternBreakoutResistance)
	}

	recentLow := minOf(closes[len(closes)-5:])
	priorLow := minOf(closes[len(closes)-20 : len(closes)-5])
	if recentLow < priorLow*d.cfg.BreakdownMult {
		set.Patterns = append(set.Patterns, types.PatternBreakdownSupport)
	}
}

// fitSlope returns the slope of the least-squares line through vals with
// x = 0..len-1.
func fitSlope(vals []float64) float64 {
	n := float64(len(vals))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range vals {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func keys(m map[float64]bool) []float64 {
	out := make([]float64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func truncate(vals []float64, n int) []float64 {
	if len(vals) > n {
		return vals[:n]
	}
	return vals
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
