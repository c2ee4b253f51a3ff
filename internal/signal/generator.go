// Package signal turns an indicator snapshot and detected levels into an
// ordered list of directional signals plus an aggregate trend label.
//
// Generation is a pure function of its inputs: no randomness, no clock.
// Rules run in a fixed order and each appends at most one signal, so the
// bundle doubles as an ordered rationale list for downstream consumers.
package signal

import (
	"fmt"

	"signal-engine/internal/types"
)

// Generator evaluates the signal rules. Stateless, safe for concurrent use.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate evaluates the rules against the indicator set and level set.
// closes is the chronological close series; its last element is the
// current price (the aggregate-trend fallback also needs the last ten
// closes, which is why the full slice is taken rather than one price).
// Never fails: absent indicator fields simply skip the rules that need
// them, and a too-short series yields an empty bundle with Trend UNKNOWN.
func (g *Generator) Generate(inds types.IndicatorSet, levels types.LevelSet, closes []float64) types.SignalBundle {
	bundle := types.SignalBundle{Signals: []types.Signal{}, Trend: types.Unknown}
	if len(closes) == 0 {
		return bundle
	}
	price := closes[len(closes)-1]

	// Rule order is fixed: RSI, MA alignment, MACD, Bollinger.
	if s := rsiRule(inds.RSI); s != nil {
		bundle.Signals = append(bundle.Signals, *s)
	}
	if s := maTrendRule(price, inds.EMA20, inds.EMA50); s != nil {
		bundle.Signals = append(bundle.Signals, *s)
	}
	if s := macdRule(inds.MACD, inds.MACDSig); s != nil {
		bundle.Signals = append(bundle.Signals, *s)
	}
	if s := bollingerRule(price, inds.BBUpper, inds.BBLower); s != nil {
		bundle.Signals = append(bundle.Signals, *s)
	}

	bundle.Trend = trend(price, inds.EMA20, inds.EMA50, closes)
	return bundle
}

// rsiRule: extremes are HIGH-strength signals, the 55-70 / 30-45 bands
// MEDIUM, and the exclusive 45-55 mid-band emits nothing.
func rsiRule(rsi *float64) *types.Signal {
	if rsi == nil {
		return nil
	}
	r := *rsi
	switch {
	case r < 30:
		return sig(types.Buy, types.High, "RSI", fmt.Sprintf("RSI %.1f oversold", r), r)
	case r > 70:
		return sig(types.Sell, types.High, "RSI", fmt.Sprintf("RSI %.1f overbought", r), r)
	case r > 45 && r < 55:
		return nil
	case r >= 55:
		return sig(types.Buy, types.Medium, "RSI", fmt.Sprintf("RSI %.1f showing bullish momentum", r), r)
	default: // 30 <= r <= 45
		return sig(types.Sell, types.Medium, "RSI", fmt.Sprintf("RSI %.1f showing bearish momentum", r), r)
	}
}

func maTrendRule(price float64, ema20, ema50 *float64) *types.Signal {
	if ema20 == nil || ema50 == nil {
		return nil
	}
	if price > *ema20 && *ema20 > *ema50 {
		return sig(types.Buy, types.Medium, "EMA", "uptrend alignment: price above EMA20 above EMA50", price)
	}
	if price < *ema20 && *ema20 < *ema50 {
		return sig(types.Sell, types.Medium, "EMA", "downtrend alignment: price below EMA20 below EMA50", price)
	}
	return nil
}

func macdRule(line, signal *float64) *types.Signal {
	if line == nil || signal == nil {
		return nil
	}
	if *line > *signal && *line > 0 {
		return sig(types.Buy, types.Medium, "MACD", "MACD above signal line in positive territory", *line)
	}
	if *line < *signal && *line < 0 {
		return sig(types.Sell, types.Medium, "MACD", "MACD below signal line in negative territory", *line)
	}
	return nil
}

func bollingerRule(price float64, upper, lower *float64) *types.Signal {
	if upper == nil || lower == nil {
		return nil
	}
	if price < *lower {
		return sig(types.Buy, types.High, "BB", "price below lower Bollinger band, oversold band", price)
	}
	if price > *upper {
		return sig(types.Sell, types.High, "BB", "price above upper Bollinger band, overbought band", price)
	}
	return nil
}

// trend labels the aggregate direction: EMA alignment first, then the
// last-5 vs prior-5 close means with a 1% threshold, UNKNOWN when the
// series is too short for either.
func trend(price float64, ema20, ema50 *float64, closes []float64) types.Trend {
	if ema20 != nil && ema50 != nil {
		if price > *ema20 && *ema20 > *ema50 {
			return types.Bullish
		}
		if price < *ema20 && *ema20 < *ema50 {
			return types.Bearish
		}
	}
	if len(closes) < 10 {
		return types.Unknown
	}
	recent := mean(closes[len(closes)-5:])
	prior := mean(closes[len(closes)-10 : len(closes)-5])
	if prior == 0 {
		return types.Sideways
	}
	change := (recent - prior) / prior
	switch {
	case change > 0.01:
		return types.Bullish
	case change < -0.01:
		return types.Bearish
	default:
		return types.Sideways
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sig(dir types.Direction, strength types.Strength, indicator, rationale string, value float64) *types.Signal {
	return &types.Signal{
		Direction: dir,
		Strength:  strength,
		Indicator: indicator,
		Rationale: rationale,
		Value:     types.Float(value),
	}
}
