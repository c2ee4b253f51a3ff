package types

import (
	"fmt"
	"math"
)

// Series is an ordered candle sequence for one symbol, ascending by
// timestamp with no duplicates. Build one with NewSeries so the OHLC
// invariant is enforced up front; downstream code assumes it holds.
type Series struct {
	candles []Candle
}

// NewSeries validates candles and returns a Series. Violated candles are
// rejected with ErrInvalidInput, not clamped.
func NewSeries(candles []Candle) (Series, error) {
	for i, c := range candles {
		if err := validateCandle(c); err != nil {
			return Series{}, fmt.Errorf("candle %d: %w", i, err)
		}
		if i > 0 {
			prev := candles[i-1]
			if c.Symbol != prev.Symbol {
				return Series{}, fmt.Errorf("candle %d: symbol %q differs from %q: %w", i, c.Symbol, prev.Symbol, ErrInvalidInput)
			}
			if !c.Timestamp.After(prev.Timestamp) {
				return Series{}, fmt.Errorf("candle %d: timestamp not increasing: %w", i, ErrInvalidInput)
			}
		}
	}
	return Series{candles: candles}, nil
}

func validateCandle(c Candle) error {
	for _, v := range [4]float64{c.Open, c.High, c.Low, c.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-positive or non-finite price: %w", ErrInvalidInput)
		}
	}
	if c.Volume < 0 {
		return fmt.Errorf("negative volume: %w", ErrInvalidInput)
	}
	if c.Low > math.Min(c.Open, c.Close) || c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("OHLC bounds violated: %w", ErrInvalidInput)
	}
	return nil
}

// Len returns the number of candles.
func (s Series) Len() int { return len(s.candles) }

// Symbol returns the series symbol, or "" for an empty series.
func (s Series) Symbol() string {
	if len(s.candles) == 0 {
		return ""
	}
	return s.candles[0].Symbol
}

// At returns the candle at index i.
func (s Series) At(i int) Candle { return s.candles[i] }

// Last returns the most recent candle. Callers must check Len first.
func (s Series) Last() Candle { return s.candles[len(s.candles)-1] }

// Closes returns the close prices in chronological order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}

// Highs returns the high prices in chronological order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the low prices in chronological order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Low
	}
	return out
}
