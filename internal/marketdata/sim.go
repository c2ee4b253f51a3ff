// Package marketdata provides the simulated market-data source used when
// no live feed is wired in. Candle generation is deterministic per
// symbol, so repeated runs and tests see identical series.
package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"signal-engine/internal/types"
)

// Base prices for the default NSE watchlist; unknown symbols start at 1000.
var basePrices = map[string]float64{
	"NIFTY":      21500,
	"BANKNIFTY":  46000,
	"RELIANCE":   2800,
	"TCS":        3600,
	"INFY":       1650,
	"HDFCBANK":   1600,
	"ICICIBANK":  950,
	"ITC":        450,
	"HINDUNILVR": 2650,
	"BHARTIARTL": 900,
}

const defaultBasePrice = 1000

// Sim is a deterministic simulated MarketData source producing hourly
// candles via a per-symbol seeded random walk.
type Sim struct {
	anchor time.Time
}

// NewSim builds a simulator whose newest candle sits at anchor (truncated
// to the hour). Pass a fixed anchor in tests for full determinism.
func NewSim(anchor time.Time) *Sim {
	return &Sim{anchor: anchor.UTC().Truncate(time.Hour)}
}

// RecentCandles generates the last n hourly candles for symbol.
func (s *Sim) RecentCandles(ctx context.Context, symbol string, n int) (types.Series, error) {
	if err := ctx.Err(); err != nil {
		return types.Series{}, err
	}
	if n <= 0 {
		return types.Series{}, fmt.Errorf("candle count %d: %w", n, types.ErrInvalidInput)
	}

	rng := rand.New(rand.NewSource(seedFor(symbol)))
	price := basePriceFor(symbol)

	candles := make([]types.Candle, 0, n)
	start := s.anchor.Add(-time.Duration(n-1) * time.Hour)
	for i := 0; i < n; i++ {
		// Random walk of up to +/-2% per hour, like the upstream
		// mock feed this replaces.
		change := (rng.Float64()*2 - 1) * 0.02
		price = price * (1 + change)

		open := round2(price * (1 + (rng.Float64()*2-1)*0.001))
		closeP := round2(price)
		body := math.Max(open, closeP)
		floor := math.Min(open, closeP)
		high := round2(body * (1 + rng.Float64()*0.01))
		low := round2(floor * (1 - rng.Float64()*0.01))
		if high < body {
			high = body
		}
		if low > floor {
			low = floor
		}

		candles = append(candles, types.Candle{
			Symbol:    symbol,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closeP,
			Volume:    10000 + rng.Int63n(990001),
		})
	}

	return types.NewSeries(candles)
}

func basePriceFor(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return defaultBasePrice
}

func seedFor(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
