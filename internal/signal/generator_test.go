package signal

import (
	"testing"

	"signal-engine/internal/types"
)

func f(v float64) *float64 { return types.Float(v) }

func flatCloses(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestGenerateEmptyCloses(t *testing.T) {
	g := NewGenerator()
	bundle := g.Generate(types.IndicatorSet{RSI: f(25)}, types.LevelSet{}, nil)

	if len(bundle.Signals) != 0 {
		t.Errorf("Expected no signals without closes, got %d", len(bundle.Signals))
	}
	if bundle.Trend != types.Unknown {
		t.Errorf("Expected trend UNKNOWN, got %s", bundle.Trend)
	}
	if bundle.Signals == nil {
		t.Error("Expected empty slice, not nil")
	}
}

func TestRSIBranches(t *testing.T) {
	cases := []struct {
		rsi      float64
		want     types.Direction
		strength types.Strength
		none     bool
	}{
		{25, types.Buy, types.High, false},
		{29.99, types.Buy, types.High, false},
		{30, types.Sell, types.Medium, false}, // boundary belongs to the bearish band
		{45, types.Sell, types.Medium, false},
		{45.01, "", "", true},
		{50, "", "", true},
		{54.99, "", "", true},
		{55, types.Buy, types.Medium, false},
		{70, types.Buy, types.Medium, false}, // boundary belongs to the bullish band
		{70.01, types.Sell, types.High, false},
		{85, types.Sell, types.High, false},
	}
	g := NewGenerator()
	for _, tc := range cases {
		bundle := g.Generate(types.IndicatorSet{RSI: f(tc.rsi)}, types.LevelSet{}, flatCloses(10, 100))
		if tc.none {
			if len(bundle.Signals) != 0 {
				t.Errorf("RSI %.2f: expected no signal, got %+v", tc.rsi, bundle.Signals)
			}
			continue
		}
		if len(bundle.Signals) != 1 {
			t.Fatalf("RSI %.2f: expected 1 signal, got %d", tc.rsi, len(bundle.Signals))
		}
		s := bundle.Signals[0]
		if s.Direction != tc.want || s.Strength != tc.strength {
			t.Errorf("RSI %.2f: expected %s/%s, got %s/%s", tc.rsi, tc.want, tc.strength, s.Direction, s.Strength)
		}
		if s.Indicator != "RSI" {
			t.Errorf("RSI %.2f: expected indicator RSI, got %s", tc.rsi, s.Indicator)
		}
	}
}

func TestRuleOrderIsFixed(t *testing.T) {
	// All four rules fire bullish; the bundle order must be RSI, EMA,
	// MACD, BB regardless of strength.
	closes := flatCloses(10, 110)
	inds := types.IndicatorSet{
		RSI:     f(25),
		EMA20:   f(105),
		EMA50:   f(100),
		MACD:    f(2),
		MACDSig: f(1),
		BBUpper: f(130),
		BBLower: f(115),
	}
	g := NewGenerator()
	bundle := g.Generate(inds, types.LevelSet{}, closes)

	want := []string{"RSI", "EMA", "MACD", "BB"}
	if len(bundle.Signals) != len(want) {
		t.Fatalf("Expected %d signals, got %d", len(want), len(bundle.Signals))
	}
	for i, name := range want {
		if bundle.Signals[i].Indicator != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, bundle.Signals[i].Indicator)
		}
	}
}

func TestMATrendRule(t *testing.T) {
	g := NewGenerator()

	up := g.Generate(types.IndicatorSet{EMA20: f(105), EMA50: f(100)}, types.LevelSet{}, flatCloses(10, 110))
	if len(up.Signals) != 1 || up.Signals[0].Direction != types.Buy {
		t.Errorf("Expected BUY on uptrend alignment, got %+v", up.Signals)
	}
	if up.Trend != types.Bullish {
		t.Errorf("Expected BULLISH trend from alignment, got %s", up.Trend)
	}

	down := g.Generate(types.IndicatorSet{EMA20: f(95), EMA50: f(100)}, types.LevelSet{}, flatCloses(10, 90))
	if len(down.Signals) != 1 || down.Signals[0].Direction != types.Sell {
		t.Errorf("Expected SELL on downtrend alignment, got %+v", down.Signals)
	}

	// Equal EMAs align neither way.
	flat := g.Generate(types.IndicatorSet{EMA20: f(100), EMA50: f(100)}, types.LevelSet{}, flatCloses(10, 100))
	if len(flat.Signals) != 0 {
		t.Errorf("Expected no MA signal on equal EMAs, got %+v", flat.Signals)
	}
}

func TestMACDRuleNeedsPositiveTerritory(t *testing.T) {
	g := NewGenerator()

	// Above signal but below zero: no signal.
	b := g.Generate(types.IndicatorSet{MACD: f(-0.5), MACDSig: f(-1)}, types.LevelSet{}, flatCloses(10, 100))
	if len(b.Signals) != 0 {
		t.Errorf("Expected no MACD signal below zero, got %+v", b.Signals)
	}

	b = g.Generate(types.IndicatorSet{MACD: f(2), MACDSig: f(1)}, types.LevelSet{}, flatCloses(10, 100))
	if len(b.Signals) != 1 || b.Signals[0].Direction != types.Buy {
		t.Errorf("Expected MACD BUY, got %+v", b.Signals)
	}

	b = g.Generate(types.IndicatorSet{MACD: f(-2), MACDSig: f(-1)}, types.LevelSet{}, flatCloses(10, 100))
	if len(b.Signals) != 1 || b.Signals[0].Direction != types.Sell {
		t.Errorf("Expected MACD SELL, got %+v", b.Signals)
	}
}

func TestBollingerRule(t *testing.T) {
	g := NewGenerator()

	buy := g.Generate(types.IndicatorSet{BBUpper: f(110), BBLower: f(95)}, types.LevelSet{}, flatCloses(10, 90))
	if len(buy.Signals) != 1 || buy.Signals[0].Direction != types.Buy || buy.Signals[0].Strength != types.High {
		t.Errorf("Expected BB BUY/HIGH below lower band, got %+v", buy.Signals)
	}

	// Exactly on the band is inside it.
	on := g.Generate(types.IndicatorSet{BBUpper: f(110), BBLower: f(95)}, types.LevelSet{}, flatCloses(10, 110))
	if len(on.Signals) != 0 {
		t.Errorf("Expected no BB signal on the band, got %+v", on.Signals)
	}
}

func TestTrendFallbackMeans(t *testing.T) {
	g := NewGenerator()

	// Last five closes 2% above the prior five.
	closes := []float64{100, 100, 100, 100, 100, 102, 102, 102, 102, 102}
	b := g.Generate(types.IndicatorSet{}, types.LevelSet{}, closes)
	if b.Trend != types.Bullish {
		t.Errorf("Expected BULLISH from rising means, got %s", b.Trend)
	}

	closes = []float64{102, 102, 102, 102, 102, 100, 100, 100, 100, 100}
	b = g.Generate(types.IndicatorSet{}, types.LevelSet{}, closes)
	if b.Trend != types.Bearish {
		t.Errorf("Expected BEARISH from falling means, got %s", b.Trend)
	}

	b = g.Generate(types.IndicatorSet{}, types.LevelSet{}, flatCloses(10, 100))
	if b.Trend != types.Sideways {
		t.Errorf("Expected SIDEWAYS on flat closes, got %s", b.Trend)
	}

	// Fewer than ten closes and no EMA alignment: cannot label the trend.
	b = g.Generate(types.IndicatorSet{}, types.LevelSet{}, flatCloses(9, 100))
	if b.Trend != types.Unknown {
		t.Errorf("Expected UNKNOWN on short series, got %s", b.Trend)
	}
}

// Sixty identical candles: the zero-loss RSI convention reads as maximum
// overbought, collapsed bands emit nothing, and the trend is sideways.
func TestFlatSeriesEndToEnd(t *testing.T) {
	closes := flatCloses(60, 100)
	inds := types.IndicatorSet{
		RSI:     f(100),
		EMA20:   f(100),
		EMA50:   f(100),
		MACD:    f(0),
		MACDSig: f(0),
		BBUpper: f(100),
		BBLower: f(100),
	}
	g := NewGenerator()
	bundle := g.Generate(inds, types.LevelSet{}, closes)

	if len(bundle.Signals) != 1 {
		t.Fatalf("Expected exactly the RSI signal, got %d", len(bundle.Signals))
	}
	s := bundle.Signals[0]
	if s.Indicator != "RSI" || s.Direction != types.Sell || s.Strength != types.High {
		t.Errorf("Expected RSI SELL/HIGH, got %s %s/%s", s.Indicator, s.Direction, s.Strength)
	}
	if bundle.Trend != types.Sideways {
		t.Errorf("Expected SIDEWAYS trend, got %s", bundle.Trend)
	}
}
