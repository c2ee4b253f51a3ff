package ta

import (
	"fmt"
	"math"

	"signal-engine/internal/types"
)

// Config holds the indicator periods. Zero values fall back to the
// defaults the rest of the pipeline is calibrated for.
type Config struct {
	EMAFast    int     `yaml:"ema_fast"`
	EMASlow    int     `yaml:"ema_slow"`
	SMALong    int     `yaml:"sma_long"`
	RSIPeriod  int     `yaml:"rsi_period"`
	MACDFast   int     `yaml:"macd_fast"`
	MACDSlow   int     `yaml:"macd_slow"`
	MACDSignal int     `yaml:"macd_signal"`
	ATRPeriod  int     `yaml:"atr_period"`
	ADXPeriod  int     `yaml:"adx_period"`
	BBWindow   int     `yaml:"bb_window"`
	BBStdDev   float64 `yaml:"bb_stddev"`
	StochK     int     `yaml:"stoch_k"`
	StochD     int     `yaml:"stoch_d"`
}

// DefaultConfig returns the standard periods: EMA 20/50, SMA 200,
// RSI/ATR/ADX 14, MACD 12/26/9, Bollinger 20/2, Stochastic 14/3.
func DefaultConfig() Config {
	return Config{
		EMAFast:    20,
		EMASlow:    50,
		SMALong:    200,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		ATRPeriod:  14,
		ADXPeriod:  14,
		BBWindow:   20,
		BBStdDev:   2.0,
		StochK:     14,
		StochD:     3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EMAFast <= 0 {
		c.EMAFast = d.EMAFast
	}
	if c.EMASlow <= 0 {
		c.EMASlow = d.EMASlow
	}
	if c.SMALong <= 0 {
		c.SMALong = d.SMALong
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast <= 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = d.ATRPeriod
	}
	if c.ADXPeriod <= 0 {
		c.ADXPeriod = d.ADXPeriod
	}
	if c.BBWindow <= 0 {
		c.BBWindow = d.BBWindow
	}
	if c.BBStdDev <= 0 {
		c.BBStdDev = d.BBStdDev
	}
	if c.StochK <= 0 {
		c.StochK = d.StochK
	}
	if c.StochD <= 0 {
		c.StochD = d.StochD
	}
	return c
}

// Calculator computes an IndicatorSet snapshot from a candle series.
// It is stateless and safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator builds a Calculator, filling unset periods with defaults.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg.withDefaults()}
}

// Compute returns the indicator snapshot for the series. Indicators whose
// lookback exceeds the series length are left absent rather than failing
// the call; the only hard error is a series shorter than two candles,
// which cannot satisfy even the shortest lookback.
func (c *Calculator) Compute(series types.Series) (types.IndicatorSet, error) {
	set := types.IndicatorSet{}
	if series.Len() < 2 {
		return set, fmt.Errorf("need at least 2 candles, got %d: %w", series.Len(), types.ErrInsufficientData)
	}

	last := series.Last()
	set.Symbol = last.Symbol
	set.Timestamp = last.Timestamp

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()

	set.EMA20 = opt(EMA(closes, c.cfg.EMAFast))
	set.EMA50 = opt(EMA(closes, c.cfg.EMASlow))
	set.SMA200 = opt(SMA(closes, c.cfg.SMALong))
	set.RSI = opt(RSI(closes, c.cfg.RSIPeriod))

	line, sig, hist := MACD(closes, c.cfg.MACDFast, c.cfg.MACDSlow, c.cfg.MACDSignal)
	set.MACD = opt(line)
	set.MACDSig = opt(sig)
	set.MACDHist = opt(hist)

	set.ATR = opt(ATR(highs, lows, closes, c.cfg.ATRPeriod))
	set.ADX = opt(ADX(highs, lows, closes, c.cfg.ADXPeriod))

	if series.Len() >= c.cfg.BBWindow {
		_, up, low := Bollinger(closes, c.cfg.BBWindow, c.cfg.BBStdDev)
		set.BBUpper = opt(up)
		set.BBLower = opt(low)
	}

	k, d := Stoch(highs, lows, closes, c.cfg.StochK, c.cfg.StochD)
	set.StochK = opt(k)
	set.StochD = opt(d)

	return set, nil
}

// opt converts a NaN sentinel into an absent field.
func opt(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return types.Float(v)
}
