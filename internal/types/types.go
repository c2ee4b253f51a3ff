// Package types holds the value types exchanged between the analysis
// components. Everything here is plain data: constructed per request,
// never retained by any engine, serializable as-is by a surrounding
// service layer.
package types

import "time"

// Candle is a single OHLCV bar for one symbol.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// IndicatorSet is a per-series indicator snapshot keyed to the series'
// last timestamp. Fields are pointers so that "not enough data" is
// distinguishable from a computed zero.
type IndicatorSet struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	EMA20     *float64 `json:"ema20,omitempty"`
	EMA50     *float64 `json:"ema50,omitempty"`
	SMA200    *float64 `json:"sma200,omitempty"`
	RSI       *float64 `json:"rsi,omitempty"`
	MACD      *float64 `json:"macd,omitempty"`
	MACDSig   *float64 `json:"macdSignal,omitempty"`
	MACDHist  *float64 `json:"macdHistogram,omitempty"`
	ATR       *float64 `json:"atr,omitempty"`
	ADX       *float64 `json:"adx,omitempty"`
	BBUpper   *float64 `json:"bbUpper,omitempty"`
	BBLower   *float64 `json:"bbLower,omitempty"`
	StochK    *float64 `json:"stochK,omitempty"`
	StochD    *float64 `json:"stochD,omitempty"`
}

// Pattern tags emitted by the level detector.
const (
	PatternUptrend            = "uptrend"
	PatternDowntrend          = "downtrend"
	PatternBreakoutResistance = "breakout_resistance"
	PatternBreakdownSupport   = "breakdown_support"
)

// LevelSet holds detected support/resistance prices and pattern tags.
// Support is ascending, resistance descending, each capped at five.
type LevelSet struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
	Patterns   []string  `json:"patterns"`
}

// Direction of a signal.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Strength is the qualitative confidence tag on a signal. It is
// rule-derived and deterministic, not a numeric score.
type Strength string

const (
	Low    Strength = "LOW"
	Medium Strength = "MEDIUM"
	High   Strength = "HIGH"
)

// Trend is the aggregate trend label for a bundle.
type Trend string

const (
	Bullish  Trend = "BULLISH"
	Bearish  Trend = "BEARISH"
	Sideways Trend = "SIDEWAYS"
	Unknown  Trend = "UNKNOWN"
)

// Signal is one directional signal with its rationale.
type Signal struct {
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
	Indicator string    `json:"indicator"`
	Rationale string    `json:"rationale"`
	Value     *float64  `json:"value,omitempty"`
}

// SignalBundle is the ordered signal list (insertion order = rule
// evaluation order) plus the aggregate trend.
type SignalBundle struct {
	Signals []Signal `json:"signals"`
	Trend   Trend    `json:"trend"`
}

// RiskProfile is the caller-supplied account risk configuration.
type RiskProfile struct {
	MaxDailyRiskPercent float64 `json:"maxDailyRiskPercent"`
	PortfolioValue      float64 `json:"portfolioValue"`
	DefaultPositionSize float64 `json:"defaultPositionSize"`
	AllowShorting       bool    `json:"allowShorting"`
}

// TradeProposal is a proposed trade to validate. Position size and
// risk/reward are derived by the validator, never stored here.
type TradeProposal struct {
	Symbol      string    `json:"symbol"`
	Entry       float64   `json:"entry"`
	StopLoss    float64   `json:"stopLoss"`
	Targets     []float64 `json:"targets"`
	RiskPercent float64   `json:"riskPercent"`
	Confidence  float64   `json:"confidence"`
}

// ValidationResult is the outcome of validating one proposal. It is
// computed fresh per call and never mutated after return.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
}

// RiskReport is the portfolio-level aggregate over open proposals.
// Average confidence and exposure are reported for observability only.
type RiskReport struct {
	TotalRiskPercent float64  `json:"totalRiskPercent"`
	TotalExposure    float64  `json:"totalExposure"`
	PositionCount    int      `json:"positionCount"`
	AvgConfidence    float64  `json:"avgConfidence"`
	Warnings         []string `json:"warnings"`
}

// Analysis is the full per-symbol pipeline output.
type Analysis struct {
	Symbol     string       `json:"symbol"`
	Timestamp  time.Time    `json:"timestamp"`
	Price      float64      `json:"price"`
	Indicators IndicatorSet `json:"indicators"`
	Levels     LevelSet     `json:"levels"`
	Bundle     SignalBundle `json:"signals"`
}

// SymbolResult is one symbol's batch outcome: either a full analysis or
// an error, never both.
type SymbolResult struct {
	Analysis *Analysis
	Err      error
}

// BatchResult maps every requested symbol to its outcome. It is always
// complete: a failed symbol is present with its error, and failures never
// cancel or fail sibling symbols.
type BatchResult map[string]SymbolResult

// Float returns a pointer to v; used to populate optional indicator fields.
func Float(v float64) *float64 { return &v }
