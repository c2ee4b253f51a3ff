package types

import (
	"errors"
	"testing"
	"time"
)

func candleAt(i int, open, high, low, clos float64) Candle {
	base := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	return Candle{
		Symbol:    "TEST",
		Timestamp: base.Add(time.Duration(i) * time.Hour),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     clos,
		Volume:    1000,
	}
}

func TestNewSeriesValid(t *testing.T) {
	s, err := NewSeries([]Candle{
		candleAt(0, 100, 102, 99, 101),
		candleAt(1, 101, 103, 100, 102),
	})
	if err != nil {
		t.Fatalf("Expected valid series, got %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected length 2, got %d", s.Len())
	}
	if s.Symbol() != "TEST" {
		t.Errorf("Expected symbol TEST, got %s", s.Symbol())
	}
	if s.Last().Close != 102 {
		t.Errorf("Expected last close 102, got %f", s.Last().Close)
	}
}

func TestNewSeriesRejectsOHLCViolation(t *testing.T) {
	cases := []struct {
		name   string
		candle Candle
	}{
		{"high below close", candleAt(0, 100, 100.5, 99, 101)},
		{"low above open", candleAt(0, 100, 102, 100.5, 101)},
		{"zero price", candleAt(0, 0, 102, 99, 101)},
		{"negative price", candleAt(0, 100, 102, -1, 101)},
	}
	for _, tc := range cases {
		_, err := NewSeries([]Candle{tc.candle})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestNewSeriesRejectsNegativeVolume(t *testing.T) {
	c := candleAt(0, 100, 102, 99, 101)
	c.Volume = -1
	if _, err := NewSeries([]Candle{c}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestNewSeriesRejectsOutOfOrderTimestamps(t *testing.T) {
	a := candleAt(1, 100, 102, 99, 101)
	b := candleAt(0, 101, 103, 100, 102)
	if _, err := NewSeries([]Candle{a, b}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	// Duplicate timestamps are just as invalid.
	c := candleAt(1, 101, 103, 100, 102)
	if _, err := NewSeries([]Candle{a, c}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for duplicate timestamp, got %v", err)
	}
}

func TestNewSeriesRejectsMixedSymbols(t *testing.T) {
	a := candleAt(0, 100, 102, 99, 101)
	b := candleAt(1, 101, 103, 100, 102)
	b.Symbol = "OTHER"
	if _, err := NewSeries([]Candle{a, b}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSymbolErrorUnwraps(t *testing.T) {
	inner := ErrInsufficientData
	err := &SymbolError{Symbol: "TEST", Err: inner}
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("Expected SymbolError to unwrap to its cause")
	}
	if !IsInsufficientData(err) {
		t.Error("Expected IsInsufficientData to match through the wrapper")
	}
}
