package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"signal-engine/internal/interfaces"
	"signal-engine/internal/levels"
	"signal-engine/internal/signal"
	"signal-engine/internal/ta"
	"signal-engine/internal/types"
)

// fakeSource serves a canned series per symbol and fails configured
// symbols with a canned error.
type fakeSource struct {
	mu       sync.Mutex
	failing  map[string]error
	calls    int32
	inFlight int32
	maxSeen  int32
	delay    time.Duration
}

func (f *fakeSource) RecentCandles(ctx context.Context, symbol string, n int) (types.Series, error) {
	atomic.AddInt32(&f.calls, 1)
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	if cur > f.maxSeen {
		f.maxSeen = cur
	}
	err := f.failing[symbol]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return types.Series{}, err
	}

	base := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	candles := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)*0.1
		candles[i] = types.Candle{
			Symbol:    symbol,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return types.NewSeries(candles)
}

func newTestEngine(cfg Config, source interfaces.MarketData) *Engine {
	return New(cfg,
		source,
		ta.NewCalculator(ta.DefaultConfig()),
		levels.NewDetector(levels.DefaultConfig()),
		signal.NewGenerator(),
	)
}

func TestAnalyzeProducesFullAnalysis(t *testing.T) {
	eng := newTestEngine(Config{CandleCount: 250, MaxConcurrent: 4}, &fakeSource{})

	an, err := eng.Analyze(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("Expected analysis, got %v", err)
	}
	if an.Symbol != "TEST" {
		t.Errorf("Expected symbol TEST, got %s", an.Symbol)
	}
	if an.Indicators.EMA20 == nil || an.Indicators.RSI == nil || an.Indicators.SMA200 == nil {
		t.Error("Expected core indicators present on a 250-candle series")
	}
	if an.Bundle.Signals == nil || an.Levels.Support == nil {
		t.Error("Expected initialized signal and level slices")
	}
	if !an.Indicators.Timestamp.Equal(an.Timestamp) {
		t.Error("Expected indicator snapshot stamped at the analysis timestamp")
	}
}

func TestAnalyzeBatchCompleteMap(t *testing.T) {
	failErr := errors.New("feed unavailable")
	src := &fakeSource{failing: map[string]error{"BAD1": failErr, "BAD2": failErr}}
	eng := newTestEngine(Config{CandleCount: 100, MaxConcurrent: 4}, src)

	symbols := []string{"A", "BAD1", "B", "C", "BAD2", "D"}
	result := eng.AnalyzeBatch(context.Background(), symbols)

	if len(result) != len(symbols) {
		t.Fatalf("Expected %d entries, got %d", len(symbols), len(result))
	}
	for _, sym := range symbols {
		r, ok := result[sym]
		if !ok {
			t.Fatalf("Expected entry for %s", sym)
		}
		if sym == "BAD1" || sym == "BAD2" {
			if r.Err == nil {
				t.Errorf("%s: expected error", sym)
				continue
			}
			var se *types.SymbolError
			if !errors.As(r.Err, &se) || se.Symbol != sym {
				t.Errorf("%s: expected SymbolError for the symbol, got %v", sym, r.Err)
			}
			if !errors.Is(r.Err, failErr) {
				t.Errorf("%s: expected wrapped cause, got %v", sym, r.Err)
			}
			if r.Analysis != nil {
				t.Errorf("%s: expected nil analysis with error", sym)
			}
		} else {
			if r.Err != nil || r.Analysis == nil {
				t.Errorf("%s: expected analysis, got err=%v", sym, r.Err)
			}
		}
	}
}

func TestAnalyzeBatchBoundsConcurrency(t *testing.T) {
	src := &fakeSource{delay: 20 * time.Millisecond}
	eng := newTestEngine(Config{CandleCount: 50, MaxConcurrent: 3}, src)

	symbols := make([]string, 12)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d", i)
	}
	result := eng.AnalyzeBatch(context.Background(), symbols)

	if len(result) != 12 {
		t.Fatalf("Expected 12 entries, got %d", len(result))
	}
	if src.maxSeen > 3 {
		t.Errorf("Expected at most 3 concurrent fetches, saw %d", src.maxSeen)
	}
}

func TestAnalyzeBatchDeduplicatesSymbols(t *testing.T) {
	src := &fakeSource{}
	eng := newTestEngine(Config{CandleCount: 50, MaxConcurrent: 4}, src)

	result := eng.AnalyzeBatch(context.Background(), []string{"A", "A", "A"})
	if len(result) != 1 {
		t.Fatalf("Expected 1 entry for duplicated symbol, got %d", len(result))
	}
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("Expected 1 fetch for duplicated symbol, got %d", got)
	}
}

func TestAnalyzeBatchCancellation(t *testing.T) {
	src := &fakeSource{delay: 30 * time.Millisecond}
	eng := newTestEngine(Config{CandleCount: 50, MaxConcurrent: 1}, src)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	symbols := make([]string, 8)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d", i)
	}
	result := eng.AnalyzeBatch(ctx, symbols)

	// Cancellation must never shrink the map: unstarted symbols report
	// the context error instead of going missing.
	if len(result) != len(symbols) {
		t.Fatalf("Expected %d entries after cancellation, got %d", len(symbols), len(result))
	}
	cancelled := 0
	for sym, r := range result {
		if r.Err != nil && errors.Is(r.Err, context.Canceled) {
			cancelled++
			var se *types.SymbolError
			if !errors.As(r.Err, &se) || se.Symbol != sym {
				t.Errorf("%s: expected SymbolError wrapping the context error", sym)
			}
		}
	}
	if cancelled == 0 {
		t.Error("Expected at least one symbol to report cancellation")
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	eng := newTestEngine(Config{CandleCount: 50, MaxConcurrent: 4}, &fakeSource{})
	result := eng.AnalyzeBatch(context.Background(), nil)
	if result == nil || len(result) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", result)
	}
}

func TestAnalyzeSeriesShortSeriesError(t *testing.T) {
	eng := newTestEngine(Config{CandleCount: 1, MaxConcurrent: 4}, &fakeSource{})

	_, err := eng.Analyze(context.Background(), "TEST")
	if !errors.Is(err, types.ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData on 1-candle series, got %v", err)
	}
}
