package engine

import (
	"context"
	"sync"

	"signal-engine/internal/types"
)

// AnalyzeBatch fans the per-symbol pipeline out over symbols, bounded by
// the configured concurrency limit. The result always has one entry per
// symbol: a failure is captured as a SymbolError for that symbol and
// never cancels or fails siblings. Cancellation via ctx stops symbols
// that have not started yet; in-flight computation is pure and runs to
// completion.
func (e *Engine) AnalyzeBatch(ctx context.Context, symbols []string) types.BatchResult {
	result := make(types.BatchResult, len(symbols))
	if len(symbols) == 0 {
		return result
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.cfg.MaxConcurrent)
	)

	for _, symbol := range symbols {
		// A symbol listed twice would race on its map entry; analyze once.
		mu.Lock()
		if _, dup := result[symbol]; dup {
			mu.Unlock()
			continue
		}
		result[symbol] = types.SymbolResult{}
		mu.Unlock()

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				result[symbol] = types.SymbolResult{Err: &types.SymbolError{Symbol: symbol, Err: ctx.Err()}}
				mu.Unlock()
				return
			}

			analysis, err := e.Analyze(ctx, symbol)
			mu.Lock()
			if err != nil {
				result[symbol] = types.SymbolResult{Err: &types.SymbolError{Symbol: symbol, Err: err}}
			} else {
				result[symbol] = types.SymbolResult{Analysis: analysis}
			}
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return result
}
