package interfaces

import (
	"context"

	"signal-engine/internal/types"
)

// MarketData supplies OHLCV series for symbols. The engine does not care
// whether candles come from a live feed or a simulator; acquisition,
// retries, and session handling all live behind this interface.
type MarketData interface {
	RecentCandles(ctx context.Context, symbol string, n int) (types.Series, error)
}
