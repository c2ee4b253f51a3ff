package interfaces

import (
	"context"

	"signal-engine/internal/types"
)

// Analyzer runs the full analysis pipeline: one symbol, or a batch that
// always reports every requested symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*types.Analysis, error)
	AnalyzeBatch(ctx context.Context, symbols []string) types.BatchResult
}
