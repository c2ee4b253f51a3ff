package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by the analysis components. Callers match them with
// errors.Is; components wrap them with context via fmt.Errorf("%w").
var (
	// ErrInsufficientData means the series is too short for the requested
	// computation. Indicator and level code degrades to partial output
	// where documented and returns this only where a hard floor exists.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput means structurally invalid input: a broken OHLC
	// invariant, out-of-order timestamps, non-positive money fields, or
	// entry == stop. Never degraded, always a hard failure.
	ErrInvalidInput = errors.New("invalid input")
)

// SymbolError wraps a failure for one symbol inside a batch. The batch
// never aborts siblings; it reports one of these per failed symbol.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

// IsInsufficientData reports whether err wraps ErrInsufficientData.
func IsInsufficientData(err error) bool { return errors.Is(err, ErrInsufficientData) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
