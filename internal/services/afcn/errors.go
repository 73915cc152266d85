package afcn

import (
	"errors"
	"fmt"
	"math"
)

// Error classes of a decision. Wrapped errors keep the class reachable via errors.Is.
var (
	// ErrConfiguration: a resolved parameter violates a structural precondition.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidValue: an intermediate scalar is NaN or infinite.
	ErrInvalidValue = errors.New("invalid value")
	// ErrNumericalConvergence: the root finder could not bracket or converge.
	ErrNumericalConvergence = errors.New("numerical convergence failure")
	// ErrDegenerateMarket: the market state admits no meaningful forecast.
	ErrDegenerateMarket = errors.New("degenerate market")
)

// Reason maps a decision error to a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrNumericalConvergence):
		return "convergence"
	case errors.Is(err, ErrDegenerateMarket):
		return "degenerate_market"
	default:
		return "unknown"
	}
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func guard(name string, x float64) error {
	if !IsFinite(x) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, x)
	}
	return nil
}

func configErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, a...))
}
