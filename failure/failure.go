// Package failure holds the error taxonomy shared by the pricing and risk packages.
// Call sites wrap these sentinels with context; callers match them with errors.Is.
package failure

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidParameter: non-positive time, volatility or iterations, out of range confidence.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNumericDegeneracy: a closed form divides by zero (zero volatility or zero horizon).
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
	// ErrUpstreamDataUnavailable: the price source returned too little history to estimate from.
	ErrUpstreamDataUnavailable = errors.New("upstream data unavailable")
)

// Invalid wraps ErrInvalidParameter with a formatted reason.
func Invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}

// Degenerate wraps ErrNumericDegeneracy with a formatted reason.
func Degenerate(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNumericDegeneracy, format, args...)
}

// Unavailable wraps ErrUpstreamDataUnavailable with a formatted reason.
func Unavailable(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUpstreamDataUnavailable, format, args...)
}

// Finite reports an InvalidParameter error naming the first NaN or Inf value.
func Finite(names []string, values ...float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			name := "value"
			if i < len(names) {
				name = names[i]
			}
			return Invalid("%s must be finite, got %v", name, v)
		}
	}
	return nil
}
