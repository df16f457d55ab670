package failure

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrappedSentinels(t *testing.T) {
	assert.True(t, errors.Is(Invalid("iterations %d", 0), ErrInvalidParameter))
	assert.True(t, errors.Is(Degenerate("sigma %v", 0.0), ErrNumericDegeneracy))
	assert.True(t, errors.Is(Unavailable("symbol %s", "C"), ErrUpstreamDataUnavailable))
	assert.False(t, errors.Is(Invalid("x"), ErrNumericDegeneracy))
	assert.Contains(t, Invalid("iterations %d", 0).Error(), "iterations 0")
}

func TestFinite(t *testing.T) {
	assert.NoError(t, Finite([]string{"a", "b"}, 1, -2))

	err := Finite([]string{"s0", "sigma"}, 100, math.NaN())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "sigma")

	err = Finite(nil, math.Inf(1))
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}
