package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/markowitz"
)

func TestNewMinimizer_Gonum(t *testing.T) {
	m, err := newMinimizer("gonum", zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &markowitz.GonumMinimizer{}, m)
}

func TestNewMinimizer_Unknown(t *testing.T) {
	_, err := newMinimizer("simplex", zap.NewNop())
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter), "%v", err)
}
