package marketdata

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlerive/quantlib/failure"
)

var (
	start = time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestLogReturns(t *testing.T) {
	r, err := LogReturns([]float64{100, 110, 99})
	require.NoError(t, err)
	require.Len(t, r, 2)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), r[1], 1e-12)

	s, err := SimpleReturns([]float64{100, 110, 99})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s[0], 1e-12)
	assert.InDelta(t, -0.1, s[1], 1e-12)

	_, err = LogReturns([]float64{100, 0})
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}

func TestEstimate(t *testing.T) {
	got, err := Estimate([]float64{0.01, -0.01, 0.03, -0.03}, Daily)
	require.NoError(t, err)
	assert.InDelta(t, 0, got.Mu, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0005), got.Sigma, 1e-12)
	assert.Equal(t, Daily, got.Period)
	assert.Equal(t, 4, got.Observations)

	annual, err := got.Annualize(252)
	require.NoError(t, err)
	assert.Equal(t, Annual, annual.Period)
	assert.InDelta(t, got.Sigma*math.Sqrt(252), annual.Sigma, 1e-12)

	again, err := annual.Annualize(252)
	require.NoError(t, err)
	assert.Equal(t, annual, again)

	_, err = got.Annualize(0)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}

func TestInsufficientHistory(t *testing.T) {
	_, err := Estimate([]float64{0.01}, Daily)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
	_, err = Estimate(nil, Daily)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
	_, err = LogReturns([]float64{100})
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))

	src := Static{"C": {50}, "WMT": {}}
	_, err = src.Closes(context.Background(), "C", start, end)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
	_, err = src.Closes(context.Background(), "WMT", start, end)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
	_, err = src.Closes(context.Background(), "AAPL", start, end)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
}

func TestStatic_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Static{"C": {1, 2, 3}}.Closes(ctx, "C", start, end)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_AlignsToShortestSeries(t *testing.T) {
	src := Static{
		"AAPL": {1, 2, 4, 8},
		"WMT":  {10, 11, 12},
	}
	frame, err := Load(context.Background(), src, []string{"AAPL", "WMT"}, start, end)
	require.NoError(t, err)
	rows, cols := frame.Prices.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2.0, frame.Prices.At(0, 0))
	assert.Equal(t, 12.0, frame.Prices.At(2, 1))

	returns, err := frame.LogReturns()
	require.NoError(t, err)
	r, c := returns.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.InDelta(t, math.Log(2), returns.At(1, 0), 1e-12)
	assert.InDelta(t, math.Log(12.0/11), returns.At(1, 1), 1e-12)

	_, err = Load(context.Background(), src, []string{"AAPL", "GE"}, start, end)
	assert.True(t, errors.Is(err, failure.ErrUpstreamDataUnavailable))
	_, err = Load(context.Background(), src, nil, start, end)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}
