package blackscholes

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlerive/quantlib/failure"
)

func TestCallPutPrice(t *testing.T) {
	call, err := CallPrice(100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 10.45, call.Value, 0.005)
	assert.InDelta(t, 0.35, call.D1, 1e-12)
	assert.InDelta(t, 0.15, call.D2, 1e-12)

	put, err := PutPrice(100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 5.57, put.Value, 0.005)
	t.Logf("call: %+v, put: %+v", call, put)
}

func TestPutCallParity(t *testing.T) {
	cases := [][5]float64{
		{100, 100, 1, 0.05, 0.2},
		{4600, 5000, 0.1644, 0.025, 0.3},
		{40579, 39680, 3.5 / 365, 0.025, 0.56},
		{1000, 1001, 30.0 / 365, 0, 0.25},
		{50, 80, 2, -0.01, 0.9},
	}
	for _, c := range cases {
		S, E, T, rf, sigma := c[0], c[1], c[2], c[3], c[4]
		call, err := CallPrice(S, E, T, rf, sigma)
		require.NoError(t, err)
		put, err := PutPrice(S, E, T, rf, sigma)
		require.NoError(t, err)
		assert.InDelta(t, S-E*math.Exp(-rf*T), call.Value-put.Value, 1e-8*S, "case %v", c)
	}
}

func TestDegenerateInputs(t *testing.T) {
	_, err := CallPrice(100, 100, 1, 0.05, 0)
	assert.True(t, errors.Is(err, failure.ErrNumericDegeneracy))
	_, err = PutPrice(100, 100, 0, 0.05, 0.2)
	assert.True(t, errors.Is(err, failure.ErrNumericDegeneracy))

	_, err = CallPrice(100, 100, 1, 0.05, -0.2)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
	_, err = CallPrice(-1, 100, 1, 0.05, 0.2)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
	_, err = CallPrice(100, 100, math.NaN(), 0.05, 0.2)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
	_, err = OptionPrice("x", 100, 100, 1, 0.05, 0.2)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}

func TestCdfApproximatesN(t *testing.T) {
	for x := -6.0; x <= 6.0; x += 0.25 {
		assert.InDelta(t, N(x), Cdf(x), 1e-7, "x=%v", x)
	}
}

func TestImpliedVol_RoundTrip(t *testing.T) {
	for _, d := range []Direction{Call, Put} {
		for _, iv := range []float64{0.1, 0.25, 0.8} {
			price, err := OptionPrice(d, 4600, 5000, 0.1644, 0.025, iv)
			require.NoError(t, err)
			got, err := ImpliedVol(d, 4600, 5000, 0.1644, 0.025, price.Value, 0.01, 3)
			require.NoError(t, err)
			assert.InDelta(t, iv, got, 1e-4, "direction %s iv %v", d, iv)
		}
	}

	_, err := ImpliedVol(Call, 100, 100, 1, 0.05, 10, 0.5, 0.1)
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}

func TestImpliedVol_ClampsToBracket(t *testing.T) {
	iv, err := ImpliedVol(Call, 100, 100, 1, 0.05, 99, 0.01, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, iv)

	iv, err = ImpliedVol(Put, 100, 100, 1, 0.05, 0, 0.01, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.01, iv)
}

func TestGreeks(t *testing.T) {
	call, err := NewBSWithIv(Call, 100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	put, err := NewBSWithIv(Put, 100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 0.6368, call.Delta, 1e-4)
	assert.InDelta(t, call.Delta-1, put.Delta, 1e-12)
	assert.InDelta(t, call.Gamma, put.Gamma, 1e-12)
	assert.InDelta(t, call.Vega, put.Vega, 1e-12)
	assert.Less(t, call.Theta, 0.0)
	assert.Greater(t, call.Rho, 0.0)
	assert.Less(t, put.Rho, 0.0)

	bsm, err := NewBS(Put, 100, 100, 1, 0.05, put.Op, 0.01, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, bsm.Iv, 1e-4)
}

/**
 * BenchmarkImpliedVol backs a put volatility out of its quote.
 */
func BenchmarkImpliedVol(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = NewBS(Put, 4600, 5000, 0.1644, 0.025, 996.27, 0.3, 3)
	}
}

func BenchmarkBs(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = NewBSWithIv(Put, 4600, 5000, 0.1644, 0.025, 1.0304)
	}
}
