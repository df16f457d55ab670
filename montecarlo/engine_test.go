package montecarlo

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/charlerive/quantlib/blackscholes"
	"github.com/charlerive/quantlib/failure"
)

var atm = OptionPricing{S0: 100, E: 100, T: 1, Rf: 0.05, Sigma: 0.2, Iterations: 1000000}

func TestOptionPricing_ConvergesToClosedForm(t *testing.T) {
	e := NewEngine(WithSeed(7), WithWorkers(4))

	call, err := atm.CallSimulation(e)
	require.NoError(t, err)
	bsCall, err := blackscholes.CallPrice(atm.S0, atm.E, atm.T, atm.Rf, atm.Sigma)
	require.NoError(t, err)
	assert.InEpsilon(t, bsCall.Value, call.Value, 0.01)
	assert.Less(t, call.StdErr, 0.05)

	put, err := atm.PutSimulation(e)
	require.NoError(t, err)
	bsPut, err := blackscholes.PutPrice(atm.S0, atm.E, atm.T, atm.Rf, atm.Sigma)
	require.NoError(t, err)
	assert.InEpsilon(t, bsPut.Value, put.Value, 0.01)
	t.Logf("call mc: %+v bs: %+v", call.Value, bsCall.Value)
}

func TestEngine_DeterministicForSeed(t *testing.T) {
	model := GBM{S0: 100, Drift: 0.05, Sigma: 0.2, T: 1}
	for _, workers := range []int{1, 3} {
		a, err := NewEngine(WithSeed(11), WithWorkers(workers)).Sample(model, nil, 5000)
		require.NoError(t, err)
		b, err := NewEngine(WithSeed(11), WithWorkers(workers)).Sample(model, nil, 5000)
		require.NoError(t, err)
		assert.Equal(t, a, b, "workers=%d", workers)
	}

	a, _ := NewEngine(WithSeed(1)).Sample(model, nil, 100)
	b, _ := NewEngine(WithSeed(2)).Sample(model, nil, 100)
	assert.NotEqual(t, a, b)
}

func TestEngine_InjectedSourceContinuesStream(t *testing.T) {
	model := GBM{S0: 1, Drift: 0, Sigma: 0.3, T: 1}
	e := NewEngine(WithSource(rand.NewSource(3)))
	first, err := e.Sample(model, nil, 10)
	require.NoError(t, err)
	second, err := e.Sample(model, nil, 10)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	replay, err := NewEngine(WithSource(rand.NewSource(3))).Sample(model, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, first, replay)
}

func TestEngine_DoesNotMutateParameters(t *testing.T) {
	model := Vasicek{R0: 0.1, Kappa: 0.3, Theta: 0.1, Sigma: 0.03, T: 1, Steps: 10}
	before := model
	_, err := NewEngine().Run(model, DiscountFactor, 100, PlainMean())
	require.NoError(t, err)
	assert.Equal(t, before, model)
}

func TestEngine_InvalidParameters(t *testing.T) {
	e := NewEngine()
	gbm := GBM{S0: 100, Drift: 0.05, Sigma: 0.2, T: 1}

	cases := map[string]struct {
		model      Model
		iterations int
		reduction  Reduction
	}{
		"zero iterations":     {gbm, 0, PlainMean()},
		"negative iterations": {gbm, -5, PlainMean()},
		"negative sigma":      {GBM{S0: 100, Sigma: -0.1, T: 1}, 10, PlainMean()},
		"zero horizon":        {GBM{S0: 100, Sigma: 0.2, T: 0}, 10, PlainMean()},
		"nan drift":           {GBM{S0: 100, Drift: math.NaN(), Sigma: 0.2, T: 1}, 10, PlainMean()},
		"confidence zero":     {gbm, 10, Percentile(0)},
		"confidence one":      {gbm, 10, Percentile(1)},
		"zero steps":          {Vasicek{Sigma: 0.1, T: 1}, 10, PlainMean()},
		"bad discount t":      {gbm, 10, DiscountedMean(0.05, 0)},
		"nil model":           {nil, 10, PlainMean()},
	}
	for name, c := range cases {
		_, err := e.Run(c.model, Identity, c.iterations, c.reduction)
		assert.True(t, errors.Is(err, failure.ErrInvalidParameter), "%s: %v", name, err)
	}
}

func TestEngine_ZeroVolatilityIsDeterministic(t *testing.T) {
	model := GBM{S0: 100, Drift: 0.05, Sigma: 0, T: 2}
	est, err := NewEngine().Run(model, Identity, 50, PlainMean())
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.1), est.Value, 1e-9)
	assert.InDelta(t, 0, est.StdErr, 1e-9)
}

func TestPercentileReduction(t *testing.T) {
	batch := Batch{5, 1, 4, 2, 3, 10, 9, 8, 7, 6}
	est, err := Percentile(0.9).Reduce(batch)
	require.NoError(t, err)
	assert.InDelta(t, 1, est.Value, 1e-12)
	assert.True(t, stat.Quantile(0.5, stat.LinInterp, batch, nil) == 5)

	est, err = Percentile(0.5).Reduce(Batch{4, 3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2, est.Value, 1e-12)
}

func TestDiscountedMeanReduction(t *testing.T) {
	est, err := DiscountedMean(0.05, 2).Reduce(Batch{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Exp(-0.1), est.Value, 1e-12)
	assert.InDelta(t, 2, est.Diagnostics["undiscounted"], 1e-12)

	_, err = PlainMean().Reduce(Batch{})
	assert.True(t, errors.Is(err, failure.ErrInvalidParameter))
}

func TestVasicek_PathAndIntegralAgree(t *testing.T) {
	model := Vasicek{R0: 0.1, Kappa: 0.3, Theta: 0.1, Sigma: 0.03, T: 1, Steps: 200}

	pathNormal := standardNormal(rand.NewSource(5))
	path := model.Path(pathNormal.Rand)
	require.Len(t, path, 201)
	assert.Equal(t, 0.1, path[0])

	sum := 0.0
	for _, r := range path {
		sum += r
	}
	integralNormal := standardNormal(rand.NewSource(5))
	assert.InDelta(t, sum*model.T/200, model.Terminal(integralNormal.Rand), 1e-12)
}

func TestVasicek_NoNoiseStaysAtMean(t *testing.T) {
	model := Vasicek{R0: 0.05, Kappa: 0.5, Theta: 0.05, Sigma: 0, T: 1, Steps: 10}
	integral := model.Terminal(func() float64 { return 1 })
	assert.InDelta(t, 0.05*1.1, integral, 1e-12)
}

func TestEngine_Normal(t *testing.T) {
	normal := NewEngine(WithSeed(9)).Normal()
	draws := make([]float64, 200000)
	for i := range draws {
		draws[i] = normal.Rand()
	}
	mean, std := stat.MeanStdDev(draws, nil)
	assert.InDelta(t, 0, mean, 0.01)
	assert.InDelta(t, 1, std, 0.01)

	again := NewEngine(WithSeed(9)).Normal()
	assert.Equal(t, draws[0], again.Rand())
}

func TestModel_Horizon(t *testing.T) {
	assert.Equal(t, 2.0, GBM{T: 2}.Horizon())
	assert.Equal(t, 0.5, Vasicek{T: 0.5}.Horizon())
}

/**
 * BenchmarkEngine_Call measures one 100k path call simulation.
 */
func BenchmarkEngine_Call(b *testing.B) {
	op := atm
	op.Iterations = 100000
	e := NewEngine(WithWorkers(4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = op.CallSimulation(e)
	}
}

func TestPercentile_EmpiricalCDFInterpolation(t *testing.T) {
	batch := Batch{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	est, err := Percentile(0.9).Reduce(batch)
	require.NoError(t, err)
	// numpy's default linear percentile would give 1.9
	assert.Equal(t, 1.0, est.Value)
}
