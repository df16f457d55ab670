package valueatrisk

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/montecarlo"
)

// PortfolioMonteCarlo draws correlated one-period asset returns from N(mean, cov),
// values the position as position*(1+w·r) and reports position minus the (1-c)
// percentile of those values.
func PortfolioMonteCarlo(src rand.Source, position, c float64, weights, mean []float64, cov mat.Symmetric, iterations int) (montecarlo.Estimate, error) {
	if err := failure.Finite([]string{"position", "confidence"}, position, c); err != nil {
		return montecarlo.Estimate{}, err
	}
	if iterations <= 0 {
		return montecarlo.Estimate{}, failure.Invalid("iterations must be > 0, got %d", iterations)
	}
	if len(weights) == 0 || len(weights) != len(mean) || cov.SymmetricDim() != len(mean) {
		return montecarlo.Estimate{}, failure.Invalid("weights, mean and covariance sizes differ: %d, %d, %d", len(weights), len(mean), cov.SymmetricDim())
	}
	reduction := montecarlo.Percentile(c)
	if err := reduction.Validate(); err != nil {
		return montecarlo.Estimate{}, err
	}
	normal, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return montecarlo.Estimate{}, failure.Degenerate("covariance is not positive definite")
	}

	values := make(montecarlo.Batch, iterations)
	r := make([]float64, len(mean))
	for i := range values {
		normal.Rand(r)
		values[i] = position * (1 + floats.Dot(weights, r))
	}
	est, err := reduction.Reduce(values)
	if err != nil {
		return montecarlo.Estimate{}, err
	}
	est.Diagnostics["percentile"] = est.Value
	est.Value = position - est.Value
	return est, nil
}
