// Package valueatrisk estimates the loss of a position not expected to be exceeded
// at a confidence level, in closed form and by Monte-Carlo.
package valueatrisk

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/marketdata"
	"github.com/charlerive/quantlib/montecarlo"
)

// Horizon is N periods of Period. It must be expressed in the same unit as the
// return statistics it is applied to.
type Horizon struct {
	N      float64           `json:"n"`
	Period marketdata.Period `json:"period"`
}

// OneDay is the default horizon for daily statistics.
var OneDay = Horizon{N: 1, Period: marketdata.Daily}

func (h Horizon) check(r marketdata.Returns) error {
	if err := failure.Finite([]string{"n"}, h.N); err != nil {
		return err
	}
	if h.N <= 0 {
		return failure.Invalid("horizon must be > 0, got %v", h.N)
	}
	if h.Period != r.Period {
		return failure.Invalid("horizon is in %s periods but returns are %s", h.Period, r.Period)
	}
	return nil
}

func checkInputs(position, c float64, r marketdata.Returns) error {
	if err := failure.Finite([]string{"position", "confidence", "mu", "sigma"}, position, c, r.Mu, r.Sigma); err != nil {
		return err
	}
	if !(c > 0 && c < 1) {
		return failure.Invalid("confidence must be in (0,1), got %v", c)
	}
	if r.Sigma < 0 {
		return failure.Invalid("sigma must be >= 0, got %v", r.Sigma)
	}
	return nil
}

// Z is the standard normal quantile at 1-c.
func Z(c float64) float64 {
	return distuv.UnitNormal.Quantile(1 - c)
}

// Parametric VaR over one period of r.Period: position * (mu - sigma*z)
func Parametric(position, c float64, r marketdata.Returns) (float64, error) {
	return NDay(position, c, r, Horizon{N: 1, Period: r.Period})
}

// NDay VaR: position * (mu*n - sigma*sqrt(n)*z)
func NDay(position, c float64, r marketdata.Returns, h Horizon) (float64, error) {
	if err := checkInputs(position, c, r); err != nil {
		return 0, err
	}
	if err := h.check(r); err != nil {
		return 0, err
	}
	return position * (r.Mu*h.N - r.Sigma*math.Sqrt(h.N)*Z(c)), nil
}

// MonteCarlo evolves the position under GBM with the return statistics and reports
// position minus the (1-c) percentile of the simulated values.
func MonteCarlo(e *montecarlo.Engine, position, c float64, r marketdata.Returns, h Horizon, iterations int) (montecarlo.Estimate, error) {
	if err := checkInputs(position, c, r); err != nil {
		return montecarlo.Estimate{}, err
	}
	if err := h.check(r); err != nil {
		return montecarlo.Estimate{}, err
	}
	model := montecarlo.GBM{S0: position, Drift: r.Mu, Sigma: r.Sigma, T: h.N}
	est, err := e.Run(model, montecarlo.Identity, iterations, montecarlo.Percentile(c))
	if err != nil {
		return montecarlo.Estimate{}, err
	}
	est.Diagnostics["percentile"] = est.Value
	est.Value = position - est.Value
	return est, nil
}

// Portfolio combines per-asset mean returns and their covariance into the return
// statistics of a weighted portfolio: mu = w·mean, sigma = sqrt(w' Σ w).
func Portfolio(weights, mean []float64, cov mat.Symmetric, period marketdata.Period) (marketdata.Returns, error) {
	n := len(weights)
	if n == 0 || len(mean) != n || cov.SymmetricDim() != n {
		return marketdata.Returns{}, failure.Invalid("weights, mean and covariance sizes differ: %d, %d, %d", n, len(mean), cov.SymmetricDim())
	}
	w := mat.NewVecDense(n, weights)
	mu := mat.Dot(w, mat.NewVecDense(n, mean))
	variance := mat.Inner(w, cov, w)
	if variance < 0 {
		return marketdata.Returns{}, failure.Invalid("covariance is not positive semi-definite, w'Σw=%v", variance)
	}
	return marketdata.Returns{Mu: mu, Sigma: math.Sqrt(variance), Period: period}, nil
}
