// Package markowitz computes mean-variance statistics of weighted portfolios and
// searches for the weights with the highest Sharpe ratio.
package markowitz

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/charlerive/quantlib/failure"
)

const DefaultTradingDays = 252

// Statistics of one allocation, annualised.
type Statistics struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

type Allocation struct {
	Weights []float64 `json:"weights"`
	Statistics
}

// Portfolio holds the per-period mean and covariance of a set of assets.
type Portfolio struct {
	Symbols     []string
	TradingDays int

	mean []float64
	cov  *mat.SymDense
}

// New estimates the moments from a returns matrix, one row per observation and one
// column per symbol. The covariance is the unbiased sample covariance.
func New(symbols []string, returns mat.Matrix, tradingDays int) (*Portfolio, error) {
	r, c := returns.Dims()
	if c != len(symbols) {
		return nil, failure.Invalid("returns have %d columns for %d symbols", c, len(symbols))
	}
	if r < 2 {
		return nil, failure.Unavailable("need at least 2 observations, got %d", r)
	}
	mean := make([]float64, c)
	col := make([]float64, r)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(col, j, returns), nil)
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, returns, nil)
	return NewFromMoments(symbols, mean, &cov, tradingDays)
}

// NewFromMoments builds a portfolio from per-period moments already estimated.
func NewFromMoments(symbols []string, mean []float64, cov *mat.SymDense, tradingDays int) (*Portfolio, error) {
	n := len(symbols)
	if n == 0 {
		return nil, failure.Invalid("portfolio has no symbols")
	}
	if len(mean) != n || cov.SymmetricDim() != n {
		return nil, failure.Invalid("moments sized %d/%d for %d symbols", len(mean), cov.SymmetricDim(), n)
	}
	if tradingDays <= 0 {
		return nil, failure.Invalid("trading days must be > 0, got %d", tradingDays)
	}
	if err := failure.Finite(nil, mean...); err != nil {
		return nil, err
	}
	return &Portfolio{
		Symbols:     symbols,
		TradingDays: tradingDays,
		mean:        append([]float64(nil), mean...),
		cov:         copySym(cov),
	}, nil
}

func (p *Portfolio) Len() int {
	return len(p.Symbols)
}

// Mean per-period mean returns.
func (p *Portfolio) Mean() []float64 {
	return append([]float64(nil), p.mean...)
}

// Covariance per-period covariance.
func (p *Portfolio) Covariance() *mat.SymDense {
	return copySym(p.cov)
}

func copySym(a mat.Symmetric) *mat.SymDense {
	c := mat.NewSymDense(a.SymmetricDim(), nil)
	c.CopySym(a)
	return c
}

// AnnualMean mean * trading days
func (p *Portfolio) AnnualMean() []float64 {
	m := p.Mean()
	floats.Scale(float64(p.TradingDays), m)
	return m
}

// AnnualCovariance covariance * trading days
func (p *Portfolio) AnnualCovariance() *mat.SymDense {
	c := p.Covariance()
	c.ScaleSym(float64(p.TradingDays), c)
	return c
}

// Statistics return = sum(mean*w)*days, volatility = sqrt(w' cov*days w), sharpe = return/volatility.
// A zero volatility gives an infinite Sharpe ratio with the sign of the return.
func (p *Portfolio) Statistics(weights []float64) (Statistics, error) {
	if len(weights) != p.Len() {
		return Statistics{}, failure.Invalid("got %d weights for %d symbols", len(weights), p.Len())
	}
	if err := failure.Finite(nil, weights...); err != nil {
		return Statistics{}, err
	}
	return p.statistics(weights), nil
}

func (p *Portfolio) statistics(weights []float64) Statistics {
	days := float64(p.TradingDays)
	w := mat.NewVecDense(len(weights), weights)
	ret := floats.Dot(p.mean, weights) * days
	vol := math.Sqrt(math.Max(0, mat.Inner(w, p.cov, w)*days))
	var sharpe float64
	switch {
	case vol > 0:
		sharpe = ret / vol
	case ret > 0:
		sharpe = math.Inf(1)
	case ret < 0:
		sharpe = math.Inf(-1)
	}
	return Statistics{Return: ret, Volatility: vol, Sharpe: sharpe}
}

// NegativeSharpe is the objective handed to the minimiser.
func (p *Portfolio) NegativeSharpe(weights []float64) float64 {
	return -p.statistics(weights).Sharpe
}

// RandomPortfolios draws n allocations with uniform weights normalised to sum to one.
func (p *Portfolio) RandomPortfolios(n int, src rand.Source) ([]Allocation, error) {
	if n <= 0 {
		return nil, failure.Invalid("portfolio count must be > 0, got %d", n)
	}
	rnd := rand.New(src)
	out := make([]Allocation, n)
	for i := range out {
		w := make([]float64, p.Len())
		for j := range w {
			w[j] = rnd.Float64()
		}
		if s := floats.Sum(w); s > 0 {
			floats.Scale(1/s, w)
		} else {
			floats.AddConst(1/float64(len(w)), w)
		}
		out[i] = Allocation{Weights: w, Statistics: p.statistics(w)}
	}
	return out, nil
}

// Best returns the allocation with the highest Sharpe ratio.
func Best(allocations []Allocation) (Allocation, bool) {
	if len(allocations) == 0 {
		return Allocation{}, false
	}
	best := allocations[0]
	for _, a := range allocations[1:] {
		if a.Sharpe > best.Sharpe {
			best = a
		}
	}
	return best, true
}

// Optimize maximises the Sharpe ratio over long-only weights that sum to one,
// starting from x0.
func (p *Portfolio) Optimize(m Minimizer, x0 []float64) (Allocation, error) {
	n := p.Len()
	if len(x0) != n {
		return Allocation{}, failure.Invalid("got %d initial weights for %d symbols", len(x0), n)
	}
	lower, upper := make([]float64, n), make([]float64, n)
	floats.AddConst(1, upper)
	x, err := m.Minimize(Problem{
		Objective: p.NegativeSharpe,
		Init:      x0,
		Lower:     lower,
		Upper:     upper,
		Equality: []func([]float64) float64{
			func(x []float64) float64 { return floats.Sum(x) - 1 },
		},
	})
	if err != nil {
		return Allocation{}, err
	}
	sum := floats.Sum(x)
	if !(sum > 0) {
		return Allocation{}, failure.Degenerate("optimal weights sum to %v", sum)
	}
	floats.Scale(1/sum, x)
	return Allocation{Weights: x, Statistics: p.statistics(x)}, nil
}
