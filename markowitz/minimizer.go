package markowitz

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"

	"github.com/charlerive/quantlib/failure"
)

// Problem is a bounded minimisation with equality constraints h(x) = 0.
type Problem struct {
	Objective func(x []float64) float64
	Init      []float64
	Lower     []float64
	Upper     []float64
	Equality  []func(x []float64) float64
}

func (p Problem) Validate() error {
	n := len(p.Init)
	if p.Objective == nil {
		return failure.Invalid("objective is required")
	}
	if n == 0 {
		return failure.Invalid("initial guess is empty")
	}
	if len(p.Lower) != n || len(p.Upper) != n {
		return failure.Invalid("bounds have %d/%d entries, want %d", len(p.Lower), len(p.Upper), n)
	}
	for i := range p.Init {
		if p.Lower[i] > p.Upper[i] {
			return failure.Invalid("bound %d: lower %v > upper %v", i, p.Lower[i], p.Upper[i])
		}
	}
	return nil
}

func (p Problem) clamp(dst, x []float64) []float64 {
	for i, v := range x {
		dst[i] = math.Max(p.Lower[i], math.Min(p.Upper[i], v))
	}
	return dst
}

// Minimizer is the constrained minimiser the optimiser delegates to.
type Minimizer interface {
	Minimize(p Problem) ([]float64, error)
}

const DefaultPenalty = 1e4

// GonumMinimizer solves Problem with Nelder-Mead over a penalised objective:
// x is clamped into its bounds before evaluation and both the bound violation and
// the equality residuals are charged quadratically.
type GonumMinimizer struct {
	Penalty  float64
	Settings *optimize.Settings
	Logger   *zap.Logger
}

func NewGonumMinimizer(logger *zap.Logger) *GonumMinimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GonumMinimizer{
		Penalty:  DefaultPenalty,
		Settings: &optimize.Settings{FuncEvaluations: 50000},
		Logger:   logger,
	}
}

func (g *GonumMinimizer) Minimize(p Problem) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	penalty := g.Penalty
	if penalty <= 0 {
		penalty = DefaultPenalty
	}
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	in := make([]float64, len(p.Init))
	pro := optimize.Problem{
		Func: func(x []float64) float64 {
			p.clamp(in, x)
			cost := 0.0
			for i := range x {
				d := x[i] - in[i]
				cost += d * d
			}
			for _, h := range p.Equality {
				r := h(in)
				cost += r * r
			}
			return p.Objective(in) + penalty*cost
		},
	}
	result, err := optimize.Minimize(pro, p.Init, g.Settings, &optimize.NelderMead{})
	if result == nil {
		return nil, failure.Degenerate("minimize: %v", err)
	}
	if err != nil {
		switch result.Status {
		case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
			logger.Warn("minimizer stopped early, keeping best point", zap.Stringer("status", result.Status), zap.Float64("f", result.F))
		default:
			return nil, failure.Degenerate("minimize: %v", err)
		}
	}
	logger.Debug("minimized",
		zap.Stringer("status", result.Status),
		zap.Int("evaluations", result.FuncEvaluations),
		zap.Float64("f", result.F),
	)
	if math.IsNaN(result.F) {
		return nil, failure.Degenerate("objective is NaN at the optimum")
	}
	return p.clamp(make([]float64, len(result.X)), result.X), nil
}
