//go:build nlopt

package markowitz

import (
	"github.com/go-nlopt/nlopt"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/charlerive/quantlib/failure"
)

// NLoptMinimizer runs SLSQP from libnlopt. Gradients are central finite differences.
type NLoptMinimizer struct {
	XtolRel float64
	MaxEval int
	Tol     float64 // equality constraint tolerance
}

func NewNLoptMinimizer() *NLoptMinimizer {
	return &NLoptMinimizer{XtolRel: 1e-10, MaxEval: 2000, Tol: 1e-9}
}

func withGradient(f func([]float64) float64) nlopt.Func {
	settings := &fd.Settings{Formula: fd.Central}
	return func(x, gradient []float64) float64 {
		if len(gradient) > 0 {
			fd.Gradient(gradient, f, x, settings)
		}
		return f(x)
	}
}

func (m *NLoptMinimizer) Minimize(p Problem) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(len(p.Init)))
	if err != nil {
		return nil, failure.Degenerate("nlopt: %v", err)
	}
	defer opt.Destroy()

	if err = opt.SetMinObjective(withGradient(p.Objective)); err != nil {
		return nil, failure.Degenerate("nlopt objective: %v", err)
	}
	if err = opt.SetLowerBounds(p.Lower); err != nil {
		return nil, failure.Invalid("nlopt lower bounds: %v", err)
	}
	if err = opt.SetUpperBounds(p.Upper); err != nil {
		return nil, failure.Invalid("nlopt upper bounds: %v", err)
	}
	for _, h := range p.Equality {
		if err = opt.AddEqualityConstraint(withGradient(h), m.Tol); err != nil {
			return nil, failure.Degenerate("nlopt constraint: %v", err)
		}
	}
	_ = opt.SetXtolRel(m.XtolRel)
	_ = opt.SetMaxEval(m.MaxEval)

	x, _, err := opt.Optimize(append([]float64(nil), p.Init...))
	if err != nil {
		return nil, failure.Degenerate("nlopt: %v", err)
	}
	return x, nil
}
