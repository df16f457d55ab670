// Package wiener simulates standard Brownian motion on an evenly spaced grid.
package wiener

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charlerive/quantlib/failure"
)

// Process is W(t) sampled N times with step Dt, the time axis starting at X0.
type Process struct {
	Dt float64 `json:"dt"`
	X0 float64 `json:"x0"`
	N  int     `json:"n"`
}

// Path holds N+1 points, Values[0] is always 0.
type Path struct {
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

func (p Process) Validate() error {
	if err := failure.Finite([]string{"dt", "x0"}, p.Dt, p.X0); err != nil {
		return err
	}
	if p.Dt <= 0 {
		return failure.Invalid("dt must be > 0, got %v", p.Dt)
	}
	if p.N <= 0 {
		return failure.Invalid("n must be > 0, got %d", p.N)
	}
	return nil
}

// Generate draws one path. Each step adds an independent N(0, dt) increment.
func (p Process) Generate(src rand.Source) (Path, error) {
	if err := p.Validate(); err != nil {
		return Path{}, err
	}
	step := distuv.Normal{Mu: 0, Sigma: math.Sqrt(p.Dt), Src: src}

	values := make([]float64, p.N+1)
	for i := 1; i <= p.N; i++ {
		values[i] = values[i-1] + step.Rand()
	}
	times := make([]float64, p.N+1)
	floats.Span(times, p.X0, float64(p.N))
	return Path{Times: times, Values: values}, nil
}

// Increments returns W(t+1)-W(t) for every step of the path.
func (p Path) Increments() []float64 {
	if len(p.Values) < 2 {
		return nil
	}
	inc := make([]float64, len(p.Values)-1)
	floats.SubTo(inc, p.Values[1:], p.Values[:len(p.Values)-1])
	return inc
}

func (p Path) Len() int {
	return len(p.Values)
}
