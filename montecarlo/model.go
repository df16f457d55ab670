package montecarlo

import (
	"math"

	"github.com/charlerive/quantlib/failure"
)

// Model evolves one independent sample to its terminal value. draw yields standard normal variates.
type Model interface {
	Validate() error
	Horizon() float64
	Terminal(draw func() float64) float64
}

// EvolveGBM is the closed-form solution of geometric Brownian motion at time t for the variate z.
func EvolveGBM(s0, drift, sigma, t, z float64) float64 {
	return s0 * math.Exp((drift-0.5*sigma*sigma)*t+sigma*math.Sqrt(t)*z)
}

// GBM geometric Brownian motion, S_T = S0*exp((drift - sigma^2/2)*T + sigma*sqrt(T)*Z)
type GBM struct {
	S0    float64 `json:"s0"`    // initial value
	Drift float64 `json:"drift"` // risk-free rate for pricing, mean return for risk
	Sigma float64 `json:"sigma"` // volatility
	T     float64 `json:"t"`     // horizon
}

func (m GBM) Validate() error {
	if err := failure.Finite([]string{"s0", "drift", "sigma", "t"}, m.S0, m.Drift, m.Sigma, m.T); err != nil {
		return err
	}
	if m.Sigma < 0 {
		return failure.Invalid("gbm sigma must be >= 0, got %v", m.Sigma)
	}
	if m.T <= 0 {
		return failure.Invalid("gbm horizon must be > 0, got %v", m.T)
	}
	return nil
}

func (m GBM) Horizon() float64 {
	return m.T
}

func (m GBM) Terminal(draw func() float64) float64 {
	return EvolveGBM(m.S0, m.Drift, m.Sigma, m.T, draw())
}

// Vasicek mean-reverting short rate, discretised with Euler–Maruyama:
// r_{t+1} = r_t + kappa*(theta - r_t)*dt + sigma*sqrt(dt)*Z
type Vasicek struct {
	R0    float64 `json:"r0"`    // initial short rate
	Kappa float64 `json:"kappa"` // speed of mean reversion
	Theta float64 `json:"theta"` // long-run mean
	Sigma float64 `json:"sigma"` // volatility
	T     float64 `json:"t"`     // horizon in years
	Steps int     `json:"steps"` // points per path, excluding r0
}

func (m Vasicek) Validate() error {
	if err := failure.Finite([]string{"r0", "kappa", "theta", "sigma", "t"}, m.R0, m.Kappa, m.Theta, m.Sigma, m.T); err != nil {
		return err
	}
	if m.Sigma < 0 {
		return failure.Invalid("vasicek sigma must be >= 0, got %v", m.Sigma)
	}
	if m.T <= 0 {
		return failure.Invalid("vasicek horizon must be > 0, got %v", m.T)
	}
	if m.Steps <= 0 {
		return failure.Invalid("vasicek steps must be > 0, got %d", m.Steps)
	}
	return nil
}

func (m Vasicek) Horizon() float64 {
	return m.T
}

func (m Vasicek) dt() float64 {
	return m.T / float64(m.Steps)
}

// Path returns one simulated rate path of Steps+1 points starting at R0.
func (m Vasicek) Path(draw func() float64) []float64 {
	dt := m.dt()
	sqrtDt := math.Sqrt(dt)
	rates := make([]float64, m.Steps+1)
	rates[0] = m.R0
	for i := 1; i <= m.Steps; i++ {
		prev := rates[i-1]
		rates[i] = prev + m.Kappa*(m.Theta-prev)*dt + m.Sigma*sqrtDt*draw()
	}
	return rates
}

// Terminal is the integral of the rate path, dt * sum(r_0..r_steps).
func (m Vasicek) Terminal(draw func() float64) float64 {
	dt := m.dt()
	sqrtDt := math.Sqrt(dt)
	r, sum := m.R0, m.R0
	for i := 0; i < m.Steps; i++ {
		r += m.Kappa*(m.Theta-r)*dt + m.Sigma*sqrtDt*draw()
		sum += r
	}
	return sum * dt
}
