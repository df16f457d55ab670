package montecarlo

// OptionPricing prices European options by simulating the terminal stock price under
// the risk-neutral GBM and discounting the mean payoff.
type OptionPricing struct {
	S0         float64 `json:"s0"`         // underlying price at t=0
	E          float64 `json:"strike"`     // strike
	T          float64 `json:"t"`          // expiry in years
	Rf         float64 `json:"rf"`         // risk-free rate
	Sigma      float64 `json:"sigma"`      // volatility of the underlying
	Iterations int     `json:"iterations"` // simulated paths
}

func (op OptionPricing) model() GBM {
	return GBM{S0: op.S0, Drift: op.Rf, Sigma: op.Sigma, T: op.T}
}

func (op OptionPricing) CallSimulation(e *Engine) (Estimate, error) {
	return e.Run(op.model(), CallPayoff(op.E), op.Iterations, DiscountedMean(op.Rf, op.T))
}

func (op OptionPricing) PutSimulation(e *Engine) (Estimate, error) {
	return e.Run(op.model(), PutPayoff(op.E), op.Iterations, DiscountedMean(op.Rf, op.T))
}
