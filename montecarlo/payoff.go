package montecarlo

import "math"

// Payoff maps one terminal sample to a cash outcome.
type Payoff func(terminal float64) float64

// Identity passes the terminal value through, used for percentile based risk.
func Identity(x float64) float64 {
	return x
}

// CallPayoff max(S-E, 0)
func CallPayoff(strike float64) Payoff {
	return func(s float64) float64 {
		return math.Max(s-strike, 0)
	}
}

// PutPayoff max(E-S, 0)
func PutPayoff(strike float64) Payoff {
	return func(s float64) float64 {
		return math.Max(strike-s, 0)
	}
}

// DiscountFactor exp(-x), turns an integrated short rate into a present value factor.
func DiscountFactor(integral float64) float64 {
	return math.Exp(-integral)
}
