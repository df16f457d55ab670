// Package bond prices zero-coupon and coupon bonds by discounting their cash flows,
// and bonds under a Vasicek short rate by Monte-Carlo.
package bond

import (
	"math"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/montecarlo"
)

// ZeroCoupon pays Principal once at Maturity (in periods).
type ZeroCoupon struct {
	Principal    float64 `json:"principal"`
	Maturity     float64 `json:"maturity"`
	InterestRate float64 `json:"interest_rate"` // market rate per period
}

// PresentValue x / (1+rate)^n
func (b ZeroCoupon) PresentValue(x, n float64) float64 {
	return x / math.Pow(1+b.InterestRate, n)
}

func (b ZeroCoupon) Price() (float64, error) {
	if err := failure.Finite([]string{"principal", "maturity", "interest_rate"}, b.Principal, b.Maturity, b.InterestRate); err != nil {
		return 0, err
	}
	if b.Maturity < 0 {
		return 0, failure.Invalid("maturity must be >= 0, got %v", b.Maturity)
	}
	if b.InterestRate <= -1 {
		return 0, failure.Invalid("interest rate must be > -1, got %v", b.InterestRate)
	}
	return b.PresentValue(b.Principal, b.Maturity), nil
}

// Coupon pays Principal*Rate at the end of every period 1..Maturity and Principal at Maturity.
type Coupon struct {
	Principal    float64 `json:"principal"`
	Rate         float64 `json:"rate"` // coupon rate
	Maturity     int     `json:"maturity"`
	InterestRate float64 `json:"interest_rate"` // market rate per period
}

func (b Coupon) presentValue(x float64, n int) float64 {
	return x / math.Pow(1+b.InterestRate, float64(n))
}

func (b Coupon) contPresentValue(x float64, n int) float64 {
	return x * math.Exp(-b.InterestRate*float64(n))
}

// Price discounts every cash flow, with exp(-r*t) factors when continuous is set.
func (b Coupon) Price(continuous bool) (float64, error) {
	if err := failure.Finite([]string{"principal", "rate", "interest_rate"}, b.Principal, b.Rate, b.InterestRate); err != nil {
		return 0, err
	}
	if b.Maturity < 0 {
		return 0, failure.Invalid("maturity must be >= 0, got %d", b.Maturity)
	}
	if !continuous && b.InterestRate <= -1 {
		return 0, failure.Invalid("interest rate must be > -1, got %v", b.InterestRate)
	}

	discount := b.presentValue
	if continuous {
		discount = b.contPresentValue
	}
	coupon := b.Principal * b.Rate
	price := 0.0
	for t := 1; t <= b.Maturity; t++ {
		price += discount(coupon, t)
	}
	return price + discount(b.Principal, b.Maturity), nil
}

// VasicekPrice prices a zero-coupon bond paying principal at model.T as
// principal * mean(exp(-integral of r over each simulated path)).
func VasicekPrice(e *montecarlo.Engine, principal float64, model montecarlo.Vasicek, paths int) (montecarlo.Estimate, error) {
	if err := failure.Finite([]string{"principal"}, principal); err != nil {
		return montecarlo.Estimate{}, err
	}
	est, err := e.Run(model, montecarlo.DiscountFactor, paths, montecarlo.PlainMean())
	if err != nil {
		return montecarlo.Estimate{}, err
	}
	est.Value *= principal
	est.StdErr *= principal
	return est, nil
}

// VasicekClosedForm is the analytic Vasicek zero-coupon price, used to check the simulation.
func VasicekClosedForm(principal float64, m montecarlo.Vasicek) float64 {
	if m.Kappa == 0 {
		return principal * math.Exp(-m.R0*m.T+m.Sigma*m.Sigma*m.T*m.T*m.T/6)
	}
	b := (1 - math.Exp(-m.Kappa*m.T)) / m.Kappa
	a := (m.Theta-m.Sigma*m.Sigma/(2*m.Kappa*m.Kappa))*(b-m.T) - m.Sigma*m.Sigma*b*b/(4*m.Kappa)
	return principal * math.Exp(a-b*m.R0)
}
