package blackscholes

import (
	"math"

	"github.com/charlerive/quantlib/failure"
)

// Black–Scholes model
// see wiki: https://en.wikipedia.org/wiki/Black%E2%80%93Scholes_model
type BSM struct {
	D     Direction `json:"direction"`     // c: call, p: put
	S     float64   `json:"subject_price"` // underlying price
	X     float64   `json:"strike_price"`  // strike
	T     float64   `json:"rest_time"`     // (expiry - now) / 365 days
	R     float64   `json:"price_rate"`    // risk-free rate
	Iv    float64   `json:"volatility"`    // annualised volatility
	Op    float64   `json:"option_price"`  // theoretical price at Iv
	D1    float64   `json:"d1"`
	Nd1   float64   `json:"nd1"` // standard normal density at d1
	D2    float64   `json:"d2"`
	Delta float64   `json:"delta"` // option price sensitivity to the underlying
	Gamma float64   `json:"gamma"` // delta sensitivity to the underlying
	Vega  float64   `json:"vega"`  // per 1% of volatility
	Theta float64   `json:"theta"` // per calendar day
	Rho   float64   `json:"rho"`   // per 1% of rate
}

// NewBSWithIv prices the option at volatility iv and fills in the greeks.
func NewBSWithIv(d Direction, S, X, T, r, iv float64) (*BSM, error) {
	price, err := OptionPrice(d, S, X, T, r, iv)
	if err != nil {
		return nil, err
	}
	bsm := &BSM{D: d, S: S, X: X, T: T, R: r, Iv: iv, Op: price.Value, D1: price.D1, D2: price.D2}
	bsm.calcNd1()
	bsm.calcDelta()
	bsm.calcGamma()
	bsm.calcVega()
	bsm.calcTheta()
	bsm.calcRho()
	return bsm, nil
}

// NewBS backs the volatility out of a quoted option price, then fills in the greeks.
func NewBS(d Direction, S, X, T, r, op, ivMin, ivMax float64) (*BSM, error) {
	iv, err := ImpliedVol(d, S, X, T, r, op, ivMin, ivMax)
	if err != nil {
		return nil, err
	}
	return NewBSWithIv(d, S, X, T, r, iv)
}

// ImpliedVol searches [ivMin, ivMax] for the volatility that reproduces op.
// Quotes outside the bracket clamp to its ends.
func ImpliedVol(d Direction, S, X, T, r, op, ivMin, ivMax float64) (float64, error) {
	if !(ivMin > 0 && ivMax > ivMin) {
		return 0, failure.Invalid("implied vol bracket must satisfy 0 < min < max, got [%v, %v]", ivMin, ivMax)
	}
	if d != Call && d != Put {
		return 0, failure.Invalid("unknown option direction %q", d)
	}
	if err := validate(S, X, T, r, ivMin); err != nil {
		return 0, err
	}
	opEpsilon := 0.000001
	if op < opEpsilon {
		return ivMin, nil
	}

	price := func(iv float64) float64 {
		volT := iv * math.Sqrt(T)
		d1 := (math.Log(S/X) + (r+iv*iv/2)*T) / volT
		d2 := d1 - volT
		if d == Call {
			return S*Cdf(d1) - X*math.Exp(-r*T)*Cdf(d2)
		}
		return X*math.Exp(-r*T)*Cdf(-d2) - S*Cdf(-d1)
	}

	opMax := price(ivMax)
	if op > opMax-opEpsilon {
		return ivMax, nil
	}
	opMin := price(ivMin)
	if op < opMin+opEpsilon {
		return ivMin, nil
	}

	// secant steps first, then plain bisection once the bracket is tight
	execCount := 0
	iv := (ivMax + ivMin) / 2
	cur := price(iv)
	for math.Abs(op-cur) > opEpsilon && execCount < MaxExecTimes {
		execCount++
		if cur < op {
			ivMin, opMin = iv, cur
		} else {
			ivMax, opMax = iv, cur
		}
		if execCount > 5 {
			iv = (ivMax + ivMin) / 2
		} else {
			iv = ivMin + (op-opMin)*(ivMax-ivMin)/(opMax-opMin)
		}
		cur = price(iv)
	}
	return iv, nil
}

func (bsm *BSM) calcNd1() {
	bsm.Nd1 = 1 / math.Sqrt(2*math.Pi) * math.Exp(-(bsm.D1 * bsm.D1 / 2))
}

func (bsm *BSM) calcDelta() {
	if bsm.D == Call {
		bsm.Delta = N(bsm.D1)
	} else {
		bsm.Delta = N(bsm.D1) - 1
	}
}

func (bsm *BSM) calcGamma() {
	bsm.Gamma = 1 / (bsm.S * bsm.Iv * math.Sqrt(bsm.T)) * bsm.Nd1
}

func (bsm *BSM) calcVega() {
	bsm.Vega = bsm.S * math.Sqrt(bsm.T) * bsm.Nd1 / 100
}

func (bsm *BSM) calcTheta() {
	decay := -bsm.S * bsm.Iv / (2 * math.Sqrt(bsm.T)) * bsm.Nd1
	carry := bsm.R * bsm.X * math.Exp(-bsm.R*bsm.T)
	if bsm.D == Call {
		bsm.Theta = (decay - carry*N(bsm.D2)) / 365
	} else {
		bsm.Theta = (decay + carry*N(-bsm.D2)) / 365
	}
}

func (bsm *BSM) calcRho() {
	if bsm.D == Call {
		bsm.Rho = bsm.T * bsm.X * math.Exp(-bsm.R*bsm.T) * N(bsm.D2) / 100
	} else {
		bsm.Rho = -bsm.T * bsm.X * math.Exp(-bsm.R*bsm.T) * N(-bsm.D2) / 100
	}
}
