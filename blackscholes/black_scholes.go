package blackscholes

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charlerive/quantlib/failure"
)

const MaxExecTimes = 100

type Direction string

const (
	Call Direction = "c"
	Put  Direction = "p"
)

// Price closed-form option value together with the auxiliary terms d1 and d2.
type Price struct {
	D1    float64 `json:"d1"`
	D2    float64 `json:"d2"`
	Value float64 `json:"value"`
}

// D1D2 d1 = (ln(S/E) + (rf + sigma^2/2)*T) / (sigma*sqrt(T)), d2 = d1 - sigma*sqrt(T)
func D1D2(S, E, T, rf, sigma float64) (d1, d2 float64, err error) {
	if err = validate(S, E, T, rf, sigma); err != nil {
		return 0, 0, err
	}
	volT := sigma * math.Sqrt(T)
	d1 = (math.Log(S/E) + (rf+sigma*sigma/2)*T) / volT
	d2 = d1 - volT
	return d1, d2, nil
}

// CallPrice S*N(d1) - E*exp(-rf*T)*N(d2)
func CallPrice(S, E, T, rf, sigma float64) (Price, error) {
	d1, d2, err := D1D2(S, E, T, rf, sigma)
	if err != nil {
		return Price{}, err
	}
	return Price{D1: d1, D2: d2, Value: S*N(d1) - E*math.Exp(-rf*T)*N(d2)}, nil
}

// PutPrice E*exp(-rf*T)*N(-d2) - S*N(-d1)
func PutPrice(S, E, T, rf, sigma float64) (Price, error) {
	d1, d2, err := D1D2(S, E, T, rf, sigma)
	if err != nil {
		return Price{}, err
	}
	return Price{D1: d1, D2: d2, Value: E*math.Exp(-rf*T)*N(-d2) - S*N(-d1)}, nil
}

// OptionPrice dispatches on direction.
func OptionPrice(d Direction, S, E, T, rf, sigma float64) (Price, error) {
	switch d {
	case Call:
		return CallPrice(S, E, T, rf, sigma)
	case Put:
		return PutPrice(S, E, T, rf, sigma)
	default:
		return Price{}, failure.Invalid("unknown option direction %q", d)
	}
}

// zero volatility or zero time collapses sigma*sqrt(T) to zero and d1 divides by it
func validate(S, E, T, rf, sigma float64) error {
	if err := failure.Finite([]string{"S", "E", "T", "rf", "sigma"}, S, E, T, rf, sigma); err != nil {
		return err
	}
	if S <= 0 || E <= 0 {
		return failure.Invalid("underlying and strike must be > 0, got S=%v E=%v", S, E)
	}
	if T < 0 || sigma < 0 {
		return failure.Invalid("expiry and volatility must be >= 0, got T=%v sigma=%v", T, sigma)
	}
	if T == 0 || sigma == 0 {
		return failure.Degenerate("sigma*sqrt(T) is zero, T=%v sigma=%v", T, sigma)
	}
	return nil
}

// N standard normal cumulative distribution function
func N(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

/**
 * cumulative normal distribution function, five term polynomial approximation
 * (absolute error below 7.5e-8), cheaper than N inside the implied vol search
 */
func Cdf(x float64) float64 {
	a := []float64{0.31938153, -0.356563782, 1.781477937, -1.821255978, 1.330274429}
	l := math.Abs(x)
	k := 1 / (1 + 0.2316419*l)
	res := 1 - 1/math.Sqrt(2*math.Pi)*math.Exp(-l*l/2)*(a[0]*k+a[1]*math.Pow(k, 2)+a[2]*math.Pow(k, 3)+a[3]*math.Pow(k, 4)+a[4]*math.Pow(k, 5))
	if x < 0 {
		res = 1 - res
	}
	return res
}
