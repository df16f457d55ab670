package montecarlo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/charlerive/quantlib/failure"
)

type ReductionKind int

const (
	KindDiscountedMean ReductionKind = iota + 1
	KindPlainMean
	KindPercentile
)

func (k ReductionKind) String() string {
	switch k {
	case KindDiscountedMean:
		return "discounted-mean"
	case KindPlainMean:
		return "plain-mean"
	case KindPercentile:
		return "percentile"
	default:
		return "unknown"
	}
}

// Batch is the ordered collection of payoffs drawn under one model.
type Batch []float64

// Estimate is the scalar a batch reduces to.
type Estimate struct {
	Value       float64            `json:"value"`
	StdErr      float64            `json:"std_err"` // zero for percentile reductions
	Iterations  int                `json:"iterations"`
	Kind        ReductionKind      `json:"kind"`
	Diagnostics map[string]float64 `json:"diagnostics,omitempty"`
}

// Reduction turns a batch into an Estimate.
type Reduction struct {
	Kind       ReductionKind
	Rate       float64 // discount rate, discounted-mean only
	T          float64 // discount horizon, discounted-mean only
	Confidence float64 // percentile only
}

// DiscountedMean exp(-rf*T) * mean(payoff)
func DiscountedMean(rf, t float64) Reduction {
	return Reduction{Kind: KindDiscountedMean, Rate: rf, T: t}
}

// PlainMean arithmetic mean of the batch.
func PlainMean() Reduction {
	return Reduction{Kind: KindPlainMean}
}

// Percentile picks the value at percentile (1-confidence)*100 of the sorted batch.
// The quantile is gonum's stat.LinInterp, which interpolates the empirical CDF
// between (i+1)/n points: on 1..10 at p=0.1 it gives 1 where numpy's default
// linear percentile gives 1.9. The two agree to within one order-statistic gap.
func Percentile(confidence float64) Reduction {
	return Reduction{Kind: KindPercentile, Confidence: confidence}
}

func (r Reduction) Validate() error {
	switch r.Kind {
	case KindDiscountedMean:
		if err := failure.Finite([]string{"rate", "t"}, r.Rate, r.T); err != nil {
			return err
		}
		if r.T <= 0 {
			return failure.Invalid("discount horizon must be > 0, got %v", r.T)
		}
	case KindPlainMean:
	case KindPercentile:
		if !(r.Confidence > 0 && r.Confidence < 1) {
			return failure.Invalid("confidence must be in (0,1), got %v", r.Confidence)
		}
	default:
		return failure.Invalid("unknown reduction kind %d", r.Kind)
	}
	return nil
}

// Reduce consumes the batch. Percentile sorts it in place.
func (r Reduction) Reduce(batch Batch) (Estimate, error) {
	if err := r.Validate(); err != nil {
		return Estimate{}, err
	}
	n := len(batch)
	if n == 0 {
		return Estimate{}, failure.Invalid("cannot reduce an empty batch")
	}
	est := Estimate{Iterations: n, Kind: r.Kind}

	switch r.Kind {
	case KindDiscountedMean, KindPlainMean:
		mean, std := stat.MeanStdDev(batch, nil)
		stdErr := 0.0
		if n > 1 {
			stdErr = std / math.Sqrt(float64(n))
		}
		if r.Kind == KindDiscountedMean {
			discount := math.Exp(-r.Rate * r.T)
			est.Diagnostics = map[string]float64{"undiscounted": mean, "discount": discount}
			mean *= discount
			stdErr *= discount
		}
		est.Value, est.StdErr = mean, stdErr
	case KindPercentile:
		sort.Float64s(batch)
		p := 1 - r.Confidence
		est.Value = stat.Quantile(p, stat.LinInterp, batch, nil)
		est.Diagnostics = map[string]float64{"p": p, "min": batch[0], "max": batch[n-1]}
	}
	return est, nil
}
