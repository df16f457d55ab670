package marketdata

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/charlerive/quantlib/failure"
)

// Period is the time unit return statistics are expressed in.
type Period int

const (
	Daily Period = iota + 1
	Annual
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Annual:
		return "annual"
	default:
		return "unknown"
	}
}

// Returns mean and standard deviation of returns per Period.
type Returns struct {
	Mu           float64 `json:"mu"`
	Sigma        float64 `json:"sigma"`
	Period       Period  `json:"period"`
	Observations int     `json:"observations"`
}

// Annualize scales daily statistics by the trading day count.
func (r Returns) Annualize(tradingDays int) (Returns, error) {
	if r.Period == Annual {
		return r, nil
	}
	if r.Period != Daily {
		return Returns{}, failure.Invalid("cannot annualize %s returns", r.Period)
	}
	if tradingDays <= 0 {
		return Returns{}, failure.Invalid("trading days must be > 0, got %d", tradingDays)
	}
	n := float64(tradingDays)
	return Returns{Mu: r.Mu * n, Sigma: r.Sigma * math.Sqrt(n), Period: Annual, Observations: r.Observations}, nil
}

// LogReturns ln(P_t / P_{t-1})
func LogReturns(prices []float64) ([]float64, error) {
	return transform(prices, func(prev, cur float64) float64 {
		return math.Log(cur / prev)
	})
}

// SimpleReturns P_t / P_{t-1} - 1
func SimpleReturns(prices []float64) ([]float64, error) {
	return transform(prices, func(prev, cur float64) float64 {
		return cur/prev - 1
	})
}

func transform(prices []float64, f func(prev, cur float64) float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, failure.Unavailable("%d prices, need at least 2", len(prices))
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			return nil, failure.Invalid("price at %d is not positive", i)
		}
		out[i-1] = f(prices[i-1], prices[i])
	}
	return out, nil
}

// Estimate uses the sample mean and the population standard deviation of returns.
func Estimate(returns []float64, period Period) (Returns, error) {
	if len(returns) < 2 {
		return Returns{}, failure.Unavailable("%d returns, need at least 2", len(returns))
	}
	if period != Daily && period != Annual {
		return Returns{}, failure.Invalid("unknown period %d", period)
	}
	mu, sigma := stat.PopMeanStdDev(returns, nil)
	return Returns{Mu: mu, Sigma: sigma, Period: period, Observations: len(returns)}, nil
}

// Frame holds aligned closing prices, one column per symbol.
type Frame struct {
	Symbols []string
	Prices  *mat.Dense
}

// Load fetches every symbol and truncates all series to the shortest one, keeping the latest bars.
func Load(ctx context.Context, src Source, symbols []string, start, end time.Time) (*Frame, error) {
	if len(symbols) == 0 {
		return nil, failure.Invalid("no symbols")
	}
	series := make([][]float64, len(symbols))
	rows := math.MaxInt32
	for i, symbol := range symbols {
		closes, err := src.Closes(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		series[i] = closes
		if len(closes) < rows {
			rows = len(closes)
		}
	}
	if rows < 2 {
		return nil, failure.Unavailable("aligned history has %d rows", rows)
	}
	prices := mat.NewDense(rows, len(symbols), nil)
	for j, closes := range series {
		offset := len(closes) - rows
		for i := 0; i < rows; i++ {
			prices.Set(i, j, closes[offset+i])
		}
	}
	return &Frame{Symbols: symbols, Prices: prices}, nil
}

// LogReturns one row per period, one column per symbol.
func (f *Frame) LogReturns() (*mat.Dense, error) {
	rows, cols := f.Prices.Dims()
	out := mat.NewDense(rows-1, cols, nil)
	for j := 0; j < cols; j++ {
		r, err := LogReturns(mat.Col(nil, j, f.Prices))
		if err != nil {
			return nil, errors.Wrap(err, f.Symbols[j])
		}
		out.SetCol(j, r)
	}
	return out, nil
}
