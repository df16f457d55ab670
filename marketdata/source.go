// Package marketdata adapts historical price sources and turns closing prices into
// return statistics.
package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markcheno/go-quote"
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/failure"
)

const DateLayout = "2006-01-02"

// Source returns the ordered closing prices of symbol between start and end.
type Source interface {
	Closes(ctx context.Context, symbol string, start, end time.Time) ([]float64, error)
}

// Yahoo downloads daily bars from Yahoo Finance.
type Yahoo struct {
	Adjust bool // adjusted closes
	Logger *zap.Logger
}

func (y Yahoo) Closes(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := quote.NewQuoteFromYahoo(symbol, start.Format(DateLayout), end.Format(DateLayout), quote.Daily, y.Adjust)
	if err != nil {
		return nil, failure.Unavailable("yahoo %s: %v", symbol, err)
	}
	if y.Logger != nil {
		y.Logger.Debug("yahoo quote", zap.String("symbol", symbol), zap.Int("bars", len(q.Close)))
	}
	return checked(symbol, q.Close)
}

// QuoteLayout is the date layout go-quote writes and assumes when none is given.
const QuoteLayout = "2006-01-02 15:04"

// CSVFile reads <Dir>/<symbol>.csv files in the go-quote csv layout:
// a header row, then date,open,high,low,close,volume. Dates are parsed with
// DateLayout, QuoteLayout when empty.
type CSVFile struct {
	Dir        string
	DateLayout string
}

func (c CSVFile) Closes(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout := c.DateLayout
	if layout == "" {
		layout = QuoteLayout
	}
	file := filepath.Join(c.Dir, symbol+".csv")
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, failure.Unavailable("csv %s: %v", symbol, err)
	}
	// the parser indexes six fields on every row after the header
	body := strings.TrimSpace(string(raw))
	for i, row := range strings.Split(body, "\n")[1:] {
		if n := strings.Count(row, ","); n != 5 {
			return nil, failure.Invalid("csv %s row %d: %d fields, want 6", symbol, i+1, n+1)
		}
	}
	q, err := quote.NewQuoteFromCSVDateFormat(symbol, body, layout)
	if err != nil {
		return nil, failure.Unavailable("csv %s: %v", symbol, err)
	}
	closes := make([]float64, 0, len(q.Close))
	for i, d := range q.Date {
		if d.IsZero() {
			return nil, failure.Invalid("csv %s row %d: date does not match layout %q", symbol, i+1, layout)
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		closes = append(closes, q.Close[i])
	}
	return checked(symbol, closes)
}

// Static serves prices held in memory, keyed by symbol. Dates are ignored.
type Static map[string][]float64

func (s Static) Closes(ctx context.Context, symbol string, start, end time.Time) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	closes, ok := s[symbol]
	if !ok {
		return nil, failure.Unavailable("no prices for %s", symbol)
	}
	out := make([]float64, len(closes))
	copy(out, closes)
	return checked(symbol, out)
}

// mean and deviation need at least two prices to produce one return
func checked(symbol string, closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, failure.Unavailable("%s: %d prices, need at least 2", symbol, len(closes))
	}
	return closes, nil
}
