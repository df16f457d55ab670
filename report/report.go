// Package report formats results as fixed-point text for printing and logging.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/montecarlo"
)

const MoneyPlaces int32 = 2

type line struct {
	Label string
	Text  string
}

// Report is an ordered list of labelled values.
type Report struct {
	Title string
	lines []line
}

func New(title string) *Report {
	return &Report{Title: title}
}

// Fixed rounds v half away from zero to places decimals. Non-finite values keep
// their float spelling.
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Money 924.5562 -> "924.56"
func Money(v float64) string {
	return Fixed(v, MoneyPlaces)
}

// Percent 0.0512 -> "5.12%"
func Percent(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Fixed(v, places)
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(places) + "%"
}

func (r *Report) add(label, text string) *Report {
	r.lines = append(r.lines, line{Label: label, Text: text})
	return r
}

func (r *Report) Money(label string, v float64) *Report {
	return r.add(label, Money(v))
}

func (r *Report) Number(label string, v float64, places int32) *Report {
	return r.add(label, Fixed(v, places))
}

func (r *Report) Percent(label string, v float64, places int32) *Report {
	return r.add(label, Percent(v, places))
}

func (r *Report) Text(label, text string) *Report {
	return r.add(label, text)
}

// Estimate prints the value with its standard error when the reduction has one.
func (r *Report) Estimate(label string, est montecarlo.Estimate) *Report {
	text := Money(est.Value)
	if est.StdErr > 0 {
		text += " ± " + Fixed(est.StdErr, 4)
	}
	return r.add(label, fmt.Sprintf("%s (%d draws)", text, est.Iterations))
}

// Fields renders the report as zap fields keyed by label.
func (r *Report) Fields() []zap.Field {
	fields := make([]zap.Field, 0, len(r.lines))
	for _, l := range r.lines {
		fields = append(fields, zap.String(l.Label, l.Text))
	}
	return fields
}

// WriteTo prints the title and one aligned "label: value" row per line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	if r.Title != "" {
		fmt.Fprintln(tw, r.Title)
	}
	for _, l := range r.lines {
		fmt.Fprintf(tw, "  %s:\t%s\n", l.Label, l.Text)
	}
	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
