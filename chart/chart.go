// Package chart renders simulation and portfolio results as PNG plots.
package chart

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/markowitz"
	"github.com/charlerive/quantlib/wiener"
)

var (
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
)

// Save writes the plot to file, the format taken from its extension.
func Save(p *plot.Plot, file string) error {
	return p.Save(Width, Height, file)
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range pts {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// Paths draws one line per Wiener path against its time axis.
func Paths(title string, paths ...wiener.Path) (*plot.Plot, error) {
	if len(paths) == 0 {
		return nil, failure.Invalid("no paths to plot")
	}
	p := newPlot(title, "Time (t)", "Wiener-process W(t)")
	for i, path := range paths {
		l, err := plotter.NewLine(xys(path.Times, path.Values))
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
	}
	return p, nil
}

// Series draws a line per value, against its index, e.g. a short-rate path.
func Series(title, y string, values []float64) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, failure.Invalid("no values to plot")
	}
	idx := make([]float64, len(values))
	for i := range idx {
		idx[i] = float64(i)
	}
	p := newPlot(title, "Step", y)
	l, err := plotter.NewLine(xys(idx, values))
	if err != nil {
		return nil, err
	}
	p.Add(l)
	return p, nil
}

// Prices draws every column of prices as a named line.
func Prices(title string, symbols []string, prices mat.Matrix) (*plot.Plot, error) {
	r, c := prices.Dims()
	if c != len(symbols) || r == 0 {
		return nil, failure.Invalid("prices are %dx%d for %d symbols", r, c, len(symbols))
	}
	p := newPlot(title, "Day", "Close")
	vs := make([]interface{}, 0, 2*c)
	col := make([]float64, r)
	idx := make([]float64, r)
	for i := range idx {
		idx[i] = float64(i)
	}
	for j, s := range symbols {
		vs = append(vs, s, xys(idx, mat.Col(col, j, prices)))
	}
	if err := plotutil.AddLines(p, vs...); err != nil {
		return nil, err
	}
	return p, nil
}

// Portfolios scatters volatility against return for every allocation and marks the
// optimum, if given, with a larger glyph.
func Portfolios(title string, allocations []markowitz.Allocation, optimum *markowitz.Allocation) (*plot.Plot, error) {
	if len(allocations) == 0 {
		return nil, failure.Invalid("no portfolios to plot")
	}
	p := newPlot(title, "Expected Volatility", "Expected Return")
	pts := make(plotter.XYs, len(allocations))
	for i, a := range allocations {
		pts[i].X, pts[i].Y = a.Volatility, a.Return
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)

	if optimum != nil {
		o, err := plotter.NewScatter(plotter.XYs{{X: optimum.Volatility, Y: optimum.Return}})
		if err != nil {
			return nil, err
		}
		o.GlyphStyle.Color = color.RGBA{G: 160, A: 255}
		o.GlyphStyle.Radius = vg.Points(8)
		o.GlyphStyle.Shape = draw.PyramidGlyph{}
		p.Add(o)
		p.Legend.Add("optimal", o)
	}
	return p, nil
}

// Histogram bins the values and overlays a normal density fitted to them.
func Histogram(title string, values []float64, bins int) (*plot.Plot, error) {
	if len(values) < 2 {
		return nil, failure.Invalid("need at least 2 values, got %d", len(values))
	}
	if bins <= 0 {
		return nil, failure.Invalid("bins must be > 0, got %d", bins)
	}
	p := newPlot(title, "Value", "Density")
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = plotutil.Color(6)
	p.Add(h)

	mean, std := stat.MeanStdDev(values, nil)
	if std > 0 {
		dist := distuv.Normal{Mu: mean, Sigma: std}
		norm := plotter.NewFunction(dist.Prob)
		norm.Color = color.RGBA{R: 255, A: 255}
		norm.Width = vg.Points(2)
		p.Add(norm)
	}
	return p, nil
}
