package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/plot"

	"github.com/charlerive/quantlib/blackscholes"
	"github.com/charlerive/quantlib/bond"
	"github.com/charlerive/quantlib/chart"
	"github.com/charlerive/quantlib/marketdata"
	"github.com/charlerive/quantlib/markowitz"
	"github.com/charlerive/quantlib/montecarlo"
	"github.com/charlerive/quantlib/report"
	"github.com/charlerive/quantlib/valueatrisk"
	"github.com/charlerive/quantlib/wiener"
)

func (r *runner) print(rep *report.Report) {
	r.logger.Info(rep.Title, rep.Fields()...)
	if r.out == nil {
		return
	}
	if _, err := rep.WriteTo(r.out); err != nil {
		r.logger.Warn("print report", zap.String("title", rep.Title), zap.Error(err))
	}
}

func (r *runner) save(p *plot.Plot, name string) error {
	if r.cfg.ChartDir == "" {
		return nil
	}
	file := filepath.Join(r.cfg.ChartDir, name)
	if err := chart.Save(p, file); err != nil {
		return errors.Wrapf(err, "save %s", file)
	}
	r.logger.Debug("chart saved", zap.String("file", file))
	return nil
}

func (r *runner) blackScholes(context.Context) error {
	o := r.cfg.Option
	call, err := blackscholes.CallPrice(o.S0, o.Strike, o.T, o.Rf, o.Sigma)
	if err != nil {
		return err
	}
	put, err := blackscholes.PutPrice(o.S0, o.Strike, o.T, o.Rf, o.Sigma)
	if err != nil {
		return err
	}
	// recover the volatility from the call price and report the greeks at it
	bsm, err := blackscholes.NewBS(blackscholes.Call, o.S0, o.Strike, o.T, o.Rf, call.Value, 0.01, 3)
	if err != nil {
		return err
	}
	r.print(report.New("black-scholes").
		Number("d1", call.D1, 4).
		Number("d2", call.D2, 4).
		Money("call", call.Value).
		Money("put", put.Value).
		Number("implied vol", bsm.Iv, 4).
		Number("delta", bsm.Delta, 4).
		Number("gamma", bsm.Gamma, 4).
		Number("vega", bsm.Vega, 4).
		Number("theta", bsm.Theta, 4).
		Number("rho", bsm.Rho, 4))
	return nil
}

func (r *runner) monteCarloOption(context.Context) error {
	o := r.cfg.Option
	op := montecarlo.OptionPricing{S0: o.S0, E: o.Strike, T: o.T, Rf: o.Rf, Sigma: o.Sigma, Iterations: o.Iterations}
	call, err := op.CallSimulation(r.engine())
	if err != nil {
		return err
	}
	put, err := op.PutSimulation(r.engine())
	if err != nil {
		return err
	}
	r.print(report.New("monte-carlo option").Estimate("call", call).Estimate("put", put))

	if r.cfg.ChartDir == "" {
		return nil
	}
	terminal, err := r.engine().Sample(montecarlo.GBM{S0: o.S0, Drift: o.Rf, Sigma: o.Sigma, T: o.T}, montecarlo.Identity, o.Iterations)
	if err != nil {
		return err
	}
	p, err := chart.Histogram("Terminal stock price", terminal, 50)
	if err != nil {
		return err
	}
	return r.save(p, "terminal_prices.png")
}

func (r *runner) bonds(context.Context) error {
	b := r.cfg.Bond
	zero, err := bond.ZeroCoupon{Principal: b.Principal, Maturity: float64(b.Maturity), InterestRate: b.InterestRate}.Price()
	if err != nil {
		return err
	}
	coupon := bond.Coupon{Principal: b.Principal, Rate: b.CouponRate, Maturity: b.Maturity, InterestRate: b.InterestRate}
	discrete, err := coupon.Price(false)
	if err != nil {
		return err
	}
	continuous, err := coupon.Price(true)
	if err != nil {
		return err
	}
	r.print(report.New("bonds").
		Money("zero coupon", zero).
		Money("coupon discrete", discrete).
		Money("coupon continuous", continuous))
	return nil
}

func (r *runner) vasicek(context.Context) error {
	v := r.cfg.Vasicek
	model := montecarlo.Vasicek{R0: v.R0, Kappa: v.Kappa, Theta: v.Theta, Sigma: v.Sigma, T: v.T, Steps: v.Steps}
	est, err := bond.VasicekPrice(r.engine(), v.Principal, model, v.Paths)
	if err != nil {
		return err
	}
	r.print(report.New("vasicek bond").
		Estimate("monte-carlo", est).
		Money("closed form", bond.VasicekClosedForm(v.Principal, model)))

	if r.cfg.ChartDir == "" {
		return nil
	}
	p, err := chart.Series("Vasicek short rate", "r(t)", model.Path(r.engine().Normal().Rand))
	if err != nil {
		return err
	}
	return r.save(p, "vasicek.png")
}

func (r *runner) wienerProcess(context.Context) error {
	w := r.cfg.Wiener
	path, err := wiener.Process{Dt: w.Dt, X0: w.X0, N: w.N}.Generate(rand.NewSource(r.cfg.Seed))
	if err != nil {
		return err
	}
	r.print(report.New("wiener").
		Number("W(T)", path.Values[len(path.Values)-1], 4).
		Number("T", path.Times[len(path.Times)-1], 1))

	p, err := chart.Paths("Wiener Process", path)
	if err != nil {
		return err
	}
	return r.save(p, "wiener.png")
}

func (r *runner) valueAtRisk(ctx context.Context) error {
	v := r.cfg.VaR
	start, end := r.cfg.VaRRange()
	closes, err := r.source.Closes(ctx, v.Symbol, start, end)
	if err != nil {
		return err
	}

	logs, err := marketdata.LogReturns(closes)
	if err != nil {
		return err
	}
	daily, err := marketdata.Estimate(logs, marketdata.Daily)
	if err != nil {
		return err
	}
	oneDay, err := valueatrisk.Parametric(v.Position, v.Confidence, daily)
	if err != nil {
		return err
	}
	year, err := valueatrisk.NDay(v.Position, v.Confidence, daily, valueatrisk.Horizon{N: float64(r.cfg.TradingDays), Period: marketdata.Daily})
	if err != nil {
		return err
	}

	simple, err := marketdata.SimpleReturns(closes)
	if err != nil {
		return err
	}
	pct, err := marketdata.Estimate(simple, marketdata.Daily)
	if err != nil {
		return err
	}
	mc, err := valueatrisk.MonteCarlo(r.engine(), v.Position, v.Confidence, pct, valueatrisk.Horizon{N: v.Days, Period: marketdata.Daily}, v.Iterations)
	if err != nil {
		return err
	}

	r.print(report.New("value at risk").
		Text("symbol", v.Symbol).
		Percent("confidence", v.Confidence, 1).
		Number("mu", daily.Mu, 6).
		Number("sigma", daily.Sigma, 6).
		Money("parametric 1 day", oneDay).
		Money("parametric 1 year", year).
		Estimate("monte-carlo", mc))
	return nil
}

func (r *runner) portfolio(ctx context.Context) error {
	m := r.cfg.Markowitz
	start, end := r.cfg.MarkowitzRange()
	frame, err := marketdata.Load(ctx, r.source, m.Symbols, start, end)
	if err != nil {
		return err
	}
	if r.cfg.ChartDir != "" {
		p, err := chart.Prices("Closing prices", frame.Symbols, frame.Prices)
		if err != nil {
			return err
		}
		if err := r.save(p, "prices.png"); err != nil {
			return err
		}
	}
	returns, err := frame.LogReturns()
	if err != nil {
		return err
	}
	portfolio, err := markowitz.New(frame.Symbols, returns, r.cfg.TradingDays)
	if err != nil {
		return err
	}
	all, err := portfolio.RandomPortfolios(m.Portfolios, rand.NewSource(r.cfg.Seed))
	if err != nil {
		return err
	}
	minimizer, err := newMinimizer(m.Minimizer, r.logger)
	if err != nil {
		return err
	}
	opt, err := portfolio.Optimize(minimizer, all[0].Weights)
	if err != nil {
		return err
	}

	rep := report.New("markowitz")
	for i, s := range frame.Symbols {
		rep.Percent(s, opt.Weights[i], 1)
	}
	rep.Percent("return", opt.Return, 2).
		Percent("volatility", opt.Volatility, 2).
		Number("sharpe", opt.Sharpe, 3)

	// one-day VaR of the optimal allocation
	cov := portfolio.Covariance()
	daily, err := valueatrisk.Portfolio(opt.Weights, portfolio.Mean(), cov, marketdata.Daily)
	if err != nil {
		return err
	}
	pv, err := valueatrisk.Parametric(r.cfg.VaR.Position, r.cfg.VaR.Confidence, daily)
	if err != nil {
		return err
	}
	mc, err := valueatrisk.PortfolioMonteCarlo(rand.NewSource(r.cfg.Seed), r.cfg.VaR.Position, r.cfg.VaR.Confidence, opt.Weights, portfolio.Mean(), cov, r.cfg.VaR.Iterations)
	if err != nil {
		return err
	}
	rep.Money("parametric VaR", pv).Estimate("monte-carlo VaR", mc)
	r.print(rep)

	p, err := chart.Portfolios("Portfolios", all, &opt)
	if err != nil {
		return err
	}
	return r.save(p, "portfolios.png")
}
