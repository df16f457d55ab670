package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/config"
	"github.com/charlerive/quantlib/logging"
	"github.com/charlerive/quantlib/marketdata"
	"github.com/charlerive/quantlib/montecarlo"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner{
		cfg:    cfg,
		logger: logger,
		source: newSource(cfg, logger),
	}
	if cfg.Print {
		r.out = os.Stdout
	}
	if failed := r.run(ctx); failed > 0 {
		logger.Error("scenarios failed", zap.Int("failed", failed))
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

func newSource(cfg *config.Config, logger *zap.Logger) marketdata.Source {
	switch cfg.Data.Source {
	case "csv":
		return marketdata.CSVFile{Dir: cfg.Data.Dir, DateLayout: cfg.Data.DateLayout}
	case "yahoo":
		return marketdata.Yahoo{Adjust: cfg.Data.Adjust, Logger: logger}
	default:
		return nil
	}
}

type runner struct {
	cfg    *config.Config
	logger *zap.Logger
	source marketdata.Source
	out    io.Writer // text reports, nil when only logging
}

// engine gives every scenario its own engine seeded from the config, so results
// do not depend on which scenarios ran before.
func (r *runner) engine() *montecarlo.Engine {
	return montecarlo.NewEngine(
		montecarlo.WithSeed(r.cfg.Seed),
		montecarlo.WithWorkers(r.cfg.Workers),
		montecarlo.WithLogger(r.logger),
	)
}

func (r *runner) run(ctx context.Context) int {
	scenarios := []struct {
		name string
		data bool
		run  func(context.Context) error
	}{
		{"black-scholes", false, r.blackScholes},
		{"monte-carlo-option", false, r.monteCarloOption},
		{"bonds", false, r.bonds},
		{"vasicek", false, r.vasicek},
		{"wiener", false, r.wienerProcess},
		{"value-at-risk", true, r.valueAtRisk},
		{"markowitz", true, r.portfolio},
	}
	failed := 0
	for _, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		if s.data && r.source == nil {
			r.logger.Info("skipping scenario without a data source", zap.String("scenario", s.name))
			continue
		}
		if err := s.run(ctx); err != nil {
			failed++
			r.logger.Error("scenario failed", zap.String("scenario", s.name), zap.Error(err))
		}
	}
	return failed
}
