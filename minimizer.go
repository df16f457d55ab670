package main

import (
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/failure"
	"github.com/charlerive/quantlib/markowitz"
)

// minimizers holds the optimisers this binary was built with, keyed by
// markowitz.minimizer. minimizer_nlopt.go adds "nlopt" under the nlopt tag.
var minimizers = map[string]func(*zap.Logger) markowitz.Minimizer{
	"gonum": func(logger *zap.Logger) markowitz.Minimizer {
		return markowitz.NewGonumMinimizer(logger)
	},
}

func newMinimizer(name string, logger *zap.Logger) (markowitz.Minimizer, error) {
	build, ok := minimizers[name]
	if !ok {
		return nil, failure.Invalid("minimizer %q is not built into this binary", name)
	}
	return build(logger), nil
}
