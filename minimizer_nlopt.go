//go:build nlopt

package main

import (
	"go.uber.org/zap"

	"github.com/charlerive/quantlib/markowitz"
)

func init() {
	minimizers["nlopt"] = func(*zap.Logger) markowitz.Minimizer {
		return markowitz.NewNLoptMinimizer()
	}
}
