// Package montecarlo draws independent samples under a stochastic model, maps them
// through a payoff and reduces the batch to a single estimate.
package montecarlo

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/charlerive/quantlib/failure"
)

const (
	// DefaultSeed seeds engines built without WithSeed or WithSource.
	DefaultSeed uint64 = 42
	// golden ratio increment, spreads worker seeds across the source state space
	seedStride uint64 = 0x9E3779B97F4A7C15
	// below this many iterations per worker the goroutines cost more than they save
	minChunk = 1000
)

// Engine is the Monte-Carlo valuation engine. The zero value is not usable, see NewEngine.
type Engine struct {
	seed    uint64
	src     rand.Source
	workers int
	logger  *zap.Logger
}

type Option func(*Engine)

// WithSeed makes every call start from the same seed, so repeated runs are identical.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.src = nil
	}
}

// WithSource injects a generator. Successive runs continue its stream.
func WithSource(src rand.Source) Option {
	return func(e *Engine) {
		e.src = src
	}
}

// WithWorkers samples on n goroutines. Each worker owns a source derived from the seed.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		seed:    DefaultSeed,
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run samples iterations payoffs under model and reduces them. Partial batches are never reduced.
func (e *Engine) Run(model Model, payoff Payoff, iterations int, reduction Reduction) (Estimate, error) {
	if err := reduction.Validate(); err != nil {
		return Estimate{}, err
	}
	start := time.Now()
	batch, err := e.Sample(model, payoff, iterations)
	if err != nil {
		return Estimate{}, err
	}
	est, err := reduction.Reduce(batch)
	if err != nil {
		return Estimate{}, err
	}
	e.logger.Debug("monte carlo run",
		zap.Stringer("reduction", reduction.Kind),
		zap.Float64("horizon", model.Horizon()),
		zap.Int("iterations", iterations),
		zap.Int("workers", e.workers),
		zap.Float64("value", est.Value),
		zap.Float64("std_err", est.StdErr),
		zap.Duration("elapsed", time.Since(start)),
	)
	return est, nil
}

// Sample draws iterations independent terminal values under model and applies payoff to each.
func (e *Engine) Sample(model Model, payoff Payoff, iterations int) (Batch, error) {
	if model == nil {
		return nil, failure.Invalid("model is required")
	}
	if payoff == nil {
		payoff = Identity
	}
	if iterations <= 0 {
		return nil, failure.Invalid("iterations must be > 0, got %d", iterations)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	batch := make(Batch, iterations)
	sources := e.sources(e.workerCount(iterations))
	if len(sources) == 1 {
		fill(batch, model, payoff, sources[0])
		return batch, nil
	}

	chunk := (iterations + len(sources) - 1) / len(sources)
	var wg sync.WaitGroup
	for w, src := range sources {
		lo := w * chunk
		if lo >= iterations {
			break
		}
		hi := lo + chunk
		if hi > iterations {
			hi = iterations
		}
		wg.Add(1)
		go func(part Batch, src rand.Source) {
			defer wg.Done()
			fill(part, model, payoff, src)
		}(batch[lo:hi], src)
	}
	wg.Wait()
	return batch, nil
}

// Normal returns a standard normal distribution bound to the engine's source.
func (e *Engine) Normal() distuv.Normal {
	return standardNormal(e.sources(1)[0])
}

func (e *Engine) workerCount(iterations int) int {
	w := e.workers
	if limit := iterations / minChunk; w > limit {
		w = limit
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (e *Engine) sources(n int) []rand.Source {
	base := e.seed
	if e.src != nil {
		if n == 1 {
			return []rand.Source{e.src}
		}
		base = e.src.Uint64()
	}
	out := make([]rand.Source, n)
	for i := range out {
		out[i] = rand.NewSource(base + uint64(i)*seedStride)
	}
	return out
}

func standardNormal(src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: src}
}

func fill(part Batch, model Model, payoff Payoff, src rand.Source) {
	draw := standardNormal(src).Rand
	for i := range part {
		part[i] = payoff(model.Terminal(draw))
	}
}
