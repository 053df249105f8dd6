// Package batch evaluates many pulse candidates concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/metrics"
)

// Outcome is the evaluation of one candidate.
type Outcome struct {
	Index    int
	Name     string
	Loss     float64
	GradNorm float64
	Drift    float64
	Gradient []complex128
	Summary  analysis.ProfileSummary
}

type Options struct {
	// Workers bounds concurrent evaluations; 0 means one per CPU.
	Workers int
	// Backend overrides each candidate's backend when non-empty.
	Backend string
	Logger  *slog.Logger
}

// Evaluate runs forward, objective and adjoint for one configuration.
func Evaluate(cfg *config.Config) (*Outcome, error) {
	p, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return nil, err
	}
	drift := metrics.NewUnitarity()
	metrics.Attach(s, drift)

	res, err := s.Forward(p.RF, p.X, p.G)
	if err != nil {
		return nil, err
	}
	loss, auxA, auxB := p.Objective.Evaluate(res.A, res.B)
	drf, err := s.Adjoint(p.RF, p.X, p.G, auxA, auxB, res.RawA, res.RawB)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Name:     cfg.Name,
		Loss:     loss,
		GradNorm: Norm(drf),
		Drift:    drift.Value(),
		Gradient: drf,
		Summary:  analysis.Summarize(p.X, res.A, res.B, p.InBand),
	}, nil
}

// Run evaluates every configuration with at most opts.Workers in flight.
// Outcomes keep the input order. The first failure cancels the rest.
func Run(ctx context.Context, cfgs []*config.Config, opts Options) ([]Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]Outcome, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cfg := range cfgs {
		if opts.Backend != "" {
			cfg = cfg.Clone()
			cfg.Backend = opts.Backend
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Debug("evaluating candidate", "index", i, "name", cfg.Name)

			out, err := Evaluate(cfg)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", cfg.Name, err)
			}
			out.Index = i
			outcomes[i] = *out

			logger.Debug("candidate done", "name", cfg.Name, "loss", out.Loss, "grad_norm", out.GradNorm)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("batch complete", "candidates", len(cfgs), "workers", workers)
	return outcomes, nil
}

// Norm is the Euclidean norm of a complex vector.
func Norm(v []complex128) float64 {
	sum := 0.0
	for _, z := range v {
		a := cmplx.Abs(z)
		sum += a * a
	}
	return math.Sqrt(sum)
}
