package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
)

// Analyzer turns a request into an analysis. *engine.Engine satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req model.Request) (model.Analysis, error)
}

// Pipeline runs requests through an analyzer and records each analysis in
// the configured output. Output failures are logged, never returned, so a
// broken sink cannot fail a request.
type Pipeline struct {
	analyzer Analyzer
	output   output.Output
}

// New creates a Pipeline. A nil out discards analyses.
func New(a Analyzer, out output.Output) *Pipeline {
	return &Pipeline{analyzer: a, output: out}
}

// Process analyzes one request and records the result.
func (p *Pipeline) Process(ctx context.Context, req model.Request) (model.Analysis, error) {
	a, err := p.analyzer.Analyze(ctx, req)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("pipeline analyze: %w", err)
	}
	p.record(ctx, a)
	slog.Debug("analysis complete",
		"id", a.ID,
		"final", a.Final.Label,
		"confidence", a.Final.Confidence,
		"rule", a.Rule,
		"level", a.Recommendation.Level,
	)
	return a, nil
}

// Batch processes reqs in order and stops at the first error.
func (p *Pipeline) Batch(ctx context.Context, reqs []model.Request) ([]model.Analysis, error) {
	out := make([]model.Analysis, 0, len(reqs))
	for i, req := range reqs {
		a, err := p.Process(ctx, req)
		if err != nil {
			return out, fmt.Errorf("pipeline batch item %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Stream processes requests from in until it is closed or ctx is done.
// Each analysis is also sent on results when it is non-nil.
func (p *Pipeline) Stream(ctx context.Context, in <-chan model.Request, results chan<- model.Analysis) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-in:
			if !ok {
				return nil
			}
			a, err := p.Process(ctx, req)
			if err != nil {
				return err
			}
			if results == nil {
				continue
			}
			select {
			case results <- a:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if p.output == nil {
		return nil
	}
	return p.output.Close()
}

func (p *Pipeline) record(ctx context.Context, a model.Analysis) {
	if p.output == nil {
		return
	}
	if err := p.output.Write(ctx, a); err != nil {
		slog.Warn("output write failed", "id", a.ID, "error", err)
	}
}
