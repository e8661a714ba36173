package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitecrawl/internal/model"
)

// Step is one stage of a crawl run.
type Step interface {
	// Do executes the step. Non-critical problems should be logged or
	// recorded in run, returning nil.
	Do(ctx context.Context, run *model.CrawlRun) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps      []Step
	finalSteps []Step
	logger     *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:      make([]Step, 0),
		finalSteps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a main step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddFinalStep appends a step that runs after the main steps regardless of
// their outcome or of ctx cancellation.
func (p *Pipeline) AddFinalStep(step Step) {
	p.finalSteps = append(p.finalSteps, step)
}

// Execute runs the main steps in order, then the final steps.
//
// Cancellation is checked before each main step. Final steps receive a
// context that keeps ctx's values but is never cancelled, and their errors
// are logged without changing the returned error.
//
// The first failing main step stops the remaining main steps. The returned
// error is that step's error, or ctx.Err() if the pipeline was cancelled
// between steps.
func (p *Pipeline) Execute(ctx context.Context, run *model.CrawlRun) error {
	firstErr := p.executeMain(ctx, run)

	finalCtx := context.WithoutCancel(ctx)
	for _, step := range p.finalSteps {
		p.logger.Debug("executing final step", "step", step.Name(), "hostname", run.Hostname)
		if err := step.Do(finalCtx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"hostname", run.Hostname,
				"error", err,
			)
			if firstErr == nil && run.ErrorMessage == "" {
				run.ErrorMessage = err.Error()
			}
		}
	}

	return firstErr
}

func (p *Pipeline) executeMain(ctx context.Context, run *model.CrawlRun) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			if run.Status == model.RunInProgress {
				run.Status = model.RunCancelled
			}
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "hostname", run.Hostname)

		if err := step.Do(ctx, run); err != nil {
			if ctx.Err() != nil {
				p.logger.Warn("step interrupted", "step", step.Name(), "reason", err)
			} else {
				p.logger.Error("step failed",
					"step", step.Name(),
					"hostname", run.Hostname,
					"error", err,
				)
			}
			if run.ErrorMessage == "" {
				run.ErrorMessage = err.Error()
			}
			return err
		}
	}
	return nil
}

// StepCount returns the number of main and final steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps) + len(p.finalSteps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, p.StepCount())
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	for _, step := range p.finalSteps {
		names = append(names, step.Name())
	}
	return names
}
