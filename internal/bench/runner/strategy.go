package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/record"
)

// Task is one preprocessed parameter set of a batch.
type Task struct {
	Index  int
	Params *params.Set
}

// Outcome is a task's record plus when its benchmark call started and ended.
type Outcome struct {
	Index  int
	Record record.MetricsRecord
	Start  time.Time
	End    time.Time
}

type TaskFunc func(ctx context.Context, t Task) (Outcome, error)

// Strategy decides how tasks are submitted and how their outcomes are
// collected. emit is always called from the goroutine that called Run.
type Strategy interface {
	Name() string
	Run(ctx context.Context, tasks []Task, run TaskFunc, emit func(Outcome)) error
}

// Sequential runs tasks one after another and stops at the first failure.
// Outcomes before the failure have already been emitted.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Run(ctx context.Context, tasks []Task, run TaskFunc, emit func(Outcome)) error {
	for _, t := range tasks {
		out, err := run(ctx, t)
		if err != nil {
			return err
		}
		emit(out)
	}
	return nil
}

// WorkerSource reports how many tasks may run at once.
type WorkerSource interface {
	Workers(ctx context.Context) (int, error)
}

type FixedWorkers int

func (n FixedWorkers) Workers(context.Context) (int, error) { return int(n), nil }

// Pooled runs tasks on a bounded pool sized by its WorkerSource. The first
// failure stops unstarted tasks; started ones run to completion. Outcomes
// are emitted in submission order only when every task succeeded.
type Pooled struct {
	source WorkerSource
}

func NewPooled(source WorkerSource) *Pooled {
	return &Pooled{source: source}
}

func (p *Pooled) Name() string { return "pooled" }

func (p *Pooled) Run(ctx context.Context, tasks []Task, run TaskFunc, emit func(Outcome)) error {
	workers, err := p.source.Workers(ctx)
	if err != nil {
		return fmt.Errorf("size worker pool: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	outs := make([]Outcome, len(tasks))
	for i, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := run(ctx, t)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, out := range outs {
		emit(out)
	}
	return nil
}
