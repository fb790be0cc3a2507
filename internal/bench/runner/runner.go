package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/record"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
	"github.com/DjordjeVuckovic/microbench/internal/bench/sink"
	"github.com/DjordjeVuckovic/microbench/internal/bench/spec"
	"github.com/DjordjeVuckovic/microbench/internal/bench/trace"
)

type Resolver interface {
	Resolve(name string) (registry.BenchmarkFunc, registry.MetricsFunc, error)
}

// Batch is a resolved benchmark with its preprocessed parameter sets.
type Batch struct {
	Benchmark spec.Benchmark
	Fn        registry.BenchmarkFunc
	Metrics   registry.MetricsFunc
	Tasks     []Task
}

type Runner struct {
	resolver Resolver
	strategy Strategy
	config   Config
}

func New(resolver Resolver, strategy Strategy, cfg Config) *Runner {
	return &Runner{
		resolver: resolver,
		strategy: strategy,
		config:   cfg.withDefaults(),
	}
}

// Plan resolves every benchmark and expands and preprocesses its parameter
// sets. Nothing executes, so configuration and resolution errors never leave
// a partial run behind.
func (r *Runner) Plan(benchmarks []spec.Benchmark) ([]*Batch, error) {
	batches := make([]*Batch, 0, len(benchmarks))
	for _, b := range benchmarks {
		fn, metrics, err := r.resolver.Resolve(b.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve benchmark %q: %w", b.Name, err)
		}
		sets, err := b.ParameterSets()
		if err != nil {
			return nil, err
		}
		if err := params.PreprocessAll(sets); err != nil {
			return nil, fmt.Errorf("preprocess %q: %w", b.Name, err)
		}

		tasks := make([]Task, len(sets))
		for i, s := range sets {
			tasks[i] = Task{Index: i, Params: s}
		}
		batches = append(batches, &Batch{Benchmark: b, Fn: fn, Metrics: metrics, Tasks: tasks})
	}
	return batches, nil
}

// Run plans every benchmark, then executes the batches in order. The first
// failing batch ends the run.
func (r *Runner) Run(ctx context.Context, benchmarks []spec.Benchmark) (*RunResult, error) {
	batches, err := r.Plan(benchmarks)
	if err != nil {
		return nil, err
	}

	rr := &RunResult{Strategy: r.strategy.Name(), Started: r.config.Now()}
	for _, b := range batches {
		br, err := r.RunBatch(ctx, b)
		if err != nil {
			return nil, err
		}
		rr.Batches = append(rr.Batches, br)
	}
	rr.Finished = r.config.Now()
	return rr, nil
}

func (r *Runner) RunBatch(ctx context.Context, b *Batch) (*BatchResult, error) {
	name := b.Benchmark.Name
	log := r.config.Logger.With("benchmark", name)
	runID := r.config.RunID(name)
	log.Info("Starting benchmark", "run_id", runID, "param_sets", len(b.Tasks), "strategy", r.strategy.Name())

	var session *trace.Session
	if b.Benchmark.TraceDir != "" {
		var err error
		ctx, session, err = trace.Start(ctx, b.Benchmark.TraceDir, runID, name)
		if err != nil {
			return nil, fmt.Errorf("start trace for %q: %w", name, err)
		}
	}

	br := &BatchResult{Benchmark: name, RunID: runID, Strategy: r.strategy.Name()}
	emit := func(o Outcome) {
		br.Records = append(br.Records, o.Record)
		br.WallTimes = append(br.WallTimes, o.End.Sub(o.Start))
		r.forward(ctx, b.Benchmark, o)
	}
	runErr := r.strategy.Run(ctx, b.Tasks, r.taskFunc(b, session), emit)

	tracePath, traceErr := session.Stop(context.WithoutCancel(ctx))
	if runErr != nil {
		if traceErr != nil {
			log.Warn("stop trace failed", "error", traceErr)
		}
		return nil, fmt.Errorf("run benchmark %q: %w", name, runErr)
	}
	if traceErr != nil {
		return nil, fmt.Errorf("stop trace for %q: %w", name, traceErr)
	}
	if tracePath != "" {
		br.TraceFile = tracePath
		log.Info("Trace written", "path", tracePath)
	}

	if b.Benchmark.CSVPath != "" {
		path := filepath.Join(b.Benchmark.CSVPath, runID+".csv")
		if err := sink.WriteCSV(path, record.Rows(br.Records)); err != nil {
			return nil, fmt.Errorf("write results for %q: %w", name, err)
		}
		br.CSVFile = path
		log.Info("Results written", "path", path, "records", len(br.Records))
	}
	return br, nil
}

func (r *Runner) taskFunc(b *Batch, session *trace.Session) TaskFunc {
	name := b.Benchmark.Name
	return func(ctx context.Context, t Task) (Outcome, error) {
		ctx, span := session.StartStep(ctx, t.Index, t.Params.String())
		defer span.End()

		r.config.Logger.Info("Running benchmark", "benchmark", name, "index", t.Index, "params", t.Params.String())
		start := r.config.Now().UTC()
		result, err := b.Fn(ctx, t.Params)
		end := r.config.Now().UTC()
		if err != nil {
			span.RecordError(err)
			return Outcome{}, apperr.Execution(fmt.Errorf("benchmark %q parameter set %d: %w", name, t.Index, err))
		}

		args := Reconcile(result, t.Params, b.Metrics, r.config.Denylist)
		metadata, metrics, err := b.Metrics.Fn(args)
		if err != nil {
			span.RecordError(err)
			return Outcome{}, apperr.Execution(fmt.Errorf("metrics for %q parameter set %d: %w", name, t.Index, err))
		}
		return Outcome{
			Index:  t.Index,
			Record: record.MetricsRecord{Metadata: metadata, Metrics: metrics},
			Start:  start,
			End:    end,
		}, nil
	}
}

// forward hands a record to the recorder. Failures are logged, never
// returned.
func (r *Runner) forward(ctx context.Context, b spec.Benchmark, o Outcome) {
	if r.config.Recorder == nil || b.MetricsDir == "" {
		return
	}
	err := r.config.Recorder.Record(ctx, b.MetricsDir, sink.Entry{
		BenchmarkName: b.Name,
		Metrics:       o.Record.Metrics,
		Metadata:      o.Record.Metadata,
		StartTime:     o.Start,
		EndTime:       o.End,
	})
	if err != nil {
		r.config.Logger.Warn("record metrics failed", "benchmark", b.Name, "index", o.Index, "error", err)
	}
}
