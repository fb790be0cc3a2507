// Package kernels holds in-process reference implementations of the catalog
// benchmarks. Every benchmark honours num_runs and dtype and reports its
// per-step wall times under step_times.
package kernels

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
	"github.com/DjordjeVuckovic/microbench/internal/bench/stats"
)

const (
	NumRunsKey   = "num_runs"
	StepTimesKey = "step_times"
)

// Install adds every kernel module to r.
func Install(r *registry.Registry) {
	r.AddModule(collectivesModule())
	r.AddModule(matmulModule())
	r.AddModule(convolutionModule())
	r.AddModule(attentionModule())
	r.AddModule(hbmModule())
}

// runSteps times step num_runs times. Cancellation is checked between steps.
func runSteps(ctx context.Context, p *params.Set, step func()) ([]float64, error) {
	runs, err := p.IntOr(NumRunsKey, 1)
	if err != nil {
		return nil, err
	}
	if runs < 1 {
		return nil, fmt.Errorf("num_runs must be positive, got %d", runs)
	}

	times := make([]float64, 0, runs)
	for range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		step()
		times = append(times, stats.Millis(time.Since(start)))
	}
	return times, nil
}

func dtypeOf(p *params.Set) (params.DType, error) {
	return p.DTypeOr(params.DTypeKey, params.Float32)
}

func positiveInt(p *params.Set, key string) (int, error) {
	n, err := p.Int(key)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("parameter %q must be positive, got %d", key, n)
	}
	return n, nil
}

func positiveIntOr(p *params.Set, key string, def int) (int, error) {
	if !p.Has(key) {
		return def, nil
	}
	return positiveInt(p, key)
}

// fill returns n pseudo-random values in [-1, 1) rounded to dtype.
func fill(rng *rand.Rand, n int, dtype params.DType) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := float32(rng.Float64()*2 - 1)
		if dtype == params.Int32 {
			v *= 100
		}
		out[i] = float64(dtype.Quantize(v))
	}
	return out
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(0x6d6963, 0x62656e))
}

// stepTimes reads the step_times argument back into durations.
func stepTimes(args *params.Set) ([]time.Duration, error) {
	v, ok := args.Get(StepTimesKey)
	if !ok {
		return nil, fmt.Errorf("argument %q is missing", StepTimesKey)
	}
	ms, ok := v.([]float64)
	if !ok {
		return nil, fmt.Errorf("argument %q has type %T, want []float64", StepTimesKey, v)
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("argument %q is empty", StepTimesKey)
	}
	out := make([]time.Duration, len(ms))
	for i, m := range ms {
		out[i] = time.Duration(m * float64(time.Millisecond))
	}
	return out, nil
}

// stepMetrics summarises step_times and derives a throughput figure from
// work units per median step.
func stepMetrics(args *params.Set, work float64, throughputKey string) (registry.Metrics, error) {
	durations, err := stepTimes(args)
	if err != nil {
		return nil, err
	}
	summary := stats.ComputeLatencyStats(durations)

	metrics := registry.Metrics{}
	for k, v := range summary.MillisFields("step_time") {
		metrics[k] = v
	}
	metrics["num_steps"] = summary.SampleCount

	if seconds := summary.Median.Seconds(); seconds > 0 {
		metrics[throughputKey] = work / seconds
	} else {
		metrics[throughputKey] = 0.0
	}
	return metrics, nil
}
