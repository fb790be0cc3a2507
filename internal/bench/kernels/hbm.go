package kernels

import (
	"context"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

const numElementsKey = "num_elements"

var memoryCopyArgs = []string{numElementsKey, params.DTypeKey, StepTimesKey}

func hbmModule() *registry.Module {
	return &registry.Module{
		Name: "hbm",
		Benchmarks: map[string]registry.BenchmarkFunc{
			"single_chip_memory_copy": memoryCopy,
			"single_chip_hbm_copy":    memoryCopy,
		},
		Metrics: map[string]registry.MetricsFunc{
			"single_chip_memory_copy" + registry.MetricsSuffix: {Args: memoryCopyArgs, Fn: memoryCopyMetrics},
			"single_chip_hbm_copy" + registry.MetricsSuffix:    {Args: memoryCopyArgs, Fn: memoryCopyMetrics},
		},
	}
}

func memoryCopy(ctx context.Context, p *params.Set) (registry.Result, error) {
	n, err := positiveInt(p, numElementsKey)
	if err != nil {
		return nil, err
	}
	dtype, err := dtypeOf(p)
	if err != nil {
		return nil, err
	}
	src := make([]byte, n*dtype.Size())
	for i := range src {
		src[i] = byte(i)
	}
	dst := make([]byte, len(src))

	times, err := runSteps(ctx, p, func() { copy(dst, src) })
	if err != nil {
		return nil, err
	}
	return registry.Result{StepTimesKey: times, "bytes": len(dst)}, nil
}

func memoryCopyMetrics(args *params.Set) (registry.Metadata, registry.Metrics, error) {
	n, err := args.Int(numElementsKey)
	if err != nil {
		return nil, nil, err
	}
	dtype, err := args.DTypeOr(params.DTypeKey, params.Float32)
	if err != nil {
		return nil, nil, err
	}
	bytes := n * dtype.Size()
	// A copy reads and writes every byte once.
	metrics, err := stepMetrics(args, 2*float64(bytes)/1e9, "bandwidth_gbyte_s")
	if err != nil {
		return nil, nil, err
	}
	return registry.Metadata{
		numElementsKey: n,
		"dtype":        dtype.String(),
		"bytes":        bytes,
	}, metrics, nil
}
