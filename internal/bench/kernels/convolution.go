package kernels

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

const (
	inputSizeKey  = "input_size"
	kernelSizeKey = "kernel_size"
)

var convolutionArgs = []string{inputSizeKey, kernelSizeKey, params.DTypeKey, StepTimesKey}

func convolutionModule() *registry.Module {
	return &registry.Module{
		Name: "convolution",
		Benchmarks: map[string]registry.BenchmarkFunc{
			"convolve_1d": convolve1D,
			"convolve_2d": convolve2D,
		},
		Metrics: map[string]registry.MetricsFunc{
			"convolve_1d" + registry.MetricsSuffix: {Args: convolutionArgs, Fn: convolutionMetrics(1)},
			"convolve_2d" + registry.MetricsSuffix: {Args: convolutionArgs, Fn: convolutionMetrics(2)},
		},
	}
}

func readConvShape(p *params.Set) (input, kernel int, dtype params.DType, err error) {
	if input, err = positiveInt(p, inputSizeKey); err != nil {
		return
	}
	if kernel, err = positiveInt(p, kernelSizeKey); err != nil {
		return
	}
	if kernel > input {
		err = fmt.Errorf("kernel_size %d exceeds input_size %d", kernel, input)
		return
	}
	dtype, err = dtypeOf(p)
	return
}

// convolve1D computes a valid-mode 1-D convolution.
func convolve1D(ctx context.Context, p *params.Set) (registry.Result, error) {
	in, k, dtype, err := readConvShape(p)
	if err != nil {
		return nil, err
	}
	rng := newRand()
	signal := fill(rng, in, dtype)
	kernel := fill(rng, k, dtype)
	out := make([]float64, in-k+1)

	times, err := runSteps(ctx, p, func() {
		for i := range out {
			var acc float64
			for j := 0; j < k; j++ {
				acc += signal[i+j] * kernel[k-1-j]
			}
			out[i] = acc
		}
	})
	if err != nil {
		return nil, err
	}
	return registry.Result{StepTimesKey: times, "output_size": len(out)}, nil
}

// convolve2D computes a valid-mode convolution of a square input with a
// square kernel.
func convolve2D(ctx context.Context, p *params.Set) (registry.Result, error) {
	in, k, dtype, err := readConvShape(p)
	if err != nil {
		return nil, err
	}
	rng := newRand()
	image := fill(rng, in*in, dtype)
	kernel := fill(rng, k*k, dtype)
	side := in - k + 1
	out := make([]float64, side*side)

	times, err := runSteps(ctx, p, func() {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				var acc float64
				for ky := 0; ky < k; ky++ {
					row := (y + ky) * in
					krow := (k - 1 - ky) * k
					for kx := 0; kx < k; kx++ {
						acc += image[row+x+kx] * kernel[krow+k-1-kx]
					}
				}
				out[y*side+x] = acc
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return registry.Result{StepTimesKey: times, "output_size": side}, nil
}

func convolutionMetrics(rank int) func(*params.Set) (registry.Metadata, registry.Metrics, error) {
	return func(args *params.Set) (registry.Metadata, registry.Metrics, error) {
		in, k, dtype, err := readConvShape(args)
		if err != nil {
			return nil, nil, err
		}
		outputs, taps := float64(in-k+1), float64(k)
		if rank == 2 {
			outputs *= outputs
			taps *= taps
		}
		metrics, err := stepMetrics(args, 2*outputs*taps/1e9, "gflops_per_sec")
		if err != nil {
			return nil, nil, err
		}
		return registry.Metadata{
			inputSizeKey:  in,
			kernelSizeKey: k,
			"rank":        rank,
			"dtype":       dtype.String(),
		}, metrics, nil
	}
}
