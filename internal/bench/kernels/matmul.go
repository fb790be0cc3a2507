package kernels

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

const (
	mKey = "m"
	kKey = "k"
	nKey = "n"
)

var matmulArgs = []string{mKey, kKey, nKey, params.DTypeKey, StepTimesKey}

func matmulModule() *registry.Module {
	return &registry.Module{
		Name: "matmul",
		Benchmarks: map[string]registry.BenchmarkFunc{
			"naive_matmul":             naiveMatmul,
			"single_host_naive_matmul": singleHostNaiveMatmul,
		},
		Metrics: map[string]registry.MetricsFunc{
			"naive_matmul" + registry.MetricsSuffix:             {Args: matmulArgs, Fn: matmulMetrics},
			"single_host_naive_matmul" + registry.MetricsSuffix: {Args: matmulArgs, Fn: matmulMetrics},
		},
	}
}

type matmulShape struct {
	m, k, n int
	dtype   params.DType
}

func readMatmulShape(p *params.Set) (matmulShape, error) {
	var s matmulShape
	var err error
	if s.m, err = positiveInt(p, mKey); err != nil {
		return s, err
	}
	if s.k, err = positiveInt(p, kKey); err != nil {
		return s, err
	}
	if s.n, err = positiveInt(p, nKey); err != nil {
		return s, err
	}
	s.dtype, err = dtypeOf(p)
	return s, err
}

// naiveMatmul multiplies an m×k by a k×n matrix with gonum's dense product.
func naiveMatmul(ctx context.Context, p *params.Set) (registry.Result, error) {
	s, err := readMatmulShape(p)
	if err != nil {
		return nil, err
	}
	rng := newRand()
	a := mat.NewDense(s.m, s.k, fill(rng, s.m*s.k, s.dtype))
	b := mat.NewDense(s.k, s.n, fill(rng, s.k*s.n, s.dtype))
	var c mat.Dense

	times, err := runSteps(ctx, p, func() { c.Mul(a, b) })
	if err != nil {
		return nil, err
	}
	return registry.Result{StepTimesKey: times, "checksum": mat.Sum(&c)}, nil
}

// singleHostNaiveMatmul is the textbook triple loop, rounding every output
// element back to dtype.
func singleHostNaiveMatmul(ctx context.Context, p *params.Set) (registry.Result, error) {
	s, err := readMatmulShape(p)
	if err != nil {
		return nil, err
	}
	rng := newRand()
	a := fill(rng, s.m*s.k, s.dtype)
	b := fill(rng, s.k*s.n, s.dtype)
	c := make([]float64, s.m*s.n)

	times, err := runSteps(ctx, p, func() {
		for i := 0; i < s.m; i++ {
			for j := 0; j < s.n; j++ {
				var acc float64
				for x := 0; x < s.k; x++ {
					acc += a[i*s.k+x] * b[x*s.n+j]
				}
				c[i*s.n+j] = float64(s.dtype.Quantize(float32(acc)))
			}
		}
	})
	if err != nil {
		return nil, err
	}

	var sum float64
	for _, v := range c {
		sum += v
	}
	return registry.Result{StepTimesKey: times, "checksum": sum}, nil
}

func matmulMetrics(args *params.Set) (registry.Metadata, registry.Metrics, error) {
	s, err := readMatmulShape(args)
	if err != nil {
		return nil, nil, err
	}
	flops := 2 * float64(s.m) * float64(s.k) * float64(s.n)
	metrics, err := stepMetrics(args, flops/1e12, "tflops_per_sec")
	if err != nil {
		return nil, nil, err
	}
	return registry.Metadata{
		mKey:    s.m,
		kKey:    s.k,
		nKey:    s.n,
		"dtype": s.dtype.String(),
	}, metrics, nil
}
