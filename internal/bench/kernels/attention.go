package kernels

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

const (
	seqLenKey  = "seq_len"
	headDimKey = "head_dim"
)

func attentionModule() *registry.Module {
	return &registry.Module{
		Name: "attention",
		Benchmarks: map[string]registry.BenchmarkFunc{
			"naive_attention_benchmark": naiveAttention,
		},
		Metrics: map[string]registry.MetricsFunc{
			"naive_attention_benchmark" + registry.MetricsSuffix: {
				Args: []string{seqLenKey, headDimKey, params.DTypeKey, StepTimesKey},
				Fn:   attentionMetrics,
			},
		},
	}
}

// naiveAttention computes softmax(QKᵀ/√d)·V for a single head.
func naiveAttention(ctx context.Context, p *params.Set) (registry.Result, error) {
	seq, err := positiveInt(p, seqLenKey)
	if err != nil {
		return nil, err
	}
	dim, err := positiveInt(p, headDimKey)
	if err != nil {
		return nil, err
	}
	dtype, err := dtypeOf(p)
	if err != nil {
		return nil, err
	}

	rng := newRand()
	q := mat.NewDense(seq, dim, fill(rng, seq*dim, dtype))
	k := mat.NewDense(seq, dim, fill(rng, seq*dim, dtype))
	v := mat.NewDense(seq, dim, fill(rng, seq*dim, dtype))
	scale := 1 / math.Sqrt(float64(dim))

	var scores, out mat.Dense
	times, err := runSteps(ctx, p, func() {
		scores.Mul(q, k.T())
		scores.Scale(scale, &scores)
		softmaxRows(&scores)
		out.Mul(&scores, v)
	})
	if err != nil {
		return nil, err
	}
	return registry.Result{StepTimesKey: times, "checksum": mat.Sum(&out)}, nil
}

func softmaxRows(m *mat.Dense) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		maxV := math.Inf(-1)
		for _, x := range row {
			maxV = math.Max(maxV, x)
		}
		var sum float64
		for j, x := range row {
			row[j] = math.Exp(x - maxV)
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
	}
}

func attentionMetrics(args *params.Set) (registry.Metadata, registry.Metrics, error) {
	seq, err := args.Int(seqLenKey)
	if err != nil {
		return nil, nil, err
	}
	dim, err := args.Int(headDimKey)
	if err != nil {
		return nil, nil, err
	}
	dtype, err := args.DTypeOr(params.DTypeKey, params.Float32)
	if err != nil {
		return nil, nil, err
	}
	flops := 4 * float64(seq) * float64(seq) * float64(dim)
	metrics, err := stepMetrics(args, flops/1e12, "tflops_per_sec")
	if err != nil {
		return nil, nil, err
	}
	return registry.Metadata{
		seqLenKey:  seq,
		headDimKey: dim,
		"dtype":    dtype.String(),
	}, metrics, nil
}
