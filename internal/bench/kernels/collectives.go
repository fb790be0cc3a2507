package kernels

import (
	"context"
	"fmt"
	"sync"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

const (
	matrixDimKey  = "matrix_dim"
	numDevicesKey = "num_devices"

	defaultNumDevices = 4
)

// collective moves data between simulated ranks. in[r] is rank r's shard;
// the returned slice is what each rank holds afterwards.
type collective func(in [][]float64) [][]float64

// busFactor scales the per-device shard size into bytes crossing the
// interconnect for one step, given the rank count.
type busFactor func(n int) float64

type collectiveOp struct {
	name string
	run  collective
	bus  busFactor
}

var collectiveOps = []collectiveOp{
	{name: "all_gather", run: allGather, bus: func(n int) float64 { return float64(n - 1) }},
	{name: "psum", run: psum, bus: func(n int) float64 { return 2 * float64(n-1) / float64(n) }},
	{name: "psum_scatter", run: psumScatter, bus: func(n int) float64 { return float64(n-1) / float64(n) }},
	{name: "all_to_all", run: allToAll, bus: func(n int) float64 { return float64(n-1) / float64(n) }},
	{name: "ppermute", run: ppermute, bus: func(int) float64 { return 1 }},
}

func collectivesModule() *registry.Module {
	m := &registry.Module{
		Name:       "collectives",
		Benchmarks: make(map[string]registry.BenchmarkFunc),
		Metrics:    make(map[string]registry.MetricsFunc),
	}
	for _, op := range collectiveOps {
		fn := op.name + "_benchmark"
		m.Benchmarks[fn] = collectiveBenchmark(op)
		m.Metrics[fn+registry.MetricsSuffix] = registry.MetricsFunc{
			Args: []string{matrixDimKey, numDevicesKey, params.DTypeKey, StepTimesKey},
			Fn:   collectiveMetrics(op),
		}
	}
	return m
}

func collectiveBenchmark(op collectiveOp) registry.BenchmarkFunc {
	return func(ctx context.Context, p *params.Set) (registry.Result, error) {
		dim, err := positiveInt(p, matrixDimKey)
		if err != nil {
			return nil, err
		}
		devices, err := positiveIntOr(p, numDevicesKey, defaultNumDevices)
		if err != nil {
			return nil, err
		}
		dtype, err := dtypeOf(p)
		if err != nil {
			return nil, err
		}

		rng := newRand()
		shards := make([][]float64, devices)
		for r := range shards {
			shards[r] = fill(rng, dim*dim, dtype)
		}

		var out [][]float64
		times, err := runSteps(ctx, p, func() { out = op.run(shards) })
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.name, err)
		}
		return registry.Result{
			StepTimesKey:    times,
			numDevicesKey:   devices,
			"output_length": len(out[0]),
		}, nil
	}
}

func collectiveMetrics(op collectiveOp) func(*params.Set) (registry.Metadata, registry.Metrics, error) {
	return func(args *params.Set) (registry.Metadata, registry.Metrics, error) {
		dim, err := args.Int(matrixDimKey)
		if err != nil {
			return nil, nil, err
		}
		devices, err := args.IntOr(numDevicesKey, defaultNumDevices)
		if err != nil {
			return nil, nil, err
		}
		dtype, err := args.DTypeOr(params.DTypeKey, params.Float32)
		if err != nil {
			return nil, nil, err
		}

		shardBytes := float64(dim * dim * dtype.Size())
		metrics, err := stepMetrics(args, shardBytes*op.bus(devices)/1e9, "bus_bandwidth_gbyte_s")
		if err != nil {
			return nil, nil, err
		}
		metadata := registry.Metadata{
			"op":          op.name,
			matrixDimKey:  dim,
			numDevicesKey: devices,
			"dtype":       dtype.String(),
			"shard_bytes": int(shardBytes),
		}
		return metadata, metrics, nil
	}
}

// eachRank runs fn once per rank concurrently.
func eachRank(n int, fn func(r int)) {
	var wg sync.WaitGroup
	for r := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(r)
		}()
	}
	wg.Wait()
}

func allGather(in [][]float64) [][]float64 {
	n := len(in)
	out := make([][]float64, n)
	eachRank(n, func(r int) {
		buf := make([]float64, 0, n*len(in[0]))
		for src := range in {
			buf = append(buf, in[src]...)
		}
		out[r] = buf
	})
	return out
}

func psum(in [][]float64) [][]float64 {
	n := len(in)
	out := make([][]float64, n)
	eachRank(n, func(r int) {
		buf := make([]float64, len(in[0]))
		for src := range in {
			for i, v := range in[src] {
				buf[i] += v
			}
		}
		out[r] = buf
	})
	return out
}

// psumScatter reduces across ranks and leaves rank r with chunk r of the sum.
func psumScatter(in [][]float64) [][]float64 {
	n := len(in)
	out := make([][]float64, n)
	eachRank(n, func(r int) {
		lo, hi := chunk(len(in[0]), n, r)
		buf := make([]float64, hi-lo)
		for src := range in {
			for i, v := range in[src][lo:hi] {
				buf[i] += v
			}
		}
		out[r] = buf
	})
	return out
}

// allToAll sends chunk j of every rank to rank j.
func allToAll(in [][]float64) [][]float64 {
	n := len(in)
	out := make([][]float64, n)
	eachRank(n, func(r int) {
		lo, hi := chunk(len(in[0]), n, r)
		buf := make([]float64, 0, n*(hi-lo))
		for src := range in {
			buf = append(buf, in[src][lo:hi]...)
		}
		out[r] = buf
	})
	return out
}

// ppermute shifts every shard one rank to the right.
func ppermute(in [][]float64) [][]float64 {
	n := len(in)
	out := make([][]float64, n)
	eachRank(n, func(r int) {
		src := (r - 1 + n) % n
		buf := make([]float64, len(in[src]))
		copy(buf, in[src])
		out[r] = buf
	})
	return out
}

func chunk(length, parts, idx int) (int, int) {
	size := length / parts
	lo := idx * size
	hi := lo + size
	if idx == parts-1 {
		hi = length
	}
	return lo, hi
}
