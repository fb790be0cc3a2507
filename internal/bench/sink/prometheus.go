package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type promSeries struct {
	registry *prometheus.Registry
	gauge    *prometheus.GaugeVec
	count    int
}

// PrometheusRecorder keeps one gauge series per (benchmark, parameter set,
// metric) and rewrites <dir>/<benchmark>.prom in textfile-collector format
// after every entry.
type PrometheusRecorder struct {
	mu     sync.Mutex
	series map[string]*promSeries
}

func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{series: make(map[string]*promSeries)}
}

func (r *PrometheusRecorder) seriesFor(benchmark string) *promSeries {
	s, ok := r.series[benchmark]
	if ok {
		return s
	}
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "microbench",
		Name:      "metric",
		Help:      "Benchmark metric reported for one parameter set.",
	}, []string{"benchmark", "param_set", "metric"})
	reg.MustRegister(gauge)
	s = &promSeries{registry: reg, gauge: gauge}
	r.series[benchmark] = s
	return s
}

func (r *PrometheusRecorder) Record(_ context.Context, dir string, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.seriesFor(e.BenchmarkName)
	idx := strconv.Itoa(s.count)
	s.count++
	for name, v := range e.Metrics {
		if f, ok := numeric(v); ok {
			s.gauge.WithLabelValues(e.BenchmarkName, idx, name).Set(f)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	path := filepath.Join(dir, e.BenchmarkName+".prom")
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write prometheus textfile: %w", err)
	}
	return nil
}

func (r *PrometheusRecorder) Close() error { return nil }
