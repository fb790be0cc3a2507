package spec

import (
	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/sweep"
)

type Config struct {
	Benchmarks  []Benchmark   `yaml:"benchmarks"`
	MetricsSink SinkConfig    `yaml:"metrics_sink"`
	Cluster     ClusterConfig `yaml:"cluster"`
}

// Benchmark is one batch: a benchmark name, its parameter sets and where
// its artifacts go.
type Benchmark struct {
	Name       string        `yaml:"benchmark_name"`
	Params     []*params.Set `yaml:"benchmark_params,omitempty"`
	Sweep      []sweep.Rule  `yaml:"benchmark_sweep_params,omitempty"`
	CSVPath    string        `yaml:"csv_path,omitempty"`
	TraceDir   string        `yaml:"trace_dir,omitempty"`
	MetricsDir string        `yaml:"xlml_metrics_dir,omitempty"`
}

type SinkConfig struct {
	Type         string   `yaml:"type"`
	InfluxURL    string   `yaml:"influx_url,omitempty"`
	InfluxToken  string   `yaml:"influx_token,omitempty"`
	InfluxOrg    string   `yaml:"influx_org,omitempty"`
	InfluxBucket string   `yaml:"influx_bucket,omitempty"`
	PostgresDSN  string   `yaml:"postgres_dsn,omitempty"`
	ESAddresses  []string `yaml:"es_addresses,omitempty"`
	ESIndex      string   `yaml:"es_index,omitempty"`
}

type ClusterConfig struct {
	Address        string `yaml:"address"`
	DevicesPerHost int    `yaml:"devices_per_host"`
	Resource       string `yaml:"resource"`
}

const (
	SinkFile          = "file"
	SinkInfluxDB      = "influxdb"
	SinkPostgres      = "postgres"
	SinkElasticsearch = "elasticsearch"
	SinkPrometheus    = "prometheus"
)

const (
	DefaultDevicesPerHost = 4
	DefaultResource       = "accelerator"
	DefaultClusterAddress = "local"
	DefaultESIndex        = "microbench-metrics"
)
