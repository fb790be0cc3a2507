package spec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/sweep"
)

const (
	EnvClusterAddress = "MICROBENCH_CLUSTER_ADDRESS"
	EnvInfluxURL      = "INFLUXDB_URL"
	EnvInfluxToken    = "INFLUXDB_TOKEN"
	EnvInfluxOrg      = "INFLUXDB_ORG"
	EnvInfluxBucket   = "INFLUXDB_BUCKET"
	EnvPostgresDSN    = "MICROBENCH_PG_DSN"
	EnvESAddresses    = "MICROBENCH_ES_ADDRESSES"
	EnvESIndex        = "MICROBENCH_ES_INDEX"
)

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.NewValidationWrap("read config file", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.NewValidationWrap("parse config YAML", err)
	}
	if err := checkBenchmarksKey(&doc); err != nil {
		return nil, err
	}

	var c Config
	if err := doc.Decode(&c); err != nil {
		return nil, apperr.NewValidationWrap("decode config", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// checkBenchmarksKey requires a non-empty top-level "benchmarks" sequence.
func checkBenchmarksKey(doc *yaml.Node) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return apperr.NewValidation("config must be a mapping with a 'benchmarks' key")
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "benchmarks" {
			continue
		}
		if root.Content[i+1].Kind != yaml.SequenceNode {
			return apperr.NewValidation(fmt.Sprintf("line %d: 'benchmarks' must be a list", root.Content[i+1].Line))
		}
		if len(root.Content[i+1].Content) == 0 {
			return apperr.NewValidation(fmt.Sprintf("line %d: 'benchmarks' must not be empty", root.Content[i+1].Line))
		}
		return nil
	}
	return apperr.NewValidation("config has no 'benchmarks' key")
}

var validSinkTypes = map[string]bool{
	SinkFile:          true,
	SinkInfluxDB:      true,
	SinkPostgres:      true,
	SinkElasticsearch: true,
	SinkPrometheus:    true,
}

func validate(c *Config) error {
	for i, b := range c.Benchmarks {
		if b.Name == "" {
			return apperr.NewValidation(fmt.Sprintf("benchmark at index %d has no benchmark_name", i))
		}
		for j, p := range b.Params {
			if p == nil {
				return apperr.NewValidation(fmt.Sprintf("benchmark %q: parameter set %d is empty", b.Name, j))
			}
		}
	}

	if c.MetricsSink.Type == "" {
		c.MetricsSink.Type = SinkFile
	}
	if !validSinkTypes[c.MetricsSink.Type] {
		return apperr.NewValidation(fmt.Sprintf("metrics_sink has invalid type %q", c.MetricsSink.Type))
	}
	applyEnv(c)

	if c.Cluster.DevicesPerHost < 0 {
		return apperr.NewValidation("cluster.devices_per_host must not be negative")
	}
	if c.Cluster.DevicesPerHost == 0 {
		c.Cluster.DevicesPerHost = DefaultDevicesPerHost
	}
	if c.Cluster.Resource == "" {
		c.Cluster.Resource = DefaultResource
	}
	if c.Cluster.Address == "" {
		c.Cluster.Address = DefaultClusterAddress
	}
	return nil
}

// applyEnv fills connection settings the document leaves empty.
func applyEnv(c *Config) {
	setIfEmpty(&c.Cluster.Address, EnvClusterAddress)
	setIfEmpty(&c.MetricsSink.InfluxURL, EnvInfluxURL)
	setIfEmpty(&c.MetricsSink.InfluxToken, EnvInfluxToken)
	setIfEmpty(&c.MetricsSink.InfluxOrg, EnvInfluxOrg)
	setIfEmpty(&c.MetricsSink.InfluxBucket, EnvInfluxBucket)
	setIfEmpty(&c.MetricsSink.PostgresDSN, EnvPostgresDSN)
	setIfEmpty(&c.MetricsSink.ESIndex, EnvESIndex)
	if len(c.MetricsSink.ESAddresses) == 0 {
		if v := os.Getenv(EnvESAddresses); v != "" {
			c.MetricsSink.ESAddresses = strings.Split(v, ",")
		}
	}
	if c.MetricsSink.ESIndex == "" {
		c.MetricsSink.ESIndex = DefaultESIndex
	}
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// ParameterSets returns the batch's parameter sets: explicit ones first,
// then the sweep expansion. The returned sets are copies.
func (b Benchmark) ParameterSets() ([]*params.Set, error) {
	out := make([]*params.Set, 0, len(b.Params))
	for _, p := range b.Params {
		out = append(out, p.Clone())
	}
	if len(b.Sweep) == 0 {
		return out, nil
	}
	swept, err := sweep.Expand(b.Sweep)
	if err != nil {
		return nil, fmt.Errorf("expand sweep for %q: %w", b.Name, err)
	}
	return append(out, swept...), nil
}
