package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

type ElasticConfig struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

type elasticDocument struct {
	BenchmarkName string         `json:"benchmark_name"`
	MetricsDir    string         `json:"metrics_dir,omitempty"`
	StartTime     string         `json:"start_time"`
	EndTime       string         `json:"end_time"`
	Metadata      map[string]any `json:"metadata"`
	Metrics       map[string]any `json:"metrics"`
}

// ElasticRecorder indexes one document per entry.
type ElasticRecorder struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewElasticRecorder(cfg ElasticConfig) (*ElasticRecorder, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	client, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticRecorder{client: client, index: cfg.Index}, nil
}

func (r *ElasticRecorder) Record(ctx context.Context, dir string, e Entry) error {
	doc := elasticDocument{
		BenchmarkName: e.BenchmarkName,
		MetricsDir:    dir,
		StartTime:     formatTime(e.StartTime),
		EndTime:       formatTime(e.EndTime),
		Metadata:      e.Metadata,
		Metrics:       e.Metrics,
	}
	id := uuid.NewString()
	res, err := r.client.Index(r.index).Id(id).Document(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index metrics document: %w", err)
	}
	slog.Debug("metrics document indexed", "id", id, "index", r.index, "result", res.Result)
	return nil
}

func (r *ElasticRecorder) Close() error { return nil }
