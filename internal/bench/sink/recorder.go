package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/microbench/internal/bench/spec"
)

// TimestampLayout is the ISO 8601 UTC form entries carry their start and end
// times in.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Entry is one parameter set's output as forwarded to an external recorder.
type Entry struct {
	BenchmarkName string
	Metrics       map[string]any
	Metadata      map[string]any
	StartTime     time.Time
	EndTime       time.Time
}

type Recorder interface {
	Record(ctx context.Context, dir string, e Entry) error
	Close() error
}

// NewRecorder builds the recorder selected by cfg.Type.
func NewRecorder(ctx context.Context, cfg spec.SinkConfig) (Recorder, error) {
	switch cfg.Type {
	case "", spec.SinkFile:
		return NewFileRecorder(), nil

	case spec.SinkInfluxDB:
		if cfg.InfluxURL == "" {
			return nil, fmt.Errorf("influxdb recorder requires a url")
		}
		return NewInfluxRecorder(InfluxConfig{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		}), nil

	case spec.SinkPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres recorder requires a dsn")
		}
		r, err := NewPostgresRecorder(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("create postgres recorder: %w", err)
		}
		return r, nil

	case spec.SinkElasticsearch:
		if len(cfg.ESAddresses) == 0 {
			return nil, fmt.Errorf("elasticsearch recorder requires addresses")
		}
		r, err := NewElasticRecorder(ElasticConfig{Addresses: cfg.ESAddresses, Index: cfg.ESIndex})
		if err != nil {
			return nil, fmt.Errorf("create elasticsearch recorder: %w", err)
		}
		return r, nil

	case spec.SinkPrometheus:
		return NewPrometheusRecorder(), nil

	default:
		return nil, fmt.Errorf("unsupported metrics sink type %q", cfg.Type)
	}
}

// numeric reports v as a float64 when it is a number or a bool.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
