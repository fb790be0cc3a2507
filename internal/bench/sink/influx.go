package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

const influxMeasurement = "microbench"

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxRecorder writes one point per entry. Metadata becomes tags and
// numeric metrics become fields.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewInfluxRecorder(cfg InfluxConfig) *InfluxRecorder {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

func (r *InfluxRecorder) Record(ctx context.Context, dir string, e Entry) error {
	tags := map[string]string{"benchmark": e.BenchmarkName}
	if dir != "" {
		tags["metrics_dir"] = dir
	}
	for k, v := range e.Metadata {
		tags[k] = fmt.Sprint(v)
	}

	fields := map[string]any{
		"duration_ms": float64(e.EndTime.Sub(e.StartTime).Microseconds()) / 1000,
	}
	for k, v := range e.Metrics {
		if f, ok := numeric(v); ok {
			fields[k] = f
		}
	}

	p := influxdb2.NewPoint(influxMeasurement, tags, fields, e.EndTime)
	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write influx point: %w", err)
	}
	return nil
}

func (r *InfluxRecorder) Close() error {
	r.client.Close()
	return nil
}
