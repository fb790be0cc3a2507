package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjordjeVuckovic/microbench/internal/bench/spec"
)

func testEntry() Entry {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return Entry{
		BenchmarkName: "psum",
		Metadata:      map[string]any{"dtype": "float32", "matrix_dim": 4},
		Metrics:       map[string]any{"step_time_median_ms": 1.5, "label": "x"},
		StartTime:     start,
		EndTime:       start.Add(2 * time.Millisecond),
	}
}

func TestFileRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metrics")
	r := NewFileRecorder()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Record(ctx, dir, testEntry()))
		}()
	}
	wg.Wait()
	require.NoError(t, r.Close())

	f, err := os.Open(filepath.Join(dir, ReportFileName))
	require.NoError(t, err)
	defer f.Close()

	var lines []fileLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var l fileLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lines = append(lines, l)
	}
	require.Len(t, lines, 4)
	assert.Equal(t, "psum", lines[0].BenchmarkName)
	assert.Equal(t, "2024-05-01T12:00:00.000000Z", lines[0].StartTime)
	assert.Equal(t, "2024-05-01T12:00:00.002000Z", lines[0].EndTime)
	assert.Equal(t, 1.5, lines[0].Metrics["step_time_median_ms"])
}

func TestPrometheusRecorder(t *testing.T) {
	dir := t.TempDir()
	r := NewPrometheusRecorder()
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, dir, testEntry()))
	require.NoError(t, r.Record(ctx, dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, "psum.prom"))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `microbench_metric{benchmark="psum",metric="step_time_median_ms",param_set="0"} 1.5`)
	assert.Contains(t, out, `param_set="1"`)
	assert.NotContains(t, out, `metric="label"`)
}

func TestInfluxRecorder(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/write", r.URL.Path)
		assert.Equal(t, "bench", r.URL.Query().Get("bucket"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewInfluxRecorder(InfluxConfig{URL: srv.URL, Token: "t", Org: "org", Bucket: "bench"})
	defer r.Close()

	require.NoError(t, r.Record(context.Background(), "out", testEntry()))
	assert.True(t, strings.HasPrefix(body, "microbench,"))
	assert.Contains(t, body, "benchmark=psum")
	assert.Contains(t, body, "dtype=float32")
	assert.Contains(t, body, "step_time_median_ms=1.5")
	assert.NotContains(t, body, "label=")
}

func TestElasticRecorder(t *testing.T) {
	var doc elasticDocument
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/metrics-idx/_doc/"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_index":"metrics-idx","_id":"1","_version":1,"result":"created","_shards":{"total":1,"successful":1,"failed":0},"_seq_no":0,"_primary_term":1}`))
	}))
	defer srv.Close()

	r, err := NewElasticRecorder(ElasticConfig{Addresses: []string{srv.URL}, Index: "metrics-idx"})
	require.NoError(t, err)

	require.NoError(t, r.Record(context.Background(), "out", testEntry()))
	assert.Equal(t, "psum", doc.BenchmarkName)
	assert.Equal(t, "out", doc.MetricsDir)
	assert.Equal(t, "float32", doc.Metadata["dtype"])
}

func TestPostgresInsertArgs(t *testing.T) {
	id := uuid.New()
	args, err := insertArgs(id, "out", testEntry())
	require.NoError(t, err)
	require.Len(t, args, 7)
	assert.Equal(t, id, args[0])
	assert.Equal(t, "psum", args[1])
	assert.JSONEq(t, `{"dtype":"float32","matrix_dim":4}`, string(args[5].([]byte)))
}

func TestNewRecorder(t *testing.T) {
	ctx := context.Background()

	r, err := NewRecorder(ctx, spec.SinkConfig{Type: spec.SinkFile})
	require.NoError(t, err)
	assert.IsType(t, &FileRecorder{}, r)

	r, err = NewRecorder(ctx, spec.SinkConfig{Type: spec.SinkPrometheus})
	require.NoError(t, err)
	assert.IsType(t, &PrometheusRecorder{}, r)

	_, err = NewRecorder(ctx, spec.SinkConfig{Type: spec.SinkInfluxDB})
	assert.ErrorContains(t, err, "requires a url")

	_, err = NewRecorder(ctx, spec.SinkConfig{Type: spec.SinkPostgres})
	assert.ErrorContains(t, err, "requires a dsn")

	_, err = NewRecorder(ctx, spec.SinkConfig{Type: spec.SinkElasticsearch})
	assert.ErrorContains(t, err, "requires addresses")

	_, err = NewRecorder(ctx, spec.SinkConfig{Type: "kafka"})
	assert.ErrorContains(t, err, "unsupported")
}
