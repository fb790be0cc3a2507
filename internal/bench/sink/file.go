package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const ReportFileName = "metric_report.jsonl"

type fileLine struct {
	BenchmarkName string         `json:"benchmark_name"`
	StartTime     string         `json:"start_time"`
	EndTime       string         `json:"end_time"`
	Metadata      map[string]any `json:"metadata"`
	Metrics       map[string]any `json:"metrics"`
}

// FileRecorder appends one JSON line per entry to <dir>/metric_report.jsonl.
type FileRecorder struct {
	mu sync.Mutex
}

func NewFileRecorder() *FileRecorder {
	return &FileRecorder{}
}

func (r *FileRecorder) Record(_ context.Context, dir string, e Entry) error {
	line, err := json.Marshal(fileLine{
		BenchmarkName: e.BenchmarkName,
		StartTime:     formatTime(e.StartTime),
		EndTime:       formatTime(e.EndTime),
		Metadata:      e.Metadata,
		Metrics:       e.Metrics,
	})
	if err != nil {
		return fmt.Errorf("encode metrics entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, ReportFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics report: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append metrics entry: %w", err)
	}
	return f.Close()
}

func (r *FileRecorder) Close() error { return nil }
