package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createMetricsTable = `
CREATE TABLE IF NOT EXISTS benchmark_metrics (
	id          UUID PRIMARY KEY,
	benchmark   TEXT        NOT NULL,
	metrics_dir TEXT        NOT NULL,
	start_time  TIMESTAMPTZ NOT NULL,
	end_time    TIMESTAMPTZ NOT NULL,
	metadata    JSONB       NOT NULL,
	metrics     JSONB       NOT NULL
)`

const insertMetrics = `
INSERT INTO benchmark_metrics (id, benchmark, metrics_dir, start_time, end_time, metadata, metrics)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRecorder stores each entry as a row in benchmark_metrics.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	if _, err := pool.Exec(ctx, createMetricsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create benchmark_metrics table: %w", err)
	}
	return &PostgresRecorder{pool: pool}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, dir string, e Entry) error {
	args, err := insertArgs(uuid.New(), dir, e)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, insertMetrics, args...); err != nil {
		return fmt.Errorf("insert benchmark metrics: %w", err)
	}
	return nil
}

func insertArgs(id uuid.UUID, dir string, e Entry) ([]any, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	metrics, err := json.Marshal(e.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	return []any{id, e.BenchmarkName, dir, e.StartTime.UTC(), e.EndTime.UTC(), metadata, metrics}, nil
}

func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}
