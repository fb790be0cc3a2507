//go:build integration

package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	pkgtesting "github.com/DjordjeVuckovic/microbench/pkg/testing"
)

func TestPostgresRecorder_Integration(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	pg := pkgtesting.NewPGContainerWithCleanup(ctx, t)

	r, err := NewPostgresRecorder(ctx, pg.ConnString)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Record(ctx, "out", testEntry()))
	require.NoError(t, r.Record(ctx, "out", testEntry()))

	var count int
	var dtype string
	row := r.pool.QueryRow(ctx, `SELECT count(*), max(metadata->>'dtype') FROM benchmark_metrics WHERE benchmark = $1`, "psum")
	require.NoError(t, row.Scan(&count, &dtype))
	assert.Equal(t, 2, count)
	assert.Equal(t, "float32", dtype)
}

func TestElasticRecorder_Integration(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	es := pkgtesting.NewESContainer(ctx, t)

	r, err := NewElasticRecorder(ElasticConfig{Addresses: []string{es.Address}, Index: "microbench-it"})
	require.NoError(t, err)

	require.NoError(t, r.Record(ctx, "out", testEntry()))

	_, err = r.client.Indices.Refresh().Index("microbench-it").Do(ctx)
	require.NoError(t, err)
	res, err := r.client.Count().Index("microbench-it").Do(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Count)
}
