package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	dir := t.TempDir()
	ctx, s, err := Start(context.Background(), dir, "t_psum_ABC", "psum")
	require.NoError(t, err)

	_, step := s.StartStep(ctx, 0, "{matrix_dim: 4}")
	step.End()

	path, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "t_psum_ABC", FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"param_set_0"`)
	assert.Contains(t, string(data), `"Name":"psum"`)
}

func TestNilSession(t *testing.T) {
	var s *Session
	ctx := context.Background()

	got, span := s.StartStep(ctx, 1, "{}")
	assert.Equal(t, ctx, got)
	span.End()

	path, err := s.Stop(ctx)
	assert.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, s.Path())
}
