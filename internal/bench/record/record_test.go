package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRows(t *testing.T) {
	records := []MetricsRecord{
		{Metadata: map[string]any{"x": 1}, Metrics: map[string]any{"y": 2}},
		{Metadata: map[string]any{"x": 3}, Metrics: map[string]any{"y": 4}},
	}
	rows := Rows(records)

	assert.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"x": 1}, rows[0][MetadataColumn])
	assert.Equal(t, map[string]any{"y": 4}, rows[1][MetricsColumn])
	assert.Empty(t, Rows(nil))
}
