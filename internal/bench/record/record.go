// Package record holds the unit of output a batch produces per parameter set.
package record

import "github.com/DjordjeVuckovic/microbench/internal/bench/registry"

// MetricsRecord is created once per executed parameter set and not mutated
// afterwards.
type MetricsRecord struct {
	Metadata registry.Metadata `json:"metadata"`
	Metrics  registry.Metrics  `json:"metrics"`
}

const (
	MetadataColumn = "metadata"
	MetricsColumn  = "metrics"
)

// Row renders the record as a tabular row keyed by column name.
func (r MetricsRecord) Row() map[string]any {
	return map[string]any{
		MetadataColumn: map[string]any(r.Metadata),
		MetricsColumn:  map[string]any(r.Metrics),
	}
}

func Rows(records []MetricsRecord) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}
