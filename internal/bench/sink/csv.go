package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteCSV writes rows to path. The header is the first row's keys in
// sorted order. Later rows are not checked against it: a missing key is an
// empty cell and an extra key is dropped.
func WriteCSV(path string, rows []map[string]any) error {
	if len(rows) == 0 {
		return &EmptyResultError{}
	}
	if rows[0] == nil {
		return &MalformedResultError{Reason: "first record is not a mapping"}
	}

	header := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		header = append(header, k)
	}
	sort.Strings(header)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(header))
	for i, row := range rows {
		for j, col := range header {
			cell, err := formatCell(row[col])
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, col, err)
			}
			line[j] = cell
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func formatCell(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	case map[string]any, []any, []float64:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(x), nil
	}
}
