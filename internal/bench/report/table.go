package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Microbenchmark Run (%s) ===\n", r.Meta.Strategy)
	env := r.Meta.Environment
	fmt.Fprintf(tw, "%s %s/%s, %d CPUs", env.GoVersion, env.OS, env.Arch, env.NumCPU)
	if len(env.CPUFeatures) > 0 {
		fmt.Fprintf(tw, ", features: %s", strings.Join(env.CPUFeatures, " "))
	}
	fmt.Fprintln(tw)

	writeSummaryTable(tw, r)
	for i := range r.Batches {
		writeBatchTable(tw, &r.Batches[i])
	}

	tw.Flush()
}

func writeSummaryTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintf(tw, "\nSummary (%d records in %s)\n\n", r.Meta.Records, fmtDuration(r.Meta.Elapsed))

	header := []string{"Benchmark", "Run ID", "Records", "Min", "p50", "p90", "Max", "Mean", "CSV", "Trace"}
	writeHeader(tw, header)

	for _, b := range r.Batches {
		s := b.WallTime
		row := []string{
			b.Benchmark,
			b.RunID,
			fmt.Sprintf("%d", b.Records),
			fmtDuration(s.Min),
			fmtDuration(s.P50()),
			fmtDuration(s.P90()),
			fmtDuration(s.Max),
			fmtDuration(s.Mean),
			orDash(b.CSVFile),
			orDash(b.TraceFile),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
}

func writeBatchTable(tw *tabwriter.Writer, b *BatchReport) {
	if len(b.Rows) == 0 {
		return
	}
	fmt.Fprintf(tw, "--- %s ---\n\n", b.Benchmark)

	metaKeys := sortedKeys(b.Rows[0].Metadata)
	metricKeys := sortedKeys(b.Rows[0].Metrics)

	header := append(append([]string{"#"}, metaKeys...), metricKeys...)
	header = append(header, "Wall")
	writeHeader(tw, header)

	for i, row := range b.Rows {
		cells := []string{fmt.Sprintf("%d", i)}
		for _, k := range metaKeys {
			cells = append(cells, fmtValue(row.Metadata[k]))
		}
		for _, k := range metricKeys {
			cells = append(cells, fmtValue(row.Metrics[k]))
		}
		cells = append(cells, fmtDuration(row.WallTime))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	fmt.Fprintln(tw)
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fmtValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.4f", x)
	case float32:
		return fmt.Sprintf("%.4f", x)
	default:
		return fmt.Sprint(x)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func fmtDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
