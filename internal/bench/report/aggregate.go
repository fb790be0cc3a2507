package report

import (
	"github.com/DjordjeVuckovic/microbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/microbench/internal/bench/stats"
)

func Generate(rr *runner.RunResult) *Report {
	r := &Report{
		Meta: RunMeta{
			Strategy:    rr.Strategy,
			Started:     rr.Started,
			Finished:    rr.Finished,
			Elapsed:     rr.Elapsed(),
			Records:     rr.TotalRecords(),
			Environment: NewEnvironmentInfo(),
		},
	}

	for _, br := range rr.Batches {
		batch := BatchReport{
			Benchmark: br.Benchmark,
			RunID:     br.RunID,
			Records:   len(br.Records),
			WallTime:  stats.ComputeLatencyStats(br.WallTimes),
			CSVFile:   br.CSVFile,
			TraceFile: br.TraceFile,
		}
		for i, rec := range br.Records {
			row := Row{Metadata: rec.Metadata, Metrics: rec.Metrics}
			if i < len(br.WallTimes) {
				row.WallTime = br.WallTimes[i]
			}
			batch.Rows = append(batch.Rows, row)
		}
		r.Batches = append(r.Batches, batch)
	}

	return r
}
