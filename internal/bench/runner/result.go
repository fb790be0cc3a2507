package runner

import (
	"time"

	"github.com/DjordjeVuckovic/microbench/internal/bench/record"
)

// BatchResult is everything one benchmark batch produced.
type BatchResult struct {
	Benchmark string
	RunID     string
	Strategy  string
	Records   []record.MetricsRecord
	// WallTimes[i] is the end minus start time of Records[i].
	WallTimes []time.Duration
	CSVFile   string
	TraceFile string
}

type RunResult struct {
	Strategy string
	Batches  []*BatchResult
	Started  time.Time
	Finished time.Time
}

func (rr *RunResult) TotalRecords() int {
	n := 0
	for _, b := range rr.Batches {
		n += len(b.Records)
	}
	return n
}

// Elapsed is the wall time between the run's start and finish.
func (rr *RunResult) Elapsed() time.Duration {
	return rr.Finished.Sub(rr.Started)
}
