package report

import (
	"runtime"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/DjordjeVuckovic/microbench/internal/bench/stats"
)

type Report struct {
	Meta    RunMeta       `json:"meta"`
	Batches []BatchReport `json:"batches"`
}

type RunMeta struct {
	Strategy    string          `json:"strategy"`
	Started     time.Time       `json:"started"`
	Finished    time.Time       `json:"finished"`
	Elapsed     time.Duration   `json:"elapsed"`
	Records     int             `json:"records"`
	Environment EnvironmentInfo `json:"environment"`
}

type EnvironmentInfo struct {
	GoVersion   string   `json:"go_version"`
	OS          string   `json:"os"`
	Arch        string   `json:"arch"`
	NumCPU      int      `json:"num_cpu"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		CPUFeatures: cpuFeatures(),
	}
}

// cpuFeatures lists the SIMD extensions the host reports.
func cpuFeatures() []string {
	var out []string
	add := func(name string, ok bool) {
		if ok {
			out = append(out, name)
		}
	}
	add("sse4.2", cpu.X86.HasSSE42)
	add("avx", cpu.X86.HasAVX)
	add("avx2", cpu.X86.HasAVX2)
	add("fma", cpu.X86.HasFMA)
	add("avx512f", cpu.X86.HasAVX512F)
	add("avx512bf16", cpu.X86.HasAVX512BF16)
	add("asimd", cpu.ARM64.HasASIMD)
	add("asimdhp", cpu.ARM64.HasASIMDHP)
	add("sve", cpu.ARM64.HasSVE)
	return out
}

type BatchReport struct {
	Benchmark string             `json:"benchmark"`
	RunID     string             `json:"run_id"`
	Records   int                `json:"records"`
	WallTime  stats.LatencyStats `json:"wall_time"`
	CSVFile   string             `json:"csv_file,omitempty"`
	TraceFile string             `json:"trace_file,omitempty"`
	Rows      []Row              `json:"rows"`
}

// Row is one record flattened for display.
type Row struct {
	Metadata map[string]any `json:"metadata"`
	Metrics  map[string]any `json:"metrics"`
	WallTime time.Duration  `json:"wall_time"`
}
