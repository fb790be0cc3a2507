package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
	"github.com/DjordjeVuckovic/microbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/microbench/internal/bench/spec"
)

func writeCatalog(reg *registry.Registry, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Family\tBenchmark\tLocation")
	fmt.Fprintln(tw, "---\t---\t---")
	byFamily := reg.ByFamily()
	for _, f := range reg.Families() {
		for _, name := range byFamily[f] {
			e, _ := reg.Entry(name)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f, name, e.Location())
		}
	}
	tw.Flush()
}

// sweepDoc is the dry-run output: one entry per benchmark with every
// parameter set it would execute.
type sweepDoc struct {
	Benchmarks []sweepEntry `yaml:"benchmarks"`
}

type sweepEntry struct {
	Name   string        `yaml:"benchmark_name"`
	Params []*params.Set `yaml:"benchmark_params"`
}

func plan(cfg cliConfig) ([]*runner.Batch, error) {
	bs, err := spec.LoadFromFile(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfg.ConfigPath, err)
	}
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	return runner.New(reg, runner.Sequential{}, runner.DefaultConfig()).Plan(bs.Benchmarks)
}

func runSweep(cfg cliConfig, stdout io.Writer) error {
	batches, err := plan(cfg)
	if err != nil {
		return err
	}

	doc := sweepDoc{}
	for _, b := range batches {
		entry := sweepEntry{Name: b.Benchmark.Name}
		for _, t := range b.Tasks {
			entry.Params = append(entry.Params, t.Params)
		}
		doc.Benchmarks = append(doc.Benchmarks, entry)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal sweep: %w", err)
	}
	if cfg.Output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		return fmt.Errorf("write sweep file: %w", err)
	}
	slog.Info("Sweep file written", "path", cfg.Output)
	return nil
}

func validateConfig(cfg cliConfig, stdout io.Writer) error {
	batches, err := plan(cfg)
	if err != nil {
		return err
	}
	var b strings.Builder
	total := 0
	for _, batch := range batches {
		fmt.Fprintf(&b, "%s: %d parameter sets\n", batch.Benchmark.Name, len(batch.Tasks))
		total += len(batch.Tasks)
	}
	fmt.Fprintf(&b, "ok: %d benchmarks, %d parameter sets\n", len(batches), total)
	_, err = io.WriteString(stdout, b.String())
	return err
}
