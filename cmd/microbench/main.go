package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
	"github.com/DjordjeVuckovic/microbench/internal/bench/cluster"
	"github.com/DjordjeVuckovic/microbench/internal/bench/kernels"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
	"github.com/DjordjeVuckovic/microbench/internal/bench/report"
	"github.com/DjordjeVuckovic/microbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/microbench/internal/bench/sink"
	"github.com/DjordjeVuckovic/microbench/internal/bench/spec"
	"github.com/DjordjeVuckovic/microbench/pkg/config/env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("microbench failed", "error", err)
		os.Exit(apperr.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cfg := &cliConfig{}

	root := &cobra.Command{
		Use:           "microbench",
		Short:         "Run configured microbenchmarks and export their metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cfg.parseLogLevel()
			if err != nil {
				return apperr.NewValidationWrap("parse flags", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			if err := env.LoadDotEnv(cfg.EnvFile); err != nil {
				return apperr.NewValidationWrap("load env file", err)
			}
			return nil
		},
	}
	bindGlobalFlags(root, cfg)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute every benchmark in the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmarks(cmd.Context(), *cfg)
		},
	}
	bindRunFlags(runCmd, cfg)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered benchmarks by family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			writeCatalog(reg, cmd.OutOrStdout())
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Print the expanded and preprocessed parameter sets without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(*cfg, cmd.OutOrStdout())
		},
	}
	bindSweepFlags(sweepCmd, cfg)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load, resolve and plan the config without executing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(*cfg, cmd.OutOrStdout())
		},
	}
	bindConfigFlag(validateCmd, cfg)

	root.AddCommand(runCmd, listCmd, sweepCmd, validateCmd)
	return root
}

// loadRegistry builds the catalog with every kernel module and checks that
// each entry resolves.
func loadRegistry() (*registry.Registry, error) {
	reg := registry.NewDefault()
	kernels.Install(reg)
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	return reg, nil
}

func runBenchmarks(ctx context.Context, cfg cliConfig) error {
	bs, err := spec.LoadFromFile(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfg.ConfigPath, err)
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	rec, err := sink.NewRecorder(ctx, bs.MetricsSink)
	if err != nil {
		return apperr.NewValidationWrap("create metrics recorder", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			slog.Warn("Failed to close metrics recorder", "error", err)
		}
	}()

	var strategy runner.Strategy = runner.Sequential{}
	if cfg.Multithreaded {
		address := bs.Cluster.Address
		if cfg.ClusterAddress != "" {
			address = cfg.ClusterAddress
		}
		cc, err := cluster.Connect(ctx, cluster.Config{
			Address:        address,
			DevicesPerHost: bs.Cluster.DevicesPerHost,
			Resource:       bs.Cluster.Resource,
		})
		if err != nil {
			return apperr.NewValidationWrap("cluster unavailable", err)
		}
		defer cc.Close()
		strategy = runner.NewPooled(cc)
	}

	runCfg := runner.DefaultConfig()
	runCfg.Recorder = rec
	r := runner.New(reg, strategy, runCfg)

	result, err := r.Run(ctx, bs.Benchmarks)
	if err != nil {
		return err
	}
	return outputReport(result, cfg.ReportPath)
}

func outputReport(result *runner.RunResult, outputPath string) error {
	rpt := report.Generate(result)
	report.WriteTable(rpt, os.Stdout)

	if outputPath != "" {
		if err := report.WriteJSON(rpt, outputPath); err != nil {
			return err
		}
		slog.Info("Report written", "path", outputPath)
	}
	return nil
}
