package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

type cliConfig struct {
	ConfigPath     string
	EnvFile        string
	LogLevel       string
	Multithreaded  bool
	ClusterAddress string
	ReportPath     string
	Output         string
}

func bindGlobalFlags(cmd *cobra.Command, cfg *cliConfig) {
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	cmd.PersistentFlags().StringVar(&cfg.EnvFile, "env-file", "", "Path to a .env file (defaults to ENV_PATH or .env)")
}

func bindConfigFlag(cmd *cobra.Command, cfg *cliConfig) {
	cmd.Flags().StringVarP(&cfg.ConfigPath, "config", "c", "", "Path to benchmark config YAML")
	_ = cmd.MarkFlagRequired("config")
}

func bindRunFlags(cmd *cobra.Command, cfg *cliConfig) {
	bindConfigFlag(cmd, cfg)
	cmd.Flags().BoolVar(&cfg.Multithreaded, "multithreaded", false, "Run parameter sets on a worker pool sized from the cluster")
	cmd.Flags().StringVar(&cfg.ClusterAddress, "cluster-address", "", "Cluster address for worker discovery (overrides config)")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", "", "Write a JSON run report to this path")
}

func bindSweepFlags(cmd *cobra.Command, cfg *cliConfig) {
	bindConfigFlag(cmd, cfg)
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Write the expanded parameter sets to this YAML file instead of stdout")
}

func (c cliConfig) parseLogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
}
