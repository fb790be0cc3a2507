package runner

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DjordjeVuckovic/microbench/internal/bench/sink"
)

// DefaultDenylist names harness-only parameters that never reach a metrics
// function.
var DefaultDenylist = []string{"num_runs"}

const runIDSuffixLen = 10

type Config struct {
	Denylist []string
	// Recorder receives every record of a batch with a metrics dir. Nil
	// disables forwarding.
	Recorder sink.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
	RunID    func(benchmark string) string
}

func DefaultConfig() Config {
	return Config{
		Denylist: DefaultDenylist,
		Logger:   slog.Default(),
		Now:      time.Now,
		RunID:    NewRunID,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Denylist == nil {
		c.Denylist = d.Denylist
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	if c.RunID == nil {
		c.RunID = d.RunID
	}
	return c
}

// NewRunID returns "t_<benchmark>_" followed by ten upper-case alphanumerics.
func NewRunID(benchmark string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "t_" + benchmark + "_" + suffix[:runIDSuffixLen]
}
