package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const DefaultPath = ".env"

// LoadDotEnv loads environment variables from a .env file. An explicit path
// must exist. Without one, ENV_PATH or DefaultPath is tried and a missing
// file is skipped. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		if p := os.Getenv("ENV_PATH"); p != "" {
			path = p
		} else {
			slog.Debug("ENV_PATH is not set, using default path", "defaultPath", DefaultPath)
			path = DefaultPath
		}
	}

	err := godotenv.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Skipping .env ...", "path", path)
			return nil
		}
		slog.Error("Failed to load environment variables", "path", path, "error", err)
		return err
	}
	slog.Debug("Loaded environment file", "path", path)
	return nil
}
