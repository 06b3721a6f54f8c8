package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/picopage/internal/logfields"
)

// EnvFileName is the optional dotenv file read from the source root.
const EnvFileName = ".env"

// LoadEnv loads <root>/.env into the process environment so config files can
// reference ${VAR}. Variables already set are never overridden. A missing
// file is silently ignored.
func LoadEnv(root string) error {
	path := filepath.Join(root, EnvFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return err
	}
	slog.Debug("Loaded environment file", logfields.Path(path))
	return nil
}
