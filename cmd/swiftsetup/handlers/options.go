// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/imamik/swiftsetup/internal/logging"
)

// DefaultConfigFile is the config file looked up in the base dir.
const DefaultConfigFile = "swift-setup.conf"

// Options holds the flags shared by every command.
type Options struct {
	// ConfigPath is the INI file. Empty means DefaultConfigFile in BaseDir.
	ConfigPath string
	// BaseDir holds templates/ and hosts/.
	BaseDir  string
	LogLevel string
	LogJSON  bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// stdout receives reports.
	stdout io.Writer = os.Stdout

	// newLogger builds the logger for a command.
	newLogger = func(opts *Options) (*logrus.Logger, error) {
		return logging.New(logging.Options{Level: opts.LogLevel, JSON: opts.LogJSON})
	}
)

// configPath resolves the config file location.
func (o *Options) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return filepath.Join(o.baseDir(), DefaultConfigFile)
}

func (o *Options) baseDir() string {
	if o.BaseDir == "" {
		return "."
	}
	return o.BaseDir
}

// LoadEnv loads .env files from the working directory and the base dir.
// Variables already set in the environment are kept.
func LoadEnv(opts *Options) error {
	paths := []string{".env"}
	if base := filepath.Join(opts.baseDir(), ".env"); filepath.Clean(base) != ".env" {
		paths = append(paths, base)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
