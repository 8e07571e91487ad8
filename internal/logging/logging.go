// Package logging builds the logrus logger shared by the CLI and the
// deployment packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LevelEnv names the environment variable read when no level is given.
const LevelEnv = "SWIFTSETUP_LOG_LEVEL"

// Options configures New.
type Options struct {
	// Level is a logrus level name. Empty falls back to LevelEnv, then info.
	Level string
	// JSON selects the JSON formatter instead of text.
	JSON bool
	// Output defaults to stderr.
	Output io.Writer
}

// New creates a logger from opts.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}

	levelStr := opts.Level
	if levelStr == "" {
		levelStr = os.Getenv(LevelEnv)
	}
	if levelStr == "" {
		log.SetLevel(logrus.InfoLevel)
		return log, nil
	}

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}
	log.SetLevel(level)
	return log, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
