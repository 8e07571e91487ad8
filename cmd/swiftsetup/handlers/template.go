package handlers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/imamik/swiftsetup/internal/templating"
)

// Template renders the template catalog in place and marks the tree ready.
func Template(_ context.Context, opts *Options) error {
	log, err := newLogger(opts)
	if err != nil {
		return err
	}

	engine, err := templating.New(opts.configPath(), opts.baseDir(), templating.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to prepare templates: %w", err)
	}
	if err := engine.RunAll(); err != nil {
		return fmt.Errorf("failed to render templates: %w", err)
	}

	log.WithFields(logrus.Fields{
		"templates": len(templating.Catalog),
		"sentinel":  templating.SentinelPath(opts.baseDir()),
	}).Info("templates rendered")
	fmt.Fprintf(stdout, "Rendered %d templates in %s\n", len(templating.Catalog), engine.TemplateDir())
	return nil
}
