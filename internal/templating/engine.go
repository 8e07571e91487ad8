package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/imamik/swiftsetup/internal/config"
)

const (
	// TemplateDir is the directory under the base dir holding the template tree.
	TemplateDir = "templates"
	// SentinelName marks a rendered template tree.
	SentinelName = ".initialized"
)

// placeholderPattern matches "$$", "${NAME}" and "$NAME".
var placeholderPattern = regexp.MustCompile(`\$(?:(\$)|\{([_A-Za-z][_A-Za-z0-9]*)\}|([_A-Za-z][_A-Za-z0-9]*))`)

// Engine renders the template catalog with values from a loaded configuration.
type Engine struct {
	values      config.Section
	templateDir string
	log         logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report rendered files.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New loads the configuration at configPath and prepares an engine for the
// template tree under baseDir.
func New(configPath, baseDir string, opts ...Option) (*Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, baseDir, opts...)
}

// NewFromConfig prepares an engine from an already loaded configuration.
func NewFromConfig(cfg *config.Config, baseDir string, opts ...Option) (*Engine, error) {
	dir := filepath.Join(baseDir, TemplateDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: template directory not found [%s]", ErrResourceNotFound, dir)
	}

	e := &Engine{
		values:      cfg.Flatten(),
		templateDir: dir,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// TemplateDir returns the directory the engine renders.
func (e *Engine) TemplateDir() string {
	return e.templateDir
}

// Update substitutes the requested placeholders in templateFile and rewrites
// it. Every requested placeholder must have a configuration value under its
// lower-cased name; the file is not touched otherwise.
func (e *Engine) Update(templateFile string, placeholders []string) error {
	subs := make(map[string]string, len(placeholders))
	for _, name := range placeholders {
		v, ok := e.values[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("template %s: %w", templateFile, &config.LookupError{Key: strings.ToLower(name)})
		}
		subs[name] = v
	}

	// #nosec G304 -- path comes from the fixed catalog under the base dir
	body, err := os.ReadFile(templateFile)
	if err != nil {
		return &TemplateIOError{Path: templateFile, Op: "read", Err: err}
	}

	info, err := os.Stat(templateFile)
	if err != nil {
		return &TemplateIOError{Path: templateFile, Op: "stat", Err: err}
	}

	rendered := Substitute(string(body), subs)
	if err := os.WriteFile(templateFile, []byte(rendered), info.Mode().Perm()); err != nil {
		return &TemplateIOError{Path: templateFile, Op: "write", Err: err}
	}

	e.log.WithField("file", templateFile).Debugf("rendered %d placeholders", len(placeholders))
	return nil
}

// RunAll renders every catalog entry and then writes the sentinel.
func (e *Engine) RunAll() error {
	for _, entry := range Catalog {
		if err := e.Update(entry.path(e.templateDir), entry.Placeholders); err != nil {
			return err
		}
	}

	sentinel := filepath.Join(e.templateDir, SentinelName)
	if err := os.WriteFile(sentinel, nil, 0o644); err != nil { //nolint:gosec // marker file, no content
		return &TemplateIOError{Path: sentinel, Op: "write", Err: err}
	}

	e.log.WithField("templates", e.templateDir).Infof("rendered %d templates", len(Catalog))
	return nil
}

// Substitute replaces $NAME and ${NAME} tokens whose NAME is a key of values.
// Everything else, including "$$" escapes and unknown names, is kept verbatim.
func Substitute(body string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		m := placeholderPattern.FindStringSubmatch(token)
		if m[1] != "" {
			return token
		}
		name := m[2]
		if name == "" {
			name = m[3]
		}
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})
}

// SentinelPath returns the sentinel location for baseDir.
func SentinelPath(baseDir string) string {
	return filepath.Join(baseDir, TemplateDir, SentinelName)
}

// Initialized reports whether the template tree under baseDir was rendered.
func Initialized(baseDir string) (bool, error) {
	_, err := os.Stat(SentinelPath(baseDir))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check template sentinel: %w", err)
	}
}
