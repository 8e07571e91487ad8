package testing

import (
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imamik/swiftsetup/internal/hosts"
	"github.com/imamik/swiftsetup/internal/templating"
)

// ProjectBuilder provides a fluent interface for laying out a base dir.
// Each method returns a new builder (immutable) for chaining.
type ProjectBuilder struct {
	config    string
	hosts     map[string][]string
	templates map[string]string
	sentinel  bool
}

// NewProjectBuilder creates a builder with FullConfig, the full template
// catalog and no host groups.
func NewProjectBuilder() *ProjectBuilder {
	tmpl := make(map[string]string, len(templating.Catalog))
	for _, entry := range templating.Catalog {
		var b strings.Builder
		for _, p := range entry.Placeholders {
			b.WriteString(p + "=$" + p + "\n")
		}
		tmpl[entry.File] = b.String()
	}
	return &ProjectBuilder{
		config:    FullConfig,
		hosts:     make(map[string][]string),
		templates: tmpl,
	}
}

// WithConfig replaces the config file content.
func (b *ProjectBuilder) WithConfig(content string) *ProjectBuilder {
	nb := b.clone()
	nb.config = content
	return nb
}

// WithHosts adds a host group file with the given lines.
func (b *ProjectBuilder) WithHosts(group string, lines ...string) *ProjectBuilder {
	nb := b.clone()
	nb.hosts[group] = append([]string(nil), lines...)
	return nb
}

// WithTemplate adds or replaces a template file relative to templates/.
func (b *ProjectBuilder) WithTemplate(rel, content string) *ProjectBuilder {
	nb := b.clone()
	nb.templates[rel] = content
	return nb
}

// WithSentinel marks the templates as rendered.
func (b *ProjectBuilder) WithSentinel() *ProjectBuilder {
	nb := b.clone()
	nb.sentinel = true
	return nb
}

// Build writes the project into a fresh temp dir and returns its path.
func (b *ProjectBuilder) Build(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	keyPath := filepath.Join(dir, SSHKeyFileName)
	writeFile(t, keyPath, "not-a-real-key\n", 0o600)
	cfg := strings.ReplaceAll(b.config, "@SSH_KEY@", keyPath)
	writeFile(t, filepath.Join(dir, ConfigFileName), cfg, 0o600)

	for group, lines := range b.hosts {
		writeFile(t, filepath.Join(dir, hosts.Dir, group), strings.Join(lines, "\n")+"\n", 0o644)
	}

	tmplDir := filepath.Join(dir, templating.TemplateDir)
	if err := os.MkdirAll(tmplDir, 0o755); err != nil {
		t.Fatalf("create template dir: %v", err)
	}
	for rel, content := range b.templates {
		writeFile(t, filepath.Join(tmplDir, filepath.FromSlash(rel)), content, 0o644)
	}
	if b.sentinel {
		writeFile(t, templating.SentinelPath(dir), "", 0o644)
	}
	return dir
}

func (b *ProjectBuilder) clone() *ProjectBuilder {
	nb := *b
	nb.hosts = make(map[string][]string, len(b.hosts))
	for k, v := range b.hosts {
		nb.hosts[k] = append([]string(nil), v...)
	}
	nb.templates = maps.Clone(b.templates)
	return &nb
}

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
