// Package hosts resolves host-group files into ordered host lists.
//
// A group is a plain text file under <base>/hosts named after the group,
// one host per line. Blank lines and lines starting with '#' are ignored.
package hosts

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is the directory under the base dir holding host-group files.
const Dir = "hosts"

var (
	// ErrHostListMissing is returned when the group file does not exist.
	ErrHostListMissing = errors.New("host list not found")
	// ErrHostListEmpty is returned when the group file has no hosts.
	ErrHostListEmpty = errors.New("host list is empty")
)

// Resolve returns the hosts listed in baseDir/hosts/group, in file order.
func Resolve(baseDir, group string) ([]string, error) {
	if group == "" || strings.ContainsAny(group, `/\`) || group == "." || group == ".." {
		return nil, fmt.Errorf("invalid host group name %q", group)
	}

	path := filepath.Join(baseDir, Dir, group)
	// #nosec G304 -- group names cannot leave the hosts directory
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrHostListMissing, path)
		}
		return nil, fmt.Errorf("failed to open host list %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var hosts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read host list %s: %w", path, err)
	}

	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHostListEmpty, path)
	}
	return hosts, nil
}

// Groups returns the names of the host-group files under baseDir, sorted.
func Groups(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, Dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrHostListMissing, filepath.Join(baseDir, Dir))
		}
		return nil, fmt.Errorf("failed to list host groups: %w", err)
	}

	var groups []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		groups = append(groups, e.Name())
	}
	sort.Strings(groups)
	return groups, nil
}
