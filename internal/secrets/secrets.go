// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files: the filename is the key, the trimmed file contents are the
// value. The CLI reads .secrets/anthropic-api-key this way at startup.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads every regular file in dir into a key/value map. A missing
// directory is a normal state (config-only setups) and yields an empty
// map. Dotfiles, subdirectories, and files that trim to empty are
// skipped; unreadable files produce a stderr warning but do not abort.
func Load(dir string) (map[string]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	values := make(map[string]string)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if v := strings.TrimSpace(string(data)); v != "" {
			values[name] = v
		}
	}

	return values, nil
}
