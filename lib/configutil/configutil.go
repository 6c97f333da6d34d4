package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the path of the local override file for a config file,
// <dir>/<name>.<ext> becomes <dir>/<name>.local.<ext>
func LocalName(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

// readOnto decodes the file at path on top of out, keys missing from the
// file leave the corresponding fields of out untouched.
func readOnto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}

	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// the following are layered on top of each other, where higher number wins:
// 0. defaults
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// A key present in a layer always wins, even when its value is the zero
// value (ex. `retries: 0`).
//
// os.ErrNotExist is returned (alongside the defaults) if neither file exists.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults
	found := false

	for _, path := range []string{name, LocalName(name)} {
		ok, err := readOnto(path, &out)
		if err != nil {
			return defaults, err
		}
		if !ok {
			continue
		}
		slog.Debug("applied config layer", "path", path)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig(filepath.Join(current, name), defaultOut)
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
