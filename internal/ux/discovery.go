package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// RequestFileNames are the request files looked for when no --in is given,
// in priority order.
var RequestFileNames = []string{
	"taskplan.yaml",
	"taskplan.yml",
	"taskplan.json",
}

// DiscoverRequestFile searches start and its parents for a request file.
// The search stops after the first directory holding a .git entry so it
// never leaves the repository.
func DiscoverRequestFile(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range RequestFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", NewErrorWithSuggestion(
		fmt.Errorf("no request file found from %s", start),
		"Pass one with --in, or create taskplan.yaml in the project directory",
	)
}

// ResolveRequestPath returns explicit when set, otherwise the discovered
// request file starting at the working directory.
func ResolveRequestPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return DiscoverRequestFile(cwd)
}
