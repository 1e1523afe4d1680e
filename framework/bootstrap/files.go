package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
)

// findFiles returns the files matching pattern, then recursively the files
// matching the same base pattern in every subdirectory of the pattern's
// directory. Files of a directory come before those of its subdirectories.
func findFiles(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	files = onlyFiles(files)

	dirs, err := filepath.Glob(filepath.Join(filepath.Dir(pattern), "*"))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		sub, err := findFiles(filepath.Join(dir, filepath.Base(pattern)))
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	return files, nil
}

func onlyFiles(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}
