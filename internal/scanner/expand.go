package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPaths resolves scan arguments into a flat list of regular files.
// An argument may name a file, a directory (immediate children, or the
// whole tree when recursive is set), or a glob pattern. Results keep the
// argument order, duplicates and non-files are dropped, and arguments
// that match nothing expand to nothing.
func ExpandPaths(args []string, recursive bool) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		path := expandHome(arg)

		if strings.ContainsAny(path, "*?[") {
			matches, err := filepath.Glob(path)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			for _, match := range matches {
				add(match)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			add(path)
		case info.IsDir() && recursive:
			// Unreadable subtrees are skipped, not fatal.
			_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if !d.IsDir() {
					add(p)
				}
				return nil
			})
		case info.IsDir():
			entries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					add(filepath.Join(path, entry.Name()))
				}
			}
		}
	}

	return files, nil
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
