// Package source finds and loads batch files and watches them for changes.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles expands glob patterns to batch files.
// Supports both single-level wildcards (*) and recursive wildcards (**).
//
// Examples:
//   - "./batches/*.json" → ["/abs/batches/a.json", ...]
//   - "./batches/**/*.json" → every json file below ./batches
//   - "./one.json" → ["/abs/one.json"]
//
// Returns absolute paths of regular files, deduplicated and sorted.
func ResolveFiles(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	slices.Sort(resolved)
	return resolved, nil
}

// resolvePattern expands a single glob pattern to files.
func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", absPath)
		}

		return []string{absPath}, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip paths that can't be stat'd
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}

	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// splitGlob splits pattern at the last separator before the first glob
// character. base is "." when the pattern starts with a glob. Patterns without
// glob characters split into directory and file name.
func splitGlob(pattern string) (base, rest string) {
	idx := strings.IndexAny(pattern, "*?[{")
	if idx == -1 {
		return filepath.Dir(pattern), filepath.Base(pattern)
	}
	lastSep := strings.LastIndexAny(pattern[:idx], "/"+string(filepath.Separator))
	switch {
	case lastSep < 0:
		return ".", pattern
	case lastSep == 0:
		return pattern[:1], pattern[1:]
	default:
		return pattern[:lastSep], pattern[lastSep+1:]
	}
}

// makeAbsolutePattern converts a relative pattern to absolute.
// Preserves glob characters in the pattern.
func makeAbsolutePattern(pattern string) (string, error) {
	if !containsGlob(pattern) {
		return filepath.Abs(pattern)
	}

	base, rest := splitGlob(pattern)
	absDir, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(absDir, filepath.FromSlash(rest)), nil
}

// Match reports whether path matches any of the patterns. Relative patterns
// are resolved against the working directory.
func Match(patterns []string, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, pattern := range patterns {
		absPattern, err := makeAbsolutePattern(pattern)
		if err != nil {
			continue
		}
		if ok, _ := doublestar.PathMatch(absPattern, abs); ok {
			return true
		}
	}
	return false
}

// WatchRoots returns the directories to watch for the given patterns.
func WatchRoots(patterns []string) ([]string, error) {
	var roots []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		base, _ := splitGlob(pattern)
		root, err := filepath.Abs(base)
		if err != nil {
			return nil, err
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots, nil
}
