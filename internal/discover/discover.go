// Package discover walks a directory tree and locates the co-located
// artifact triples that form reviewable units.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxDepth bounds both the target-directory search and unit discovery so
// traversal always terminates.
const MaxDepth = 10

// Unit is one discovered set of review artifacts. Descriptor is empty when
// the directory has no dc file.
type Unit struct {
	Dir        string
	Registry   string
	Manifest   string
	Descriptor string
}

// Options controls discovery.
type Options struct {
	// TargetName restricts discovery to the first directory beneath the
	// root whose own name equals it; empty means the whole tree.
	TargetName string
	// MaxDepth overrides the default traversal bound when positive.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return MaxDepth
}

// Discover locates every reviewable unit beneath root. Units are returned
// in traversal order (directory entries are visited in the sorted order the
// directory listing provides); warnings describe directories that almost
// formed a unit.
func Discover(root string, opts Options) ([]Unit, []string, error) {
	start := root
	if opts.TargetName != "" {
		match, found := findTargetDir(root, opts.TargetName, 0, opts.maxDepth(), map[string]bool{})
		if !found {
			return nil, []string{fmt.Sprintf("no directory named %q found under %s", opts.TargetName, root)}, nil
		}
		start = match
	}

	var units []Unit
	var warnings []string
	walk(start, 0, opts.maxDepth(), map[string]bool{}, &units, &warnings)
	return units, warnings, nil
}

// findTargetDir performs a depth-bounded pre-order search for a directory
// whose name equals target; the first match wins.
func findTargetDir(dir, target string, depth, maxDepth int, visited map[string]bool) (string, bool) {
	if depth > maxDepth || !markVisited(dir, visited) {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if entry.Name() == target {
			return sub, true
		}
		if match, found := findTargetDir(sub, target, depth+1, maxDepth, visited); found {
			return match, true
		}
	}
	return "", false
}

// walk visits every directory under dir, collecting a unit wherever a
// registry and manifest are co-located. A directory that forms a unit is
// still descended into; nested units are independent.
func walk(dir string, depth, maxDepth int, visited map[string]bool, units *[]Unit, warnings *[]string) {
	if depth > maxDepth || !markVisited(dir, visited) {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("cannot list %s: %v", dir, err))
		return
	}

	if unit, warning := collect(dir, entries); unit != nil {
		*units = append(*units, *unit)
	} else if warning != "" {
		*warnings = append(*warnings, warning)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		walk(filepath.Join(dir, entry.Name()), depth+1, maxDepth, visited, units, warnings)
	}
}

// collect inspects one directory's files for an artifact triple.
func collect(dir string, entries []os.DirEntry) (*Unit, string) {
	var registry, manifest, descriptor string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case registry == "" && isRegistryName(name):
			registry = filepath.Join(dir, name)
		case manifest == "" && strings.HasSuffix(name, "_secret.yml"):
			manifest = filepath.Join(dir, name)
		case descriptor == "" && strings.HasSuffix(name, "_dc.yml"):
			descriptor = filepath.Join(dir, name)
		}
	}
	// The .yml spelling takes precedence; .yaml fills the gaps.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case manifest == "" && strings.HasSuffix(name, "_secret.yaml"):
			manifest = filepath.Join(dir, name)
		case descriptor == "" && strings.HasSuffix(name, "_dc.yaml"):
			descriptor = filepath.Join(dir, name)
		}
	}

	if registry == "" {
		return nil, ""
	}
	if manifest == "" {
		return nil, fmt.Sprintf("%s: registry file present but no *_secret.yml manifest", dir)
	}
	return &Unit{Dir: dir, Registry: registry, Manifest: manifest, Descriptor: descriptor}, ""
}

// isRegistryName reports whether a file is an eligible registry: a .json
// file with enaas anywhere in its name, case-insensitive.
func isRegistryName(name string) bool {
	return strings.HasSuffix(name, ".json") && strings.Contains(strings.ToLower(name), "enaas")
}

// markVisited records dir's resolved path, returning false when it was
// already seen. Resolving through symlinks keeps link cycles from
// recursing forever.
func markVisited(dir string, visited map[string]bool) bool {
	key := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		key = resolved
	}
	if visited[key] {
		return false
	}
	visited[key] = true
	return true
}
