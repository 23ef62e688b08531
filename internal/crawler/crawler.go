package crawler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Crawler scans a trace root for compile directories.
type Crawler struct {
	markers []string
	ignored []string
	skip    map[string]bool // absolute paths never descended into
}

// NewCrawler creates a crawler that treats a directory as a compile directory
// when one of its files contains any of markers in its name. skipDirs, usually
// the report output directory, are never scanned.
func NewCrawler(markers []string, skipDirs ...string) *Crawler {
	c := &Crawler{
		markers: markers,
		ignored: []string{".git", "node_modules"},
		skip:    map[string]bool{},
	}
	for _, d := range skipDirs {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			c.skip[abs] = true
		}
	}
	return c
}

// ScanRoot walks root and calls onDir once per compile directory, in lexical
// order. Unreadable directories are skipped.
func (c *Crawler) ScanRoot(root string, onDir func(dir string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		// Skip ignored directories
		if path != root {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			if abs, err := filepath.Abs(path); err == nil && c.skip[abs] {
				return filepath.SkipDir
			}
		}

		if c.isCompileDir(path) {
			onDir(path)
		}
		return nil
	})
}

// Find collects the compile directories under root.
func (c *Crawler) Find(root string) ([]string, error) {
	var dirs []string
	err := c.ScanRoot(root, func(dir string) {
		dirs = append(dirs, dir)
	})
	sort.Strings(dirs)
	return dirs, err
}

func (c *Crawler) isCompileDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, m := range c.markers {
			if strings.Contains(e.Name(), m) {
				return true
			}
		}
	}
	return false
}
