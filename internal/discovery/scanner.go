package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner scans a workspace for VUnit run scripts
type Scanner struct {
	skipDirs map[string]bool
	glob     string
	exclude  []string
}

// NewScanner creates a new Scanner. glob and exclude are doublestar patterns
// matched against slash separated paths relative to the scanned root.
func NewScanner(skipDirs []string, glob string, exclude []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, glob: glob, exclude: exclude}
}

// SkipDir reports whether a directory with this name is never scanned
func (s *Scanner) SkipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return s.skipDirs[name]
}

// Matches reports whether rel, a slash separated workspace relative path,
// selects a run script.
func (s *Scanner) Matches(rel string) bool {
	ok, err := doublestar.Match(s.glob, rel)
	if err != nil || !ok {
		return false
	}
	for _, pattern := range s.exclude {
		if excluded, err := doublestar.Match(pattern, rel); err == nil && excluded {
			return false
		}
	}
	return true
}

// Validate checks the glob and exclude patterns
func (s *Scanner) Validate() error {
	if !doublestar.ValidatePattern(s.glob) {
		return fmt.Errorf("invalid script glob %q", s.glob)
	}
	for _, pattern := range s.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid script exclude pattern %q", pattern)
		}
	}
	return nil
}

// Scan finds all run scripts below root. Paths are absolute and sorted.
func (s *Scanner) Scan(root string) ([]string, error) {
	var scripts []string

	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace is not a directory: %s", root)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && s.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if s.Matches(filepath.ToSlash(rel)) {
			scripts = append(scripts, path)
		}
		return nil
	})

	sort.Strings(scripts)
	return scripts, err
}
