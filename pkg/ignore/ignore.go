// Package ignore provides gitignore-style exclusion of generated files using go-git
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultFile is the ignore file looked up in the project root
const DefaultFile = ".freezedfixignore"

// Matcher reports whether root-relative paths are excluded
type Matcher struct {
	matcher  gitignore.Matcher
	patterns int
}

// NewMatcher loads file (relative to root) using gitignore syntax.
// A missing file yields a matcher that ignores nothing.
func NewMatcher(root, file string) (*Matcher, error) {
	if file == "" {
		file = DefaultFile
	}

	fs := osfs.New(root)
	f, err := fs.Open(filepath.ToSlash(filepath.Clean(file)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Matcher{matcher: gitignore.NewMatcher(nil)}, nil
		}
		return nil, fmt.Errorf("open ignore file %s: %w", file, err)
	}
	defer func() { _ = f.Close() }()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", file, err)
	}

	return &Matcher{
		matcher:  gitignore.NewMatcher(patterns),
		patterns: len(patterns),
	}, nil
}

// Patterns returns the number of loaded patterns
func (m *Matcher) Patterns() int {
	if m == nil {
		return 0
	}
	return m.patterns
}

// IsIgnored checks if a root-relative file path is excluded
func (m *Matcher) IsIgnored(rel string) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
