package work

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/freezedfix/pkg/ignore"
	"github.com/fulmenhq/freezedfix/pkg/logger"
)

// WorkItem represents a single file to be processed
type WorkItem struct {
	ID string `json:"id"`
	// Path is Root joined with Rel, in OS form. It is what users see in output.
	Path string `json:"path"`
	// Rel is the slash-separated path relative to the planner root.
	Rel string `json:"rel"`
}

// PlannerConfig configures the work planner
type PlannerConfig struct {
	Root     string
	Patterns []string
	// Ignore excludes matching root-relative paths. Nil disables ignore handling.
	Ignore *ignore.Matcher
}

// Planner discovers the files a run will touch
type Planner struct {
	config PlannerConfig
	fsys   fs.FS
}

// NewPlanner creates a new work planner rooted at config.Root
func NewPlanner(config PlannerConfig) *Planner {
	if config.Root == "" {
		config.Root = "."
	}
	return &Planner{
		config: config,
		fsys:   os.DirFS(config.Root),
	}
}

// Discover expands every pattern, drops ignored paths and returns the union sorted by path.
func (p *Planner) Discover() ([]WorkItem, error) {
	seen := make(map[string]struct{})
	var rels []string
	ignored := 0

	for _, raw := range p.config.Patterns {
		pattern := normalizePattern(raw)

		base, _ := doublestar.SplitPattern(pattern)
		if _, err := fs.Stat(p.fsys, base); err != nil {
			logger.Debug("Pattern base does not exist", logger.String("pattern", raw), logger.String("base", base))
			continue
		}

		matches, err := doublestar.Glob(p.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", raw, err)
		}

		for _, rel := range matches {
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			if p.config.Ignore.IsIgnored(rel) {
				ignored++
				logger.Debug("Skipping ignored file", logger.String("path", rel))
				continue
			}
			rels = append(rels, rel)
		}
	}

	sort.Strings(rels)

	items := make([]WorkItem, 0, len(rels))
	for i, rel := range rels {
		items = append(items, WorkItem{
			ID:   fmt.Sprintf("item-%04d", i+1),
			Path: filepath.Join(p.config.Root, filepath.FromSlash(rel)),
			Rel:  rel,
		})
	}

	logger.Debug(fmt.Sprintf("Discovered %d files (%d ignored)", len(items), ignored))
	return items, nil
}

// normalizePattern turns a user pattern into the unrooted, slash form io/fs expects.
func normalizePattern(pattern string) string {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	for strings.HasPrefix(pattern, "./") {
		pattern = strings.TrimPrefix(pattern, "./")
	}
	pattern = strings.TrimLeft(pattern, "/")
	if pattern == "" {
		return "."
	}
	return path.Clean(pattern)
}
