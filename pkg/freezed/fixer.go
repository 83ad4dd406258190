// Package freezed repairs generated freezed mixin blocks whose getter declarations
// were emitted on a single line.
//
// A block starts at a line beginning with "mixin _$" and ends at the first following
// line that begins with a doc comment ("///") or an "@JsonKey(includeFromJson" annotation.
// Inside a block every "; <type>" boundary is broken onto a new line.
package freezed

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fulmenhq/freezedfix/pkg/format/finalizer"
	"github.com/fulmenhq/freezedfix/pkg/safeio"
)

const (
	BlockStart            = "mixin _$"
	docCommentMarker      = "///"
	includeFromJSONMarker = "@JsonKey(includeFromJson"
)

// DefaultTypes are the type keywords a declaration may start with.
var DefaultTypes = []string{"String", "int", "bool", "DateTime", "Map<String, dynamic>"}

// Options configures the split rule.
type Options struct {
	// Types replaces DefaultTypes when non-empty. Entries are matched literally.
	Types []string
	// GenericTypes splits before any declaration shaped like
	// "[@Annotation(...)] Identifier[<...>][?] name" instead of the fixed keyword list.
	GenericTypes bool
}

// WarningKind classifies block diagnostics.
type WarningKind string

const (
	// WarnUnterminated means the file ended while a block was still open.
	WarnUnterminated WarningKind = "unterminated"
	// WarnReopened means a block start appeared while another block was open.
	WarnReopened WarningKind = "reopened"
)

// Warning reports a suspicious block boundary. Line is 1-based.
type Warning struct {
	Kind    WarningKind
	Line    int
	Message string
}

// Result describes the outcome of fixing one file's content.
type Result struct {
	Content  string
	Changed  bool
	Splits   int
	Blocks   int
	Skipped  bool
	Warnings []Warning
}

// Fixer rewrites mixin blocks. It holds no per-file state and is safe for concurrent use.
type Fixer struct {
	split *regexp.Regexp
}

// New compiles a Fixer for opts.
func New(opts Options) (*Fixer, error) {
	pattern := keywordPattern(opts.Types)
	if opts.GenericTypes {
		pattern = genericPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile split pattern: %w", err)
	}
	return &Fixer{split: re}, nil
}

var defaultFixer = mustNew(Options{})

func mustNew(opts Options) *Fixer {
	f, err := New(opts)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the Fixer for the built-in type keywords.
func Default() *Fixer {
	return defaultFixer
}

// genericPattern recognises a declaration start: optional annotations, a type identifier
// with optional generic arguments and nullability, then whitespace and the next identifier.
const genericPattern = `;\s*((?:@[A-Za-z_$][\w$]*(?:\([^;]*?\))?\s*)*[A-Za-z_$][\w$]*(?:<[^;]*?>)?\??\s+[A-Za-z_$])`

func keywordPattern(types []string) string {
	quoted := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		for _, t := range DefaultTypes {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	alts := strings.Join(quoted, "|")
	return `;\s*(@JsonKey[^;]*?(?:` + alts + `)|` + alts + `)`
}

// FixLine splits every concatenated declaration in line, inserting lineEnding after each
// semicolon. It returns the rewritten line and the number of splits.
func (f *Fixer) FixLine(line, lineEnding string) (string, int) {
	n := len(f.split.FindAllStringIndex(line, -1))
	if n == 0 {
		return line, 0
	}
	return f.split.ReplaceAllString(line, ";"+lineEnding+"${1}"), n
}

// FixContent rewrites the mixin blocks in content. Lines outside blocks are never touched.
func (f *Fixer) FixContent(content string) Result {
	lineEnding := finalizer.DetectLineEnding(content)
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	var res Result
	inBlock := false
	blockLine := 0

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, BlockStart):
			if inBlock {
				res.Warnings = append(res.Warnings, Warning{
					Kind:    WarnReopened,
					Line:    i + 1,
					Message: fmt.Sprintf("block opened at line %d was never closed before a new block", blockLine),
				})
			}
			inBlock = true
			blockLine = i + 1
			res.Blocks++
			out = append(out, line)
		case inBlock && (strings.HasPrefix(line, docCommentMarker) || strings.HasPrefix(line, includeFromJSONMarker)):
			inBlock = false
			out = append(out, line)
		case inBlock:
			fixed, n := f.FixLine(line, lineEnding)
			res.Splits += n
			out = append(out, fixed)
		default:
			out = append(out, line)
		}
	}

	if inBlock {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnUnterminated,
			Line:    blockLine,
			Message: "block has no closing doc comment or @JsonKey(includeFromJson annotation; every following line was treated as part of it",
		})
	}

	res.Content = strings.Join(out, "\n")
	res.Changed = res.Content != content
	return res
}

// FixBytes rewrites raw file data. Data that does not look like UTF-8 text is
// returned unchanged with Skipped set.
func (f *Fixer) FixBytes(data []byte) Result {
	if !finalizer.IsProcessableText(data) {
		return Result{Content: string(data), Skipped: true}
	}
	return f.FixContent(string(data))
}

// FixFile fixes the file at path. The file is only rewritten when write is set and the
// content changed.
func (f *Fixer) FixFile(path string, write bool) (Result, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-selected path
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}

	res := f.FixBytes(data)
	if write && res.Changed {
		if err := safeio.WriteFilePreservePerms(path, []byte(res.Content)); err != nil {
			return res, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return res, nil
}

// Fix rewrites the file at path in place using the default type keywords.
func Fix(path string) error {
	_, err := Default().FixFile(path, true)
	return err
}
