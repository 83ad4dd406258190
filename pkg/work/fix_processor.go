package work

import (
	"context"
	"fmt"

	"github.com/fulmenhq/freezedfix/pkg/freezed"
	"github.com/fulmenhq/freezedfix/pkg/logger"
	"github.com/fulmenhq/freezedfix/pkg/safeio"
)

// FixProcessor implements WorkItemProcessor by running the mixin line fixer on each file
type FixProcessor struct {
	fixer *freezed.Fixer
	root  string
	check bool
}

// NewFixProcessor creates a processor. In check mode files are analysed but never written.
func NewFixProcessor(fixer *freezed.Fixer, root string, check bool) *FixProcessor {
	if fixer == nil {
		fixer = freezed.Default()
	}
	if root == "" {
		root = "."
	}
	return &FixProcessor{fixer: fixer, root: root, check: check}
}

// ProcessWorkItem fixes a single file. Errors are captured in the result, never returned.
func (p *FixProcessor) ProcessWorkItem(ctx context.Context, item *WorkItem) ExecutionResult {
	result := ExecutionResult{
		WorkItemID: item.ID,
		Path:       item.Path,
	}

	if err := ctx.Err(); err != nil {
		result.Status = StatusCancelled
		result.Err = err
		return result
	}

	data, err := safeio.ReadFileContained(p.root, item.Path)
	if err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("read %s: %w", item.Path, err)
		logger.Error("Failed to read file", logger.String("path", item.Path), logger.Err(err))
		return result
	}

	res := p.fixer.FixBytes(data)
	if !p.check && res.Changed {
		if err := safeio.WriteFilePreservePerms(item.Path, []byte(res.Content)); err != nil {
			result.Status = StatusFailed
			result.Err = fmt.Errorf("write %s: %w", item.Path, err)
			logger.Error("Failed to write file", logger.String("path", item.Path), logger.Err(err))
			return result
		}
	}

	for _, w := range res.Warnings {
		logger.Warn(w.Message,
			logger.String("path", item.Path),
			logger.String("kind", string(w.Kind)),
			logger.Int("line", w.Line))
	}

	result.Splits = res.Splits
	result.Warnings = len(res.Warnings)

	switch {
	case res.Skipped:
		result.Status = StatusSkipped
		logger.Warn("Skipping file that is not UTF-8 text", logger.String("path", item.Path))
	case !res.Changed:
		result.Status = StatusUnchanged
	case p.check:
		result.Status = StatusNeedsFix
	default:
		result.Status = StatusFixed
	}

	logger.Debug(fmt.Sprintf("Processed %s", item.Path),
		logger.String("status", string(result.Status)),
		logger.Int("blocks", res.Blocks),
		logger.Int("splits", res.Splits))
	return result
}
