package work

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fulmenhq/freezedfix/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of processing one work item
type Status string

const (
	StatusFixed     Status = "fixed"
	StatusUnchanged Status = "unchanged"
	StatusNeedsFix  Status = "needs_fix"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ExecutionResult represents the result of processing a work item
type ExecutionResult struct {
	WorkItemID string        `json:"work_item_id"`
	Path       string        `json:"path"`
	Status     Status        `json:"status"`
	Splits     int           `json:"splits,omitempty"`
	Warnings   int           `json:"warnings,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Processed reports whether the item ran to completion without error
func (r ExecutionResult) Processed() bool {
	switch r.Status {
	case StatusFixed, StatusUnchanged, StatusNeedsFix, StatusSkipped:
		return true
	}
	return false
}

// ExecutionSummary provides a summary of the execution
type ExecutionSummary struct {
	TotalItems    int               `json:"total_items"`
	Fixed         int               `json:"fixed"`
	Unchanged     int               `json:"unchanged"`
	NeedsFix      int               `json:"needs_fix"`
	Skipped       int               `json:"skipped"`
	Failed        int               `json:"failed"`
	Cancelled     int               `json:"cancelled"`
	Splits        int               `json:"splits"`
	Warnings      int               `json:"warnings"`
	TotalDuration time.Duration     `json:"total_duration"`
	Results       []ExecutionResult `json:"results"`
}

// Processed is the number of items that completed without error
func (s *ExecutionSummary) Processed() int {
	return s.Fixed + s.Unchanged + s.NeedsFix + s.Skipped
}

// WorkItemProcessor defines the interface for processing work items
type WorkItemProcessor interface {
	ProcessWorkItem(ctx context.Context, item *WorkItem) ExecutionResult
}

// DispatcherConfig configures the dispatcher
type DispatcherConfig struct {
	// MaxWorkers bounds concurrent items. Values below 1 mean sequential processing.
	MaxWorkers int
	// FailFast stops scheduling new items after the first failure.
	FailFast bool
	// ProgressCallback is invoked once per finished item, never concurrently.
	ProgressCallback func(result ExecutionResult)
}

// Dispatcher runs a processor over work items with a bounded worker pool
type Dispatcher struct {
	config    DispatcherConfig
	processor WorkItemProcessor
}

// NewDispatcher creates a new work dispatcher
func NewDispatcher(config DispatcherConfig, processor WorkItemProcessor) *Dispatcher {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	return &Dispatcher{
		config:    config,
		processor: processor,
	}
}

// Execute processes items and returns a summary with results in input order.
// A failing item never stops the others unless FailFast is set, in which case the
// first failure is returned as the error and unstarted items are marked cancelled.
func (d *Dispatcher) Execute(ctx context.Context, items []WorkItem) (*ExecutionSummary, error) {
	logger.Debug(fmt.Sprintf("Starting execution of %d work items with %d workers", len(items), d.config.MaxWorkers))
	start := time.Now()

	results := make([]ExecutionResult, len(items))
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.MaxWorkers)

	for i := range items {
		item := &items[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ExecutionResult{WorkItemID: item.ID, Path: item.Path, Status: StatusCancelled, Err: err}
				return nil
			}

			itemStart := time.Now()
			res := d.processor.ProcessWorkItem(gctx, item)
			res.Duration = time.Since(itemStart)
			results[i] = res

			if d.config.ProgressCallback != nil {
				progressMu.Lock()
				d.config.ProgressCallback(res)
				progressMu.Unlock()
			}

			if res.Status == StatusFailed && d.config.FailFast {
				if res.Err != nil {
					return res.Err
				}
				return fmt.Errorf("%s: processing failed", item.Path)
			}
			return nil
		})
	}

	waitErr := g.Wait()

	summary := &ExecutionSummary{
		TotalItems:    len(items),
		TotalDuration: time.Since(start),
		Results:       results,
	}
	for _, r := range results {
		summary.Splits += r.Splits
		summary.Warnings += r.Warnings
		switch r.Status {
		case StatusFixed:
			summary.Fixed++
		case StatusUnchanged:
			summary.Unchanged++
		case StatusNeedsFix:
			summary.NeedsFix++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		case StatusCancelled:
			summary.Cancelled++
		}
	}

	logger.Debug(fmt.Sprintf("Execution completed: %d processed, %d failed, %d cancelled in %v",
		summary.Processed(), summary.Failed, summary.Cancelled, summary.TotalDuration))
	return summary, waitErr
}
