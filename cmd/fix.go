/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fulmenhq/freezedfix/pkg/config"
	"github.com/fulmenhq/freezedfix/pkg/exitcode"
	"github.com/fulmenhq/freezedfix/pkg/freezed"
	"github.com/fulmenhq/freezedfix/pkg/ignore"
	"github.com/fulmenhq/freezedfix/pkg/logger"
	"github.com/fulmenhq/freezedfix/pkg/work"
	"github.com/spf13/cobra"
)

// loadEffectiveConfig merges defaults, the project config file, environment and explicit flags
func loadEffectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	root, _ := cmd.Flags().GetString("root")

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runFix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadEffectiveConfig(cmd)
	if err != nil {
		return &exitError{code: exitcode.ConfigError, err: err}
	}
	if cfg.Source != "" {
		logger.Info("Loaded configuration", logger.String("file", cfg.Source))
	}

	checkOnly, _ := cmd.Flags().GetBool("check")
	quiet, _ := cmd.Flags().GetBool("quiet")

	fixer, err := freezed.New(freezed.Options{Types: cfg.Types, GenericTypes: cfg.GenericTypes})
	if err != nil {
		return &exitError{code: exitcode.ConfigError, err: err}
	}

	var matcher *ignore.Matcher
	if !cfg.NoIgnore {
		matcher, err = ignore.NewMatcher(cfg.Root, cfg.IgnoreFile)
		if err != nil {
			return &exitError{code: exitcode.ConfigError, err: err}
		}
		if n := matcher.Patterns(); n > 0 {
			logger.Info("Loaded ignore file", logger.String("file", cfg.IgnoreFile), logger.Int("patterns", n))
		}
	}

	items, err := work.NewPlanner(work.PlannerConfig{
		Root:     cfg.Root,
		Patterns: cfg.Patterns,
		Ignore:   matcher,
	}).Discover()
	if err != nil {
		return &exitError{code: exitcode.FileSystemError, err: err}
	}

	out := cmd.OutOrStdout()
	dispatcher := work.NewDispatcher(work.DispatcherConfig{
		MaxWorkers: cfg.Workers,
		FailFast:   cfg.FailFast,
		ProgressCallback: func(r work.ExecutionResult) {
			if !quiet {
				printProgress(out, r, checkOnly)
			}
		},
	}, work.NewFixProcessor(fixer, cfg.Root, checkOnly))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary, runErr := dispatcher.Execute(ctx, items)

	printSummary(out, summary, checkOnly)

	switch {
	case runErr != nil:
		return &exitError{code: exitcode.FileSystemError, err: runErr}
	case summary.Failed > 0:
		return &exitError{code: exitcode.FileSystemError, err: fmt.Errorf("%d of %d files could not be processed", summary.Failed, summary.TotalItems)}
	case summary.Cancelled > 0:
		return &exitError{code: exitcode.GeneralError, err: fmt.Errorf("run interrupted, %d files not processed", summary.Cancelled)}
	case checkOnly && summary.NeedsFix > 0:
		return &exitError{code: exitcode.CheckFailed, err: fmt.Errorf("%d files need fixing", summary.NeedsFix)}
	}
	return nil
}

func printProgress(out io.Writer, r work.ExecutionResult, checkOnly bool) {
	switch r.Status {
	case work.StatusUnchanged:
		if !checkOnly {
			fmt.Fprintf(out, "Fixed: %s\n", r.Path)
		}
	case work.StatusFixed:
		fmt.Fprintf(out, "Fixed: %s\n", r.Path)
	case work.StatusNeedsFix:
		fmt.Fprintf(out, "Needs fix: %s\n", r.Path)
	case work.StatusSkipped:
		fmt.Fprintf(out, "Skipped: %s\n", r.Path)
	case work.StatusFailed:
		fmt.Fprintf(out, "Failed: %s\n", r.Path)
	}
}

func printSummary(out io.Writer, s *work.ExecutionSummary, checkOnly bool) {
	switch {
	case checkOnly:
		fmt.Fprintf(out, "%d of %d files need fixing\n", s.NeedsFix, s.TotalItems)
	case s.Failed == 0 && s.Cancelled == 0:
		fmt.Fprintf(out, "✅ Fixed %d files\n", s.TotalItems)
	default:
		line := fmt.Sprintf("Fixed %d of %d files, %d failed", s.Processed(), s.TotalItems, s.Failed)
		if s.Cancelled > 0 {
			line += fmt.Sprintf(", %d cancelled", s.Cancelled)
		}
		fmt.Fprintln(out, line)
	}
}
