/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/freezedfix/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show freezedfix version information",
		Long: `Show the freezedfix binary version.
With --extended, build metadata (git commit, build date, module version) is included.
The global --json flag switches the output to a JSON object.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	info := buildinfo.Current()

	if jsonOutput {
		if !extended {
			info = buildinfo.Info{Version: info.Version, GoVersion: info.GoVersion, Platform: info.Platform}
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "freezedfix %s\n", info.Version)
	if extended {
		fmt.Fprintf(out, "Module version: %s\n", orUnknown(info.ModuleVersion))
		fmt.Fprintf(out, "Git commit: %s\n", orUnknown(shortCommit(info.GitCommit)))
		fmt.Fprintf(out, "Build date: %s\n", orUnknown(info.BuildDate))
	}
	fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
