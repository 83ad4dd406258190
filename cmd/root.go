/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/fulmenhq/freezedfix/pkg/buildinfo"
	"github.com/fulmenhq/freezedfix/pkg/exitcode"
	"github.com/fulmenhq/freezedfix/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// exitError carries the process exit code for a failed run
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return exitcode.String(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// exitCodeFor maps an error returned by a command to a process exit code
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitcode.GeneralError
}

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freezedfix",
		Short: "Repair freezed mixin blocks with concatenated getter declarations",
		Long: `Freezedfix repairs generated freezed files whose mixin getters were emitted on a single line.

Run it from a Flutter/Dart project root. Every file matching lib/**/*.freezed.dart is scanned;
inside each "mixin _$" block, declarations joined by semicolons are split onto their own lines.

Examples:
   freezedfix                       # Fix all lib/**/*.freezed.dart files in place
   freezedfix --check               # Report files that need fixing without writing
   freezedfix --workers 4           # Fix files in parallel
   freezedfix config                # Show the effective configuration
   freezedfix version --extended    # Show build information`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		RunE: runFix,
	}

	// Global logging flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	addRunFlags(cmd.PersistentFlags())

	cmd.Flags().Bool("check", false, "Report files that need fixing without modifying them")
	cmd.Flags().Bool("quiet", false, "Suppress per-file output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("freezedfix {{.Version}}\n")

	return cmd
}

// addRunFlags registers the flags that override configuration values
func addRunFlags(fs *pflag.FlagSet) {
	fs.String("root", ".", "Project directory patterns are resolved against")
	fs.StringArray("pattern", nil, "Glob of files to fix, relative to --root (repeatable, default lib/**/*.freezed.dart)")
	fs.StringArray("type", nil, "Type keyword that starts a declaration (repeatable, replaces the defaults)")
	fs.Bool("generic-types", false, "Split before any Type<...> name declaration instead of the fixed keyword list")
	fs.Int("workers", 1, "Number of files processed concurrently")
	fs.Bool("fail-fast", false, "Stop at the first file that cannot be read or written")
	fs.String("ignore-file", ".freezedfixignore", "Ignore file with gitignore syntax, relative to --root")
	fs.Bool("no-ignore", false, "Do not apply the ignore file")
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newConfigCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Error("Command execution failed", logger.Err(err))
	}
	os.Exit(exitCodeFor(err))
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "freezedfix",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
