/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/freezedfix/pkg/exitcode"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration a run would use, as YAML.

Values are merged from the built-in defaults, the first of .freezedfix.yaml,
.freezedfix.yml, .freezedfix.json or .freezedfix.toml found in --root, FREEZEDFIX_* environment
variables, and finally any flags given on the command line.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadEffectiveConfig(cmd)
	if err != nil {
		return &exitError{code: exitcode.ConfigError, err: err}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
