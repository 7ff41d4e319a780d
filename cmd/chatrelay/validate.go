package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wartem/llm-chat-lite/pkg/cli"
	"github.com/Wartem/llm-chat-lite/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides, apply defaults
and report every validation problem.

Examples:
  # Validate the default config
  chatrelay validate

  # Validate a specific file
  chatrelay validate --config /etc/chatrelay/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var valErr config.ValidationError
		if !errors.As(err, &valErr) {
			return cli.NewConfigError(cfgFile, err)
		}

		fmt.Fprintf(out, "✗ %s has %d problem(s):\n", cfgFile, len(valErr.Errors))
		for _, fe := range valErr.Errors {
			fmt.Fprintf(out, "  - %s\n", fe.Error())
		}
		return &cli.ExitError{Code: 1, Message: "configuration invalid", Silent: true}
	}

	fmt.Fprintf(out, "✓ %s is valid\n", cfgFile)
	fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "  instances:      %d\n", len(cfg.Instances))
	for _, inst := range cfg.Instances {
		fmt.Fprintf(out, "    %d  %s  %s\n", inst.Priority, inst.Name, inst.URL)
	}
	fmt.Fprintf(out, "  translation:    %t\n", cfg.Translation.IsEnabled())
	fmt.Fprintf(out, "  theme file:     %s\n", cfg.Theme.Path)
	return nil
}
