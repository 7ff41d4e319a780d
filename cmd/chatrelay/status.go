package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Wartem/llm-chat-lite/pkg/cli"
	"github.com/Wartem/llm-chat-lite/pkg/config"
	"github.com/Wartem/llm-chat-lite/pkg/failover"
)

var statusFlags struct {
	output  string
	timeout time.Duration
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe every configured backend instance",
	Long: `Probe every configured backend instance once and print the result.

Instances are listed in priority order. The command exits with code 2 when
no instance is healthy, so it can be used in scripts.

Examples:
  # Show instance health as a table
  chatrelay status

  # JSON output for tooling
  chatrelay status --output json`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusFlags.output, "output", "o", "text", "output format: text, json, csv")
	statusCmd.Flags().DurationVar(&statusFlags.timeout, "timeout", 10*time.Second, "overall probe timeout")
}

func showStatus(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(statusFlags.output))
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	_, manager := newManager(cfg, nil)

	ctx, cancel := context.WithTimeout(cmd.Context(), statusFlags.timeout)
	defer cancel()

	statuses := manager.Status(ctx)
	if err := formatter.FormatTo(cmd.OutOrStdout(), statusTable(statuses)); err != nil {
		return err
	}

	for _, st := range statuses {
		if st.Status == failover.StatusHealthy {
			return nil
		}
	}
	return &cli.ExitError{Code: 2, Message: "no healthy instance", Silent: true}
}

func statusTable(statuses []failover.InstanceStatus) cli.Table {
	table := cli.Table{Headers: []string{"NAME", "URL", "PRIORITY", "STATUS", "CURRENT", "DETAIL"}}
	for _, st := range statuses {
		detail := strings.Join(st.Models, ",")
		if st.Error != "" {
			detail = st.Error
		}
		table.Rows = append(table.Rows, []string{
			st.Name,
			st.URL,
			strconv.Itoa(st.Priority),
			st.Status,
			strconv.FormatBool(st.Current),
			detail,
		})
	}
	return table
}
