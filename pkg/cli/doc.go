/*
Package cli provides the helpers shared by the chatrelay commands.

Output Formatting:

Command results are rendered as text, JSON or CSV. Tabular results use
Table so every format can render them:

	table := cli.Table{
		Headers: []string{"NAME", "STATUS"},
		Rows:    [][]string{{"primary", "healthy"}},
	}
	formatter, err := cli.NewFormatter(cli.FormatText)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, table)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

Exit Codes:

Commands return *ExitError to choose the process exit status.
*/
package cli
