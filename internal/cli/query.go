package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/remap/internal/mapping"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Config string
	DB     string
	Args   string
	Offset int
	Limit  int
}

// QueryResult is the success payload for the query command.
type QueryResult struct {
	StatementID string `json:"statement_id"`
	RowCount    int    `json:"row_count"`
	Rows        []any  `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <statement-id>",
		Short: "Execute a select statement",
		Long: `Execute a declared select statement and print its rows.

Parameter values come from --args as a JSON object keyed by property name.

Example:
  remap query users.byID --config statements.yaml --db app.db --args '{"id":7}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "statement-set document (required)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (overrides environment.dsn)")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "parameter values as a JSON object")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", mapping.NoRowLimit, "maximum rows to return")
	cmd.MarkFlagRequired("config")

	return cmd
}

func runQuery(opts *QueryOptions, statementID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	param, err := parseArgs(opts.Args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx, opts.Config, opts.DB, opts.Verbose)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	st, err := sess.resolveStatement(statementID)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Executing %s against %s", statementID, opts.Config)

	bounds := mapping.RowBounds{Offset: opts.Offset, Limit: opts.Limit}
	rows, err := sess.executor.Query(ctx, st, param, bounds, nil)
	if err != nil {
		formatter.Error(ErrCodeStatement, err.Error(), nil)
		return NewExitError(ExitFailure, "query failed")
	}

	if opts.Format == "json" {
		return formatter.Success(QueryResult{
			StatementID: statementID,
			RowCount:    len(rows),
			Rows:        rows,
		})
	}
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(line))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s)\n", len(rows))
	return nil
}

// parseArgs decodes the --args JSON object into the parameter map.
func parseArgs(raw string) (map[string]any, error) {
	var param map[string]any
	if err := json.Unmarshal([]byte(raw), &param); err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "invalid --args JSON", Err: err}
	}
	return param, nil
}
