package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Config string
	DB     string
	Args   string
	DryRun bool
}

// ExecResult is the success payload for the exec command.
type ExecResult struct {
	StatementID string `json:"statement_id"`
	Affected    int64  `json:"affected"`
	Committed   bool   `json:"committed"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <statement-id>",
		Short: "Execute a write statement",
		Long: `Execute a declared insert, update, or delete statement and commit.

With --dry-run the statement executes but the transaction rolls back,
reporting the count it would have affected.

Example:
  remap exec users.rename --config statements.yaml --db app.db --args '{"id":7,"name":"ada"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "statement-set document (required)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (overrides environment.dsn)")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "parameter values as a JSON object")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "execute but roll back instead of committing")
	cmd.MarkFlagRequired("config")

	return cmd
}

func runExec(opts *ExecOptions, statementID string, cmd *cobra.Command) error {
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

	affected, err := sess.executor.Update(ctx, st, param)
	if err != nil {
		formatter.Error(ErrCodeStatement, err.Error(), nil)
		return NewExitError(ExitFailure, "exec failed")
	}

	committed := false
	if opts.DryRun {
		formatter.VerboseLog("Dry run: rolling back %s", statementID)
		if err := sess.executor.Rollback(ctx, true); err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return NewExitError(ExitFailure, "rollback failed")
		}
	} else {
		if err := sess.executor.Commit(ctx, true); err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return NewExitError(ExitFailure, "commit failed")
		}
		committed = true
	}

	if opts.Format == "json" {
		return formatter.Success(ExecResult{
			StatementID: statementID,
			Affected:    affected,
			Committed:   committed,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) affected", affected)
	if !committed {
		fmt.Fprint(cmd.OutOrStdout(), " (rolled back)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
