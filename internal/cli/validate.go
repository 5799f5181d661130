package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/remap/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationSummary is the success payload for the validate command.
type ValidationSummary struct {
	Path       string   `json:"path"`
	Scope      string   `json:"scope"`
	Statements []string `json:"statements"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <statement-set.yaml>",
		Short: "Validate a statement-set document",
		Long: `Validate a statement-set document against the schema and compile
every SQL template, without touching a database.

Example:
  remap validate statements.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := config.Load(path)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return NewExitError(ExitFailure, "validation failed")
	}
	formatter.VerboseLog("Loaded %d statement declaration(s) from %s", len(doc.Statements), path)

	set, err := doc.Build(permissiveResultTypes(doc))
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return NewExitError(ExitFailure, "validation failed")
	}

	summary := ValidationSummary{
		Path:       path,
		Scope:      string(set.Scope),
		Statements: set.IDs(),
	}
	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d statement(s), cache scope %q\n", set.Len(), set.Scope)
	for _, id := range summary.Statements {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
	}
	return nil
}
