// Package cli implements the remap command line surface: validating
// statement-set documents and running declared statements through a
// session-scoped executor.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

const rootLong = `remap runs SQL statements declared in a YAML statement set against a
SQLite database. Selects are served through a session-local result cache
keyed by statement, bounds, SQL, and bind values; writes invalidate it.

Statement sets are validated against an embedded schema before anything
touches the database. Every command works inside a single transaction:
query rolls back when it finishes, exec commits unless --dry-run is set.`

// NewRootCommand creates the root command for the remap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "remap",
		Short: "remap - statement mapping with session-local result caching",
		Long:  rootLong,
		Example: `  remap validate statements.yaml
  remap query users.byID -c statements.yaml --db app.db --args '{"id": 1}'
  remap exec users.rename -c statements.yaml --db app.db --args '{"id": 1, "name": "grace"}'`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(
		NewValidateCommand(opts),
		NewQueryCommand(opts),
		NewExecCommand(opts),
	)

	return cmd
}
