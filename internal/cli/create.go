package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"speckit/internal/reconcile"
)

// CreateMissingOptions holds flags for the create-missing command.
type CreateMissingOptions struct {
	*RootOptions
}

// NewCreateMissingCommand creates the create-missing command.
func NewCreateMissingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateMissingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-missing <project-root>",
		Short: "Materialize missing service artifacts from their scaffold templates",
		Long: `Create every artifact the registry requires but the filesystem lacks:
service directories from their type's scaffold template, doc stubs,
per-service compose files, and managed marker regions in shared compose
files. Anything that already exists is left byte-for-byte untouched. A
registry type with no scaffold template aborts the run before anything is
written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateMissing(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCreateMissing(opts *CreateMissingOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	reg, err := loadValidatedRegistry(formatter, root)
	if err != nil {
		return err
	}

	report, createErr := reconcile.Create(root, reg)
	if createErr != nil {
		_ = formatter.Error(ErrCodeReconcile, createErr.Error(), nil)
		return WrapExitError(ExitCommandError, "creating missing artifacts", createErr)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	if len(report.Created) == 0 {
		fmt.Fprintln(formatter.Writer, "✓ Nothing to create, everything is in sync")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "✓ Created %d artifact(s):\n", len(report.Created))
	for _, path := range report.Created {
		fmt.Fprintf(formatter.Writer, "  + %s\n", path)
	}
	if formatter.Verbose {
		for _, path := range report.Existing {
			formatter.VerboseLog("unchanged %s", path)
		}
	}
	return nil
}
