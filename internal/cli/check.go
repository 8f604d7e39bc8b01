package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"speckit/internal/ir"
	"speckit/internal/reconcile"
	"speckit/internal/registry"
)

// Reconciliation error codes (E2xx).
const (
	ErrCodeRegistry  = "E201" // registry missing or structurally invalid
	ErrCodeDrift     = "E202" // artifacts out of sync with the registry
	ErrCodeReconcile = "E203" // reconciliation could not run (bad markers, IO)
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <project-root>",
		Short: "Report service artifacts that are out of sync with the registry",
		Long: `Compare the service registry (services.yml) against the filesystem and
report every missing directory, missing required file, stale marker region
and unknown service type. Nothing is written. Exits 1 when any drift is
found; the full finding set is always reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	reg, err := loadValidatedRegistry(formatter, root)
	if err != nil {
		return err
	}

	report, checkErr := reconcile.Check(root, reg)
	if checkErr != nil {
		_ = formatter.Error(ErrCodeReconcile, checkErr.Error(), nil)
		return WrapExitError(ExitCommandError, "reconciliation check failed", checkErr)
	}

	if opts.Verbose {
		for _, svc := range reg.Services {
			formatter.VerboseLog("service %s (type %s): %s", svc.Name, svc.Type, svc.Description)
		}
	}

	if report.Clean() {
		if formatter.Format == "json" {
			return formatter.Success(report)
		}
		fmt.Fprintln(formatter.Writer, "✓ Everything is in sync")
		return nil
	}

	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeDrift,
			fmt.Sprintf("%d finding(s)", len(report.Findings)), report.Findings)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %d finding(s):\n", len(report.Findings))
		for _, f := range report.Findings {
			fmt.Fprintf(formatter.Writer, "  - %s\n", f)
		}
		fmt.Fprintln(formatter.Writer, "Run `speckit create-missing` to materialize missing artifacts.")
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d artifact(s) out of sync", len(report.Findings)))
}

// loadValidatedRegistry loads and validates <root>/services.yml. On
// failure the errors are already written and the returned error carries
// the exit code.
func loadValidatedRegistry(formatter *OutputFormatter, root string) (*ir.Registry, error) {
	path := filepath.Join(root, "services.yml")
	reg, err := registry.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeRegistry, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading registry", err)
	}

	if result := registry.Validate(reg); !result.OK {
		_ = formatter.Error(ErrCodeRegistry, fmt.Sprintf("registry %s is invalid", path), result.Errors)
		if formatter.Format != "json" {
			for _, msg := range result.Errors {
				fmt.Fprintf(formatter.Writer, "  - %s\n", msg)
			}
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("registry invalid with %d error(s)", len(result.Errors)))
	}

	return reg, nil
}
