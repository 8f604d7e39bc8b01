package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"speckit/internal/emitter"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	DryRun bool // render without writing
}

// GenerateResult is the success payload of the generate command.
type GenerateResult struct {
	Files     []string `json:"files"`
	Written   []string `json:"written,omitempty"`
	Unchanged []string `json:"unchanged,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <project-root>",
		Short: "Compile spec documents and emit generated Go source",
		Long: `Compile every spec document under the project root, resolve model
variants and emit the generated source files (shared models, per-service
contracts and event adapters).

Emission is deterministic: the same spec documents produce byte-identical
files regardless of declaration order. Files whose content has not changed
are left untouched.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "render without writing files")

	return cmd
}

func runGenerate(opts *GenerateOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, _, err := loadValidatedSet(formatter, root)
	if err != nil {
		return err
	}

	files, renderErr := emitter.Render(set)
	if renderErr != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("rendering: %v", renderErr), nil)
		return WrapExitError(ExitCommandError, "rendering failed", renderErr)
	}

	result := &GenerateResult{}
	for _, f := range files {
		result.Files = append(result.Files, f.Path)
		formatter.VerboseLog("Rendered %s (%d bytes)", f.Path, len(f.Content))
	}

	if !opts.DryRun {
		writeResult, writeErr := emitter.Write(root, files)
		if writeErr != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing generated files: %v", writeErr), nil)
			return WrapExitError(ExitCommandError, "writing generated files", writeErr)
		}
		result.Written = writeResult.Written
		result.Unchanged = writeResult.Unchanged
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if opts.DryRun {
		fmt.Fprintf(formatter.Writer, "✓ Rendered %d file(s) (dry run)\n", len(result.Files))
		for _, path := range result.Files {
			fmt.Fprintf(formatter.Writer, "  %s\n", path)
		}
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d file(s): %d written, %d unchanged\n",
		len(result.Files), len(result.Written), len(result.Unchanged))
	for _, path := range result.Written {
		fmt.Fprintf(formatter.Writer, "  wrote %s\n", path)
	}
	if formatter.Verbose {
		for _, path := range result.Unchanged {
			fmt.Fprintf(formatter.Writer, "  unchanged %s\n", path)
		}
	}
	return nil
}
