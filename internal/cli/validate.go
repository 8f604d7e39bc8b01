package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"speckit/internal/compiler"
	"speckit/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationSummary is the success payload of the validate command.
type ValidationSummary struct {
	Models   int `json:"models"`
	Domains  int `json:"domains"`
	Events   int `json:"events"`
	Files    int `json:"files"`
	Services int `json:"services"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <project-root>",
		Short: "Load and validate spec documents without emitting anything",
		Long: `Load every spec document under the project root and run full-set
validation: schema rules, cross-references between models, operations and
event channels. Nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set, fileCount, err := loadValidatedSet(formatter, root)
	if err != nil {
		return err
	}

	services := make(map[string]bool)
	for _, d := range set.Domains {
		services[d.Service] = true
	}
	summary := ValidationSummary{
		Models:   len(set.Models),
		Domains:  len(set.Domains),
		Events:   len(set.Events),
		Files:    fileCount,
		Services: len(services),
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d model(s), %d domain(s), %d event channel(s) across %d file(s)\n",
		summary.Models, summary.Domains, summary.Events, summary.Files)
	return nil
}

// loadValidatedSet loads every spec document under root and runs full-set
// validation. On failure the errors are already written in the configured
// format and the returned error carries the exit code.
func loadValidatedSet(formatter *OutputFormatter, root string) (*ir.SpecSet, int, error) {
	result, loadErrs := LoadSpecs(root, LoadModeCollectAll)
	if len(loadErrs) > 0 {
		return nil, 0, outputSpecErrors(formatter, loadErrs)
	}
	formatter.VerboseLog("Loaded %d CUE file(s) from %s", result.FileCount, root)

	if vErrs := compiler.ValidateSet(result.Set); len(vErrs) > 0 {
		errs := make([]error, len(vErrs))
		for i := range vErrs {
			errs[i] = vErrs[i]
		}
		return nil, 0, outputSpecErrors(formatter, errs)
	}

	return result.Set, result.FileCount, nil
}

// outputSpecErrors writes every load/validation error in the configured
// format. Load and IO problems exit 2; spec content problems exit 1.
func outputSpecErrors(formatter *OutputFormatter, errs []error) error {
	exitCode := ExitFailure
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := specErrorCode(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
		if isCommandErrorCode(code) {
			exitCode = ExitCommandError
		}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status:  "error",
			Error:   &cliErrors[0],
			Data:    cliErrors, // Include all errors in data
			TraceID: formatter.TraceID,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(exitCode, fmt.Sprintf("spec validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Spec validation failed")
	fmt.Fprintln(formatter.Writer)
	for i, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErrors[i].Code, cliErrors[i].Message)
	}
	return NewExitError(exitCode, fmt.Sprintf("spec validation failed with %d error(s)", len(errs)))
}

// specErrorCode extracts error code and message from a load or validation
// error.
func specErrorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var vErr compiler.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Code, fmt.Sprintf("%s: %s", vErr.Field, vErr.Message)
	}
	return ErrCodeGeneric, err.Error()
}

// isCommandErrorCode reports whether a code describes a command-level
// problem (bad paths, unreadable files) rather than spec content.
func isCommandErrorCode(code string) bool {
	return strings.HasPrefix(code, "E0") && code != ErrCodeCompile
}
