package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kslamph/flowcore/flowcore"
)

// ValidationResult is the machine-readable shape of a validate run.
type ValidationResult struct {
	Valid bool     `json:"valid"`
	Flows []string `json:"flows,omitempty"`
	Error string   `json:"error,omitempty"`
}

// NewValidateCommand builds the validate subcommand.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Load a flow catalog and report whether it decoded cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	catalog, err := flowcore.LoadCatalogFile(path)
	if err != nil {
		result := ValidationResult{Valid: false, Error: err.Error()}
		if writeErr := writeResult(cmd, opts.Format, result); writeErr != nil {
			return writeErr
		}
		return fmt.Errorf("validate: %w", err)
	}

	ids := make([]string, 0, catalog.Len())
	for _, flow := range catalog.Flows() {
		ids = append(ids, flow.ID)
	}

	return writeResult(cmd, opts.Format, ValidationResult{Valid: true, Flows: ids})
}

func writeResult(cmd *cobra.Command, format string, result ValidationResult) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if result.Valid {
		fmt.Fprintf(w, "ok: %d flow(s): %v\n", len(result.Flows), result.Flows)
		return nil
	}
	fmt.Fprintf(w, "invalid: %s\n", result.Error)
	return nil
}
