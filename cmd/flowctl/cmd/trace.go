package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kslamph/flowcore/flowcore"
)

// TraceOptions holds the flags of the trace subcommand.
type TraceOptions struct {
	*RootOptions
	Catalog string
	Flow    string
	Intent  string
	Slots   []string // name=value pairs seeding the tracker before replay
}

// TraceResult is a single replayed turn, suitable for --format json.
type TraceResult struct {
	Action string   `json:"action"`
	Score  float64  `json:"score"`
	Events []string `json:"events,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// NewTraceCommand builds the trace subcommand: it seeds an in-memory
// tracker with the given slots and a synthetic trigger message, then prints
// the single turn the interpreter would predict.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <catalog.yaml>",
		Short: "Replay one turn through the interpreter and print the prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Intent, "intent", "", "intent name of the synthetic trigger message")
	cmd.Flags().StringArrayVar(&opts.Slots, "slot", nil, "name=value pair to seed on the tracker, repeatable")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	catalog, err := flowcore.LoadCatalogFile(path)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	var slots []flowcore.Slot
	var events []flowcore.SlotSet
	for _, pair := range opts.Slots {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("trace: --slot %q must be name=value", pair)
		}
		slots = append(slots, flowcore.Slot{Name: name})
		events = append(events, flowcore.SlotSet{Name: name, Value: value})
	}

	tracker := flowcore.NewInMemoryTracker(slots)
	tracker.ApplySlotSet(events)
	tracker.SetLatestActionName(flowcore.ActionListen)
	if opts.Intent != "" {
		tracker.SetLatestMessage(&flowcore.Message{Intent: flowcore.Intent{Name: opts.Intent}})
	}

	domain := flowcore.NewInMemoryDomain(tracker.Slots(), nil)
	gate := flowcore.NewTurnGate(nil)

	action, emitted, score, err := gate.Decide(tracker, domain, catalog)
	result := TraceResult{Action: action, Score: score}
	for _, e := range emitted {
		result.Events = append(result.Events, fmt.Sprintf("%s=%v", e.Name, e.Value))
	}
	if err != nil {
		result.Error = err.Error()
	}

	if writeErr := writeTraceResult(cmd, opts.Format, result); writeErr != nil {
		return writeErr
	}
	return err
}

func writeTraceResult(cmd *cobra.Command, format string, result TraceResult) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if result.Error != "" {
		fmt.Fprintf(w, "error: %s\n", result.Error)
		return nil
	}
	fmt.Fprintf(w, "action: %s (score %.2f)\n", result.Action, result.Score)
	for _, e := range result.Events {
		fmt.Fprintf(w, "  event: %s\n", e)
	}
	return nil
}
