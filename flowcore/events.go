package flowcore

// Reserved slot names carrying the interpreter's own cursor and call
// stack, and the reserved action/prefix names from spec.md §6.
const (
	// FlowStateSlot is the slot name under which the current FlowState
	// cursor is persisted.
	FlowStateSlot = "flow_state"
	// FlowStackSlot is the slot name under which the paused caller frames
	// are persisted, top-of-stack last.
	FlowStackSlot = "flow_stack"
	// ActionListen is the terminal action name emitted when a flow (and
	// its whole call stack) has finished and the system should wait for
	// the next user message.
	ActionListen = "action_listen"
	// FlowPrefix is prepended to a flow id to form the trigger action name
	// predicted by the idle branch (spec.md §4.6.2 step 1).
	FlowPrefix = "flow_"
)

// SlotSet is a single emitted slot mutation. The interpreter never writes
// to the tracker itself; it only returns a sequence of SlotSet events that
// the caller must apply, in order, before the next turn (spec.md §5
// ordering guarantees).
type SlotSet struct {
	Name  string
	Value any
}

// flowStateValue is the {"flow_id": ..., "step_id": ...} mapping layout
// used both for the FlowStateSlot value and for each entry of the
// FlowStackSlot sequence (spec.md §6, "Persisted state layout").
type flowStateValue struct {
	FlowID string  `json:"flow_id" yaml:"flow_id"`
	StepID *string `json:"step_id" yaml:"step_id"`
}
