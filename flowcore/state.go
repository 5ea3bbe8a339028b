package flowcore

// FlowState is the cursor identifying "where we are": the currently
// executing flow and, once at least one step has materialized, the step
// within it. A nil StepID means the flow was just started and no step has
// been evaluated yet (the interpreter's "cold-start" case, spec.md
// §4.6.2 step 2).
type FlowState struct {
	FlowID string
	StepID *string
}

// NewFlowState starts a fresh cursor at the given flow, with no step yet.
func NewFlowState(flowID string) FlowState {
	return FlowState{FlowID: flowID}
}

// WithUpdatedID returns a copy of the cursor advanced to the given step id
// within the same flow.
func (s FlowState) WithUpdatedID(stepID string) FlowState {
	id := stepID
	return FlowState{FlowID: s.FlowID, StepID: &id}
}

// AsValue renders the cursor into the {"flow_id", "step_id"} mapping layout
// used for the FlowStateSlot and FlowStackSlot entries (spec.md §6).
func (s FlowState) AsValue() flowStateValue {
	return flowStateValue{FlowID: s.FlowID, StepID: s.StepID}
}

// flowStateFromAny parses a raw slot value back into a FlowState. It
// accepts both the struct form produced by this package and a generic
// map[string]any (e.g. decoded from JSON/YAML by another implementation),
// per spec.md §6: "Entries are serialization-stable: any implementation
// must accept what any other produces."
func flowStateFromAny(v any) (FlowState, bool) {
	switch val := v.(type) {
	case nil:
		return FlowState{}, false
	case FlowState:
		return val, true
	case *FlowState:
		if val == nil {
			return FlowState{}, false
		}
		return *val, true
	case flowStateValue:
		return FlowState{FlowID: val.FlowID, StepID: val.StepID}, true
	case *flowStateValue:
		if val == nil {
			return FlowState{}, false
		}
		return FlowState{FlowID: val.FlowID, StepID: val.StepID}, true
	case map[string]any:
		flowID, _ := val["flow_id"].(string)
		if flowID == "" {
			return FlowState{}, false
		}
		state := FlowState{FlowID: flowID}
		switch stepID := val["step_id"].(type) {
		case string:
			state.StepID = &stepID
		}
		return state, true
	default:
		return FlowState{}, false
	}
}
