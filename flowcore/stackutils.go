package flowcore

// StackUtils provides read-only stack-introspection helpers used for
// diagnosing a paused conversation. They are ancillary: none of them
// participate in Interpreter.SelectNextAction's decision procedure
// (spec.md §4.3, "used only by ancillary stack utilities outside the
// core loop"). Grounded on the original source's
// rasa/cdu/stack/utils.py (top_flow_frame, top_user_flow_frame,
// filled_slots_for_active_flow).
type StackUtils struct {
	catalog        *FlowsList
	patternFlowIDs map[string]bool
}

// NewStackUtils builds a StackUtils over the given catalog. patternFlowIDs
// names flows that are internal "pattern" flows (the generalization of
// the original's pattern_collect_information special-case) rather than
// ordinary user-authored flows, so TopUserFlowFrame and
// FilledSlotsForActiveFlow can skip them.
func NewStackUtils(catalog *FlowsList, patternFlowIDs ...string) *StackUtils {
	ids := make(map[string]bool, len(patternFlowIDs))
	for _, id := range patternFlowIDs {
		ids[id] = true
	}
	return &StackUtils{catalog: catalog, patternFlowIDs: ids}
}

func (u *StackUtils) isPattern(flowID string) bool {
	return u.patternFlowIDs[flowID]
}

// framesOf treats the current cursor (if any) as the top-most frame above
// the paused caller stack, oldest first.
func framesOf(state *FlowState, stack Stack) []FlowStackEntry {
	frames := make([]FlowStackEntry, 0, len(stack)+1)
	frames = append(frames, stack...)
	if state != nil {
		frames = append(frames, *state)
	}
	return frames
}

// TopFlowFrame returns the top-most frame across the current cursor and
// the paused stack, optionally skipping pattern-flow frames.
func (u *StackUtils) TopFlowFrame(state *FlowState, stack Stack, ignorePatternFlows bool) (FlowStackEntry, bool) {
	frames := framesOf(state, stack)
	for i := len(frames) - 1; i >= 0; i-- {
		if ignorePatternFlows && u.isPattern(frames[i].FlowID) {
			continue
		}
		return frames[i], true
	}
	return FlowStackEntry{}, false
}

// TopUserFlowFrame returns the top-most frame that is not a pattern flow
// (i.e. a flow defined by a bot builder, not an internal helper flow).
func (u *StackUtils) TopUserFlowFrame(state *FlowState, stack Stack) (FlowStackEntry, bool) {
	return u.TopFlowFrame(state, stack, true)
}

// FilledSlotsForActiveFlow walks the stack from the top, collecting the
// question slots already asked within the active user flow. It stops as
// soon as it has processed the first non-pattern ("user") flow frame.
func (u *StackUtils) FilledSlotsForActiveFlow(state *FlowState, stack Stack) []string {
	frames := framesOf(state, stack)

	seen := make(map[string]bool)
	var result []string

	for i := len(frames) - 1; i >= 0; i-- {
		frame := frames[i]
		flow, ok := u.catalog.FlowByID(frame.FlowID)
		if !ok {
			break
		}

		stepID := ""
		if frame.StepID != nil {
			stepID = *frame.StepID
		}
		for _, question := range flow.PreviouslyAskedCollectInformation(stepID) {
			if !seen[question] {
				seen[question] = true
				result = append(result, question)
			}
		}

		if !u.isPattern(frame.FlowID) {
			break
		}
	}

	return result
}
