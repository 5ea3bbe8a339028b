package flowcore

import "log"

// defaultMaxLinkDepth bounds recursive LinkStep expansion and link-chain
// evaluation within a single turn, defending against malformed catalogs
// (spec.md §5, "a reasonable implementation caps recursive link expansion
// at a fixed depth e.g. 32").
const defaultMaxLinkDepth = 32

// Interpreter advances one step per turn, producing (action, events,
// confidence) from a tracker snapshot (spec.md §4.6, "Flow Interpreter").
// It performs no I/O and holds no state beyond the single turn it was
// constructed for: FromTracker reconstructs it from persisted slots every
// time.
type Interpreter struct {
	state     *FlowState // nil when idle
	stack     Stack
	catalog   *FlowsList
	evaluator *PredicateEvaluator
	logger    *log.Logger
	maxDepth  int
}

// FromTracker constructs an interpreter from the tracker's persisted
// FlowStateSlot and FlowStackSlot. If FlowStateSlot is unset, the
// interpreter starts in the idle phase (spec.md §4.6.1).
func FromTracker(tracker Tracker, catalog *FlowsList) *Interpreter {
	interp := &Interpreter{
		catalog:   catalog,
		evaluator: NewPredicateEvaluator(),
		logger:    log.Default(),
		maxDepth:  defaultMaxLinkDepth,
	}
	if state, ok := flowStateFromAny(tracker.GetSlot(FlowStateSlot)); ok {
		interp.state = &state
	}
	interp.stack = stackFromAny(tracker.GetSlot(FlowStackSlot))
	return interp
}

// SetLogger overrides the interpreter's logger (default log.Default()).
func (interp *Interpreter) SetLogger(logger *log.Logger) {
	if logger != nil {
		interp.logger = logger
	}
}

// SelectNextAction is the single per-turn entry point (spec.md §4.6.1):
// it returns the predicted action name (or "" to abstain), the slot
// mutation events to apply in order, and a confidence score in [0, 1].
func (interp *Interpreter) SelectNextAction(tracker Tracker, domain Domain) (string, []SlotSet, float64, error) {
	return interp.selectNextAction(tracker, domain, 0)
}

func (interp *Interpreter) selectNextAction(tracker Tracker, domain Domain, depth int) (string, []SlotSet, float64, error) {
	if depth > interp.maxDepth {
		return "", nil, 0, newFlowError(KindDepthExceeded, "link cycle or depth exceeded")
	}

	currentFlow, currentStep, err := interp.currentFlowAndStep()
	if err != nil {
		return "", nil, 0, err
	}

	if currentFlow == nil {
		if flow, ok := FindStartable(tracker, interp.catalog); ok {
			interp.logger.Printf("[flowcore] startable flow found: %s", flow.ID)
			return FlowPrefix + flow.ID, nil, 1.0, nil
		}
		interp.logger.Printf("[flowcore] no startable flow found, abstaining")
		return "", nil, 0, nil
	}

	var nextStep FlowStep
	switch {
	case currentStep == nil:
		nextStep, err = interp.coldStart(currentFlow, tracker, domain)
	case !stepCompleted(currentStep, tracker):
		return "", nil, 0, newFlowError(KindStateInconsistency, "not quite sure what to do here yet")
	default:
		nextStep, err = interp.nextStepAfter(currentStep, currentFlow.ID, tracker, domain)
	}
	if err != nil {
		return "", nil, 0, err
	}

	if nextStep != nil {
		action, events, err := interp.materialize(nextStep, currentFlow.ID, tracker, domain, depth)
		if err != nil {
			return "", nil, 0, err
		}
		return action, events, 1.0, nil
	}

	return interp.finishFlow(currentFlow, tracker, domain, depth)
}

// currentFlowAndStep resolves the interpreter's cursor into the concrete
// Flow and FlowStep it names, per spec.md §4.6.2's "Let S = current
// FlowState ... cur_flow = S's flow ... cur_step = step within cur_flow".
func (interp *Interpreter) currentFlowAndStep() (*Flow, FlowStep, error) {
	if interp.state == nil {
		return nil, nil, nil
	}

	flow, ok := interp.catalog.FlowByID(interp.state.FlowID)
	if !ok {
		return nil, nil, newFlowError(KindConfiguration, "flow %q not found in catalog", interp.state.FlowID)
	}

	if interp.state.StepID == nil {
		return flow, nil, nil
	}

	step, ok := flow.StepByID(*interp.state.StepID)
	if !ok {
		return nil, nil, newFlowError(KindConfiguration, "step %q not found in flow %q", *interp.state.StepID, flow.ID)
	}
	return flow, step, nil
}

// coldStart implements spec.md §4.6.2 step 2: the state points at a
// just-started flow. If the designated first step is a UserMessageStep it
// is skipped and its own links are evaluated to find the real first step;
// otherwise the first step itself is used.
func (interp *Interpreter) coldStart(flow *Flow, tracker Tracker, domain Domain) (FlowStep, error) {
	first, ok := flow.FirstStep()
	if !ok {
		return nil, newFlowError(KindConfiguration, "flow %q has no start step", flow.ID)
	}

	if _, isTrigger := first.(*UserMessageStep); isTrigger {
		return interp.nextStepAfter(first, flow.ID, tracker, domain)
	}
	return first, nil
}

// nextStepAfter evaluates a step's outgoing links and resolves the
// resulting target step id within flowID (spec.md §4.6.3).
func (interp *Interpreter) nextStepAfter(step FlowStep, flowID string, tracker Tracker, domain Domain) (FlowStep, error) {
	target, ok, err := evaluateLinks(step.Next(), condEval(interp.evaluator, tracker, domain))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	next, found := interp.catalog.StepByID(target, flowID)
	if !found {
		return nil, newFlowError(KindConfiguration, "step %q not found in flow %q", target, flowID)
	}
	return next, nil
}

// materialize produces the (action, events) for a resolved next step,
// implementing spec.md §4.6.4. It also carries the side effect of
// pushing a caller frame for LinkStep, and recursing into the callee flow
// to obtain its first action.
func (interp *Interpreter) materialize(step FlowStep, flowID string, tracker Tracker, domain Domain, depth int) (string, []SlotSet, error) {
	cursor := FlowState{FlowID: flowID}

	switch s := step.(type) {
	case *QuestionStep:
		return interp.materializeQuestion(s, cursor, tracker)

	case *ActionStep:
		if s.Action == "" {
			return "", nil, newFlowError(KindConfiguration, "action not specified")
		}
		events := []SlotSet{{Name: FlowStateSlot, Value: cursor.WithUpdatedID(s.StepID()).AsValue()}}
		return s.Action, events, nil

	case *LinkStep:
		return interp.materializeLink(s, cursor, tracker, domain, depth)

	default:
		return "", nil, newFlowError(KindConfiguration, "unknown step type")
	}
}

func (interp *Interpreter) materializeQuestion(step *QuestionStep, cursor FlowState, tracker Tracker) (string, []SlotSet, error) {
	initial := slotInitialValue(tracker.Slots(), step.Question)
	current := tracker.GetSlot(step.Question)

	var events []SlotSet
	if step.SkipIfFilled {
		// spec.md §9 open question 2: skip_if_filled is detected but the
		// interpreter does not actually skip the step; it still emits the
		// question action below. Preserved unchanged from the original.
	} else if !valuesEqual(current, initial) {
		events = append(events, SlotSet{Name: step.Question, Value: initial})
	}

	events = append(events, SlotSet{Name: FlowStateSlot, Value: cursor.WithUpdatedID(step.StepID()).AsValue()})
	return "question_" + step.Question, events, nil
}

func (interp *Interpreter) materializeLink(step *LinkStep, cursor FlowState, tracker Tracker, domain Domain, depth int) (string, []SlotSet, error) {
	interp.stack = interp.stack.Push(cursor.WithUpdatedID(step.StepID()))
	interp.logger.Printf("[flowcore] pushing caller frame flow=%s step=%s", cursor.FlowID, step.StepID())
	events := []SlotSet{{Name: FlowStackSlot, Value: interp.stack}}

	callee := &Interpreter{
		state:     &FlowState{FlowID: step.Link},
		stack:     interp.stack,
		catalog:   interp.catalog,
		evaluator: interp.evaluator,
		logger:    interp.logger,
		maxDepth:  interp.maxDepth,
	}
	action, calleeEvents, _, err := callee.selectNextAction(tracker, domain, depth+1)
	if err != nil {
		return "", nil, err
	}
	interp.stack = callee.stack

	events = append(events, calleeEvents...)
	return action, events, nil
}

// finishFlow implements spec.md §4.6.2 step 6: the current flow has no
// next step left, so it has finished. Ephemeral question slots reset,
// then either the whole interpretation ends (empty stack) or the top
// caller frame is popped and resumed.
func (interp *Interpreter) finishFlow(flow *Flow, tracker Tracker, domain Domain, depth int) (string, []SlotSet, float64, error) {
	events := resetEphemeralSlots(flow, tracker)

	if interp.stack.IsEmpty() {
		events = append(events, SlotSet{Name: FlowStateSlot, Value: nil})
		return ActionListen, events, 1.0, nil
	}

	caller, rest := interp.stack.Pop()
	interp.stack = rest
	interp.logger.Printf("[flowcore] popping caller frame flow=%s step=%v", caller.FlowID, caller.StepID)

	if caller.StepID == nil {
		return "", nil, 0, newFlowError(KindConfiguration, "caller frame for flow %q has no step id", caller.FlowID)
	}

	callerStep, ok := interp.catalog.StepByID(*caller.StepID, caller.FlowID)
	if !ok {
		return "", nil, 0, newFlowError(KindConfiguration, "caller step %q not found in flow %q", *caller.StepID, caller.FlowID)
	}

	nextStep, err := interp.nextStepAfter(callerStep, caller.FlowID, tracker, domain)
	if err != nil {
		return "", nil, 0, err
	}

	action, materializeEvents, err := interp.materialize(nextStep, caller.FlowID, tracker, domain, depth)
	if err != nil {
		return "", nil, 0, err
	}

	var updatedStepID *string
	if nextStep != nil {
		id := nextStep.StepID()
		updatedStepID = &id
	}
	updatedState := FlowState{FlowID: caller.FlowID, StepID: updatedStepID}

	events = append(events, materializeEvents...)
	events = append(events, SlotSet{Name: FlowStackSlot, Value: interp.stack})
	events = append(events, SlotSet{Name: FlowStateSlot, Value: updatedState.AsValue()})
	return action, events, 1.0, nil
}

// resetEphemeralSlots emits a SlotSet resetting every ephemeral question
// slot of flow back to its initial value (spec.md §3 "Lifecycles",
// invariant 4 of §8).
func resetEphemeralSlots(flow *Flow, tracker Tracker) []SlotSet {
	var events []SlotSet
	for _, step := range flow.Steps() {
		question, ok := step.(*QuestionStep)
		if !ok || !question.Ephemeral {
			continue
		}
		initial := slotInitialValue(tracker.Slots(), question.Question)
		events = append(events, SlotSet{Name: question.Question, Value: initial})
	}
	return events
}

func valuesEqual(a, b any) bool {
	return a == b
}
