package flowcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyEvents(tracker *InMemoryTracker, events []SlotSet) {
	tracker.ApplySlotSet(events)
}

// S1: Trigger. An idle tracker with a matching latest message predicts the
// flow_<id> trigger action and abstains from touching any slot.
func TestScenarioTrigger(t *testing.T) {
	flow := NewFlow("book_flight", []FlowStep{
		NewUserMessageStep("s0", "book_flight", nil, FlowLinks{StaticFlowLink{TargetID: "s1"}}),
		NewActionStep("s1", "utter_ask_destination", nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker(nil)
	tracker.SetLatestMessage(&Message{Text: "book a flight", Intent: Intent{Name: "book_flight"}})

	interp := FromTracker(tracker, catalog)
	action, events, score, err := interp.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "flow_book_flight", action)
	assert.Empty(t, events)
	assert.Equal(t, 1.0, score)
}

// S2: First real step after trigger. Once flow_state names the flow with a
// nil step id, the interpreter performs the cold start and materializes the
// first real (non-trigger) step.
func TestScenarioFirstStepAfterTrigger(t *testing.T) {
	flow := NewFlow("book_flight", []FlowStep{
		NewUserMessageStep("s0", "book_flight", nil, FlowLinks{StaticFlowLink{TargetID: "s1"}}),
		NewActionStep("s1", "utter_ask_destination", nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker(nil)
	tracker.ApplySlotSet([]SlotSet{{Name: FlowStateSlot, Value: NewFlowState("book_flight").AsValue()}})

	interp := FromTracker(tracker, catalog)
	action, events, score, err := interp.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "utter_ask_destination", action)
	assert.Equal(t, 1.0, score)
	require.Len(t, events, 1)
	assert.Equal(t, FlowStateSlot, events[0].Name)
}

// S3: Conditional branch. An ActionStep with If/Else links routes to the
// branch whose predicate is satisfied by the tracker's current slots.
func TestScenarioConditionalBranch(t *testing.T) {
	flow := NewFlow("checkout", []FlowStep{
		NewActionStep("start", "utter_intro", FlowLinks{
			IfFlowLink{Condition: "total > 100", TargetID: "ask_discount_code"},
			ElseFlowLink{TargetID: "ask_payment"},
		}),
		NewQuestionStep("ask_discount_code", "discount_code", false, false, nil),
		NewQuestionStep("ask_payment", "payment_method", false, false, nil),
	})
	catalog := NewFlowsList([]*Flow{flow})

	forBranch := func(total any) (string, error) {
		tracker := NewInMemoryTracker([]Slot{{Name: "total"}})
		tracker.ApplySlotSet([]SlotSet{
			{Name: "total", Value: total},
			{Name: FlowStateSlot, Value: (&FlowState{FlowID: "checkout", StepID: strPtr("start")}).AsValue()},
		})
		interp := FromTracker(tracker, catalog)
		action, _, _, err := interp.SelectNextAction(tracker, NewInMemoryDomain(tracker.Slots(), nil))
		return action, err
	}

	action, err := forBranch("150")
	require.NoError(t, err)
	assert.Equal(t, "question_discount_code", action)

	action, err = forBranch("10")
	require.NoError(t, err)
	assert.Equal(t, "question_payment_method", action)
}

func strPtr(s string) *string { return &s }

// S4: Ephemeral reset on termination. When a flow with an ephemeral
// question terminates, its slot is reset to its initial value as part of
// the emitted events.
func TestScenarioEphemeralResetOnTermination(t *testing.T) {
	flow := NewFlow("survey", []FlowStep{
		NewQuestionStep("ask", "mood", true, false, nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker([]Slot{{Name: "mood", InitialValue: nil}})
	tracker.ApplySlotSet([]SlotSet{
		{Name: "mood", Value: "happy"},
		{Name: FlowStateSlot, Value: (&FlowState{FlowID: "survey", StepID: strPtr("ask")}).AsValue()},
	})

	interp := FromTracker(tracker, catalog)
	action, events, _, err := interp.SelectNextAction(tracker, NewInMemoryDomain(tracker.Slots(), nil))
	require.NoError(t, err)
	assert.Equal(t, ActionListen, action)

	var sawReset, sawStateCleared bool
	for _, e := range events {
		if e.Name == "mood" && e.Value == nil {
			sawReset = true
		}
		if e.Name == FlowStateSlot && e.Value == nil {
			sawStateCleared = true
		}
	}
	assert.True(t, sawReset, "ephemeral slot must reset to its initial value")
	assert.True(t, sawStateCleared, "flow_state must clear to nil once the stack empties")
}

// S5: Link + return. A LinkStep pushes a caller frame, the callee flow
// materializes its own first action, and once the callee later terminates
// the caller frame is popped and its own next step resumes.
func TestScenarioLinkAndReturn(t *testing.T) {
	caller := NewFlow("main", []FlowStep{
		NewLinkStep("call_sub", "sub", FlowLinks{StaticFlowLink{TargetID: "after"}}),
		NewActionStep("after", "utter_done", nil),
	})
	callee := NewFlow("sub", []FlowStep{
		NewActionStep("only", "utter_sub_action", nil),
	})
	catalog := NewFlowsList([]*Flow{caller, callee})

	tracker := NewInMemoryTracker(nil)
	tracker.ApplySlotSet([]SlotSet{
		{Name: FlowStateSlot, Value: (&FlowState{FlowID: "main"}).AsValue()},
	})

	interp := FromTracker(tracker, catalog)
	action, events, _, err := interp.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "utter_sub_action", action)

	var stackEvent, stateEvent SlotSet
	for _, e := range events {
		if e.Name == FlowStackSlot {
			stackEvent = e
		}
		if e.Name == FlowStateSlot {
			stateEvent = e
		}
	}
	stack, ok := stackEvent.Value.(Stack)
	require.True(t, ok)
	require.Len(t, stack, 1)
	assert.Equal(t, "main", stack[0].FlowID)
	require.NotNil(t, stack[0].StepID)
	assert.Equal(t, "call_sub", *stack[0].StepID)
	require.NotNil(t, stateEvent.Value)

	// Apply the events and resume: the callee's only action now has no
	// further links, so the flow terminates, the caller frame pops, and
	// the caller's "after" step runs.
	applyEvents(tracker, events)
	interp2 := FromTracker(tracker, catalog)
	action2, events2, _, err := interp2.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "utter_done", action2)

	var poppedStack SlotSet
	for _, e := range events2 {
		if e.Name == FlowStackSlot {
			poppedStack = e
		}
	}
	emptied, ok := poppedStack.Value.(Stack)
	require.True(t, ok)
	assert.True(t, emptied.IsEmpty())
}

// S6: Sensitive topic short-circuit. The TurnGate predicts the detector's
// action and never consults the interpreter when the latest message trips
// the sensitive-topic check.
func TestScenarioSensitiveTopicShortCircuit(t *testing.T) {
	flow := NewFlow("book_flight", []FlowStep{
		NewUserMessageStep("s0", "book_flight", nil, nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker(nil)
	tracker.SetLatestActionName(ActionListen)
	tracker.SetLatestMessage(&Message{Text: "i want to hurt myself"})

	gate := NewTurnGate(fixedDetector{action: "utter_crisis_resources"})
	action, events, score, err := gate.Decide(tracker, NewInMemoryDomain(nil, nil), catalog)
	require.NoError(t, err)
	assert.Equal(t, "utter_crisis_resources", action)
	assert.Empty(t, events)
	assert.Equal(t, 1.0, score)
}

type fixedDetector struct{ action string }

func (f fixedDetector) Check(string) bool { return true }
func (f fixedDetector) Action() string    { return f.action }

// Determinism: running SelectNextAction twice over the same tracker
// snapshot (no events applied in between) yields identical output.
func TestInterpreterIsDeterministic(t *testing.T) {
	flow := NewFlow("book_flight", []FlowStep{
		NewUserMessageStep("s0", "book_flight", nil, FlowLinks{StaticFlowLink{TargetID: "s1"}}),
		NewActionStep("s1", "utter_ask_destination", nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker(nil)
	tracker.ApplySlotSet([]SlotSet{{Name: FlowStateSlot, Value: NewFlowState("book_flight").AsValue()}})

	interp1 := FromTracker(tracker, catalog)
	action1, events1, score1, err1 := interp1.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	interp2 := FromTracker(tracker, catalog)
	action2, events2, score2, err2 := interp2.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, action1, action2)
	assert.Equal(t, events1, events2)
	assert.Equal(t, score1, score2)
}

// Abstain-on-active-loop: the TurnGate abstains without ever constructing
// an Interpreter while another component's loop owns the turn.
func TestTurnGateAbstainsOnActiveLoop(t *testing.T) {
	catalog := NewFlowsList(nil)
	tracker := NewInMemoryTracker(nil)
	tracker.SetActiveLoop("payment_form")

	gate := NewTurnGate(nil)
	action, events, score, err := gate.Decide(tracker, NewInMemoryDomain(nil, nil), catalog)
	require.NoError(t, err)
	assert.Equal(t, "", action)
	assert.Nil(t, events)
	assert.Equal(t, 0.0, score)
}

// Depth exceeded: a catalog of two flows that link to each other forever
// raises KindDepthExceeded rather than recursing without bound.
func TestInterpreterRaisesOnExcessiveLinkDepth(t *testing.T) {
	a := NewFlow("a", []FlowStep{NewLinkStep("l", "b", nil)})
	b := NewFlow("b", []FlowStep{NewLinkStep("l", "a", nil)})
	catalog := NewFlowsList([]*Flow{a, b})

	tracker := NewInMemoryTracker(nil)
	tracker.ApplySlotSet([]SlotSet{{Name: FlowStateSlot, Value: NewFlowState("a").AsValue()}})

	interp := FromTracker(tracker, catalog)
	_, _, _, err := interp.SelectNextAction(tracker, NewInMemoryDomain(nil, nil))
	require.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KindDepthExceeded, flowErr.Kind)
}

// State inconsistency: a step that requires input not yet supplied on the
// tracker raises rather than re-asking (spec.md §9 open question 1).
func TestInterpreterRaisesWhenAwaitingFill(t *testing.T) {
	flow := NewFlow("onboarding", []FlowStep{
		NewQuestionStep("ask_name", "name", false, false, FlowLinks{StaticFlowLink{TargetID: "done"}}),
		NewActionStep("done", "utter_done", nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker([]Slot{{Name: "name"}})
	tracker.ApplySlotSet([]SlotSet{
		{Name: FlowStateSlot, Value: (&FlowState{FlowID: "onboarding", StepID: strPtr("ask_name")}).AsValue()},
	})

	interp := FromTracker(tracker, catalog)
	_, _, _, err := interp.SelectNextAction(tracker, NewInMemoryDomain(tracker.Slots(), nil))
	require.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KindStateInconsistency, flowErr.Kind)
}
