package flowcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnGateDelegatesToInterpreterWhenClear(t *testing.T) {
	flow := NewFlow("book_flight", []FlowStep{
		NewUserMessageStep("s0", "book_flight", nil, nil),
	})
	catalog := NewFlowsList([]*Flow{flow})
	tracker := NewInMemoryTracker(nil)
	tracker.SetLatestActionName(ActionListen)
	tracker.SetLatestMessage(&Message{Text: "book a flight", Intent: Intent{Name: "book_flight"}})

	gate := NewTurnGate(nil)
	action, _, score, err := gate.Decide(tracker, NewInMemoryDomain(nil, nil), catalog)
	require.NoError(t, err)
	assert.Equal(t, "flow_book_flight", action)
	assert.Equal(t, 1.0, score)
}

func TestTurnGateDetectorOnlyFiresRightAfterActionListen(t *testing.T) {
	catalog := NewFlowsList(nil)
	tracker := NewInMemoryTracker(nil)
	tracker.SetLatestActionName("utter_something_else")
	tracker.SetLatestMessage(&Message{Text: "i want to hurt myself"})

	gate := NewTurnGate(fixedDetector{action: "utter_crisis_resources"})
	action, _, _, err := gate.Decide(tracker, NewInMemoryDomain(nil, nil), catalog)
	require.NoError(t, err)
	assert.NotEqual(t, "utter_crisis_resources", action, "detector only gates the turn right after action_listen")
}

func TestTurnGateIgnoresEmptyMessageText(t *testing.T) {
	catalog := NewFlowsList(nil)
	tracker := NewInMemoryTracker(nil)
	tracker.SetLatestActionName(ActionListen)
	tracker.SetLatestMessage(&Message{Text: ""})

	gate := NewTurnGate(fixedDetector{action: "utter_crisis_resources"})
	action, _, _, err := gate.Decide(tracker, NewInMemoryDomain(nil, nil), catalog)
	require.NoError(t, err)
	assert.Equal(t, "", action)
}
