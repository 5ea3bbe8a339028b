package flowcore

import "log"

// SensitiveTopicDetector is the opaque guard interface mediating the Turn
// Gate's entry path (spec.md §4.7). It carries its own configuration;
// flowcore only depends on this two-method contract.
type SensitiveTopicDetector interface {
	// Check reports whether text discusses a sensitive topic.
	Check(text string) bool
	// Action names the action to predict when Check returns true.
	Action() string
}

// TurnGate is the per-turn entry point (spec.md §4.7): it short-circuits
// on a detected sensitive topic, abstains while another component owns an
// active loop, and otherwise delegates to the Interpreter.
type TurnGate struct {
	detector SensitiveTopicDetector
	logger   *log.Logger
}

// NewTurnGate builds a TurnGate. detector may be nil, in which case the
// sensitive-topic short-circuit never fires.
func NewTurnGate(detector SensitiveTopicDetector) *TurnGate {
	return &TurnGate{detector: detector, logger: log.Default()}
}

// SetLogger overrides the gate's logger (default log.Default()).
func (g *TurnGate) SetLogger(logger *log.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Decide runs the strictly-ordered sequence from spec.md §4.7 and returns
// the resulting (action, events, score) or a fatal error.
func (g *TurnGate) Decide(tracker Tracker, domain Domain, catalog *FlowsList) (string, []SlotSet, float64, error) {
	if g.detector != nil && tracker.LatestActionName() == ActionListen {
		if message := tracker.LatestMessage(); message != nil && message.Text != "" {
			if g.detector.Check(message.Text) {
				g.logger.Printf("[flowcore] sensitive topic detected, predicting %s", g.detector.Action())
				return g.detector.Action(), nil, 1.0, nil
			}
		}
	}

	if tracker.ActiveLoop() != "" {
		g.logger.Printf("[flowcore] active loop %q owns this turn, abstaining", tracker.ActiveLoop())
		return "", nil, 0.0, nil
	}

	interp := FromTracker(tracker, catalog)
	interp.SetLogger(g.logger)
	return interp.SelectNextAction(tracker, domain)
}
