// Package flowcore implements the Flow Execution Core: a deterministic,
// stack-based conversational flow interpreter.
//
// Given a catalog of declarative flow definitions, a conversation tracker
// carrying slot values and the latest user utterance, and a domain
// describing all known slots and actions, the interpreter decides which
// single action a dialogue system should execute next and what slot
// mutations accompany that decision.
//
// The package couples three small state machines:
//   - the per-flow step graph (Flow, FlowStep, FlowLink),
//   - the cross-flow call stack (Stack, FlowStackEntry),
//   - the per-turn prediction pipeline (TurnGate, Interpreter).
//
// NLU parsing, tracker persistence, featurization and CLI concerns live
// outside this package; flowcore only pins the external contracts it needs
// (Tracker, Domain, SensitiveTopicDetector, PredicateEvaluator) and
// interprets them.
//
// # Quick Start
//
// Build a catalog, then ask the turn gate for the next action on every
// turn:
//
//	catalog := flowcore.NewFlowsList(flows)
//	gate := flowcore.NewTurnGate(nil)
//	action, events, score, err := gate.Decide(tracker, domain, catalog)
//
// The caller is responsible for applying the returned events to its own
// tracker implementation in order (see SlotSet) before the next turn.
package flowcore
