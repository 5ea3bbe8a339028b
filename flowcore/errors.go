package flowcore

import "fmt"

// ErrorKind classifies why the interpreter refused to produce a prediction.
// These mirror the taxonomy the original Rasa flow policy raises as a bare
// FlowException: the Go port keeps the kinds distinct so a caller can
// branch on errors.As without parsing message text.
type ErrorKind int

const (
	// KindConfiguration marks a problem with the catalog itself: a missing
	// step/flow id, an action step with no action name, an unknown step
	// type, or a link set that doesn't cover every case. A question whose
	// slot is not declared is not an error: its initial value is nil.
	KindConfiguration ErrorKind = iota
	// KindStateInconsistency marks the "awaiting-fill" branch: the current
	// step exists but is not completed, and the interpreter has no defined
	// handler for that case (spec.md §9, open question 1).
	KindStateInconsistency
	// KindPredicate marks a predicate source that failed to parse or
	// evaluate.
	KindPredicate
	// KindDepthExceeded marks a link chain or LinkStep recursion that
	// exceeded the configured safety depth.
	KindDepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStateInconsistency:
		return "state_inconsistency"
	case KindPredicate:
		return "predicate"
	case KindDepthExceeded:
		return "depth_exceeded"
	default:
		return "unknown"
	}
}

// FlowError is the error type raised by the interpreter for every fatal
// condition described in spec.md §7. It is always fatal to the turn: the
// Turn Gate does not recover from it, it only surfaces it to the caller.
type FlowError struct {
	Kind ErrorKind
	msg  string
}

func (e *FlowError) Error() string {
	return e.msg
}

func newFlowError(kind ErrorKind, format string, args ...any) *FlowError {
	return &FlowError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}
