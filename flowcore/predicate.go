package flowcore

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/expr-lang/expr"
	"golang.org/x/text/cases"
)

// PredicateEvaluator evaluates a boolean expression against a
// name→value environment derived from slots (spec.md §4.2). The concrete
// grammar is an external collaborator's concern; flowcore only depends on
// the evaluate(source, env) → bool contract, filled here by
// github.com/expr-lang/expr.
type PredicateEvaluator struct{}

// NewPredicateEvaluator constructs the default predicate evaluator.
func NewPredicateEvaluator() *PredicateEvaluator {
	return &PredicateEvaluator{}
}

// Evaluate compiles and runs source against env, returning the boolean
// result. Any compile or runtime failure, or a non-boolean result, is
// reported as a *FlowError of KindPredicate.
func (p *PredicateEvaluator) Evaluate(source string, env map[string]any) (bool, error) {
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return false, newFlowError(KindPredicate, "compile predicate %q: %v", source, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, newFlowError(KindPredicate, "evaluate predicate %q: %v", source, err)
	}

	b, ok := result.(bool)
	if !ok {
		return false, newFlowError(KindPredicate, "predicate %q did not evaluate to a boolean (got %T)", source, result)
	}
	return b, nil
}

var foldCaser = cases.Fold(cases.Compact)

// buildEnvironment constructs the evaluation environment exactly per
// spec.md §4.2:
//  1. for each slot in the domain, read tracker.GetSlot(name);
//  2. pass null, bool, or float values through unchanged;
//  3. otherwise coerce to text, then substitute a boolean if the
//     case-folded text is "true"/"false", else a number if the text is
//     all-numeric, else keep the text.
//
// Step 3's "all-numeric" check mirrors Python's str.isnumeric(): it only
// accepts strings made entirely of numeral characters, so "12.5" and
// "-3" are deliberately left as text, not coerced to a number.
func buildEnvironment(tracker Tracker, domain Domain) map[string]any {
	env := make(map[string]any, len(domain.Slots()))
	for _, slot := range domain.Slots() {
		env[slot.Name] = coerceSlotValue(tracker.GetSlot(slot.Name))
	}
	return env
}

func coerceSlotValue(raw any) any {
	switch raw.(type) {
	case nil, bool, float32, float64:
		return raw
	}

	text := fmt.Sprintf("%v", raw)
	switch foldCaser.String(text) {
	case "true":
		return true
	case "false":
		return false
	}

	if isAllNumeric(text) {
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return n
		}
	}

	return text
}

func isAllNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// condEval adapts a PredicateEvaluator into the evalCond signature
// evaluateLinks expects, binding in the environment built from the
// current tracker and domain.
func condEval(evaluator *PredicateEvaluator, tracker Tracker, domain Domain) func(string) (bool, error) {
	env := buildEnvironment(tracker, domain)
	return func(condition string) (bool, error) {
		return evaluator.Evaluate(condition, env)
	}
}
