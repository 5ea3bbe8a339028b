package flowcore

// FlowLink is one outgoing edge from a step's next set: unconditional,
// conditional, or a fallback else (spec.md §3 "FlowLink").
type FlowLink interface {
	// Target returns the step id this link points to.
	Target() string
}

// FlowLinks is the ordered set of outgoing links on a step. Declaration
// order matters: IfFlowLinks are evaluated in this order (spec.md §4.6.3).
type FlowLinks []FlowLink

// StaticFlowLink is an unconditional edge.
type StaticFlowLink struct {
	TargetID string
}

// Target implements FlowLink.
func (l StaticFlowLink) Target() string { return l.TargetID }

// IfFlowLink is taken when its Condition evaluates true against the
// predicate environment built from the current slots.
type IfFlowLink struct {
	Condition string
	TargetID  string
}

// Target implements FlowLink.
func (l IfFlowLink) Target() string { return l.TargetID }

// ElseFlowLink is chosen only when no IfFlowLink in the set matched.
type ElseFlowLink struct {
	TargetID string
}

// Target implements FlowLink.
func (l ElseFlowLink) Target() string { return l.TargetID }

// evaluateLinks resolves a step's outgoing links to a single target step
// id, implementing spec.md §4.6.3 exactly:
//
//  1. a single StaticFlowLink is taken unconditionally;
//  2. otherwise each IfFlowLink is evaluated in declaration order, and the
//     first one whose condition holds is taken;
//  3. otherwise the first ElseFlowLink (if any) is taken;
//  4. if links exist but none matched, that is a configuration error;
//  5. if there are no links at all, the step is terminal and evaluateLinks
//     returns ("", false) to mean "no next step".
func evaluateLinks(links FlowLinks, evalCond func(condition string) (bool, error)) (string, bool, error) {
	if len(links) == 0 {
		return "", false, nil
	}

	if len(links) == 1 {
		if static, ok := links[0].(StaticFlowLink); ok {
			return static.TargetID, true, nil
		}
	}

	for _, link := range links {
		ifLink, ok := link.(IfFlowLink)
		if !ok {
			continue
		}
		matched, err := evalCond(ifLink.Condition)
		if err != nil {
			return "", false, err
		}
		if matched {
			return ifLink.TargetID, true, nil
		}
	}

	for _, link := range links {
		if elseLink, ok := link.(ElseFlowLink); ok {
			return elseLink.TargetID, true, nil
		}
	}

	return "", false, newFlowError(KindConfiguration, "links must cover all possible cases")
}
