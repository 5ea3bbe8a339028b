package flowcore

// Flow is an identified graph of steps with one designated start step
// (spec.md §3). Step ids are required to be unique only within their
// enclosing flow (spec.md §9, open question 4); cross-flow references go
// only through LinkStep.Link by flow id.
type Flow struct {
	ID          string
	StartStepID string
	order       []string
	steps       map[string]FlowStep
}

// NewFlow builds a Flow from an ordered list of steps. The first step in
// the list is the designated start step.
func NewFlow(id string, steps []FlowStep) *Flow {
	f := &Flow{ID: id, steps: make(map[string]FlowStep, len(steps))}
	for _, step := range steps {
		f.order = append(f.order, step.StepID())
		f.steps[step.StepID()] = step
	}
	if len(f.order) > 0 {
		f.StartStepID = f.order[0]
	}
	return f
}

// StepByID looks up a step within this flow. A miss returns (nil, false)
// rather than raising, per spec.md §4.1 ("lookup miss returns the
// empty/absent sentinel — never raises").
func (f *Flow) StepByID(stepID string) (FlowStep, bool) {
	if f == nil || stepID == "" {
		return nil, false
	}
	step, ok := f.steps[stepID]
	return step, ok
}

// FirstStep returns this flow's designated start step.
func (f *Flow) FirstStep() (FlowStep, bool) {
	if f == nil || f.StartStepID == "" {
		return nil, false
	}
	return f.StepByID(f.StartStepID)
}

// Steps returns every step in this flow in declaration order.
func (f *Flow) Steps() []FlowStep {
	steps := make([]FlowStep, 0, len(f.order))
	for _, id := range f.order {
		steps = append(steps, f.steps[id])
	}
	return steps
}

// PreviouslyAskedCollectInformation returns, in topological order, the
// question slot names asked by QuestionSteps that precede stepID on any
// path from this flow's start step. It is used only by ancillary stack
// introspection utilities (stackutils.go) and never by the interpreter's
// own decision procedure (spec.md §4.3, §9).
func (f *Flow) PreviouslyAskedCollectInformation(stepID string) []string {
	if f == nil {
		return nil
	}

	var result []string
	seen := make(map[string]bool)
	visiting := make(map[string]bool)

	var walk func(id string, path []string) bool
	walk = func(id string, path []string) bool {
		if id == stepID {
			for _, question := range path {
				if !seen[question] {
					seen[question] = true
					result = append(result, question)
				}
			}
			return true
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)

		step, ok := f.StepByID(id)
		if !ok {
			return false
		}

		next := path
		if q, ok := step.(*QuestionStep); ok {
			next = append(append([]string{}, path...), q.Question)
		}

		reached := false
		for _, link := range step.Next() {
			if walk(link.Target(), next) {
				reached = true
			}
		}
		return reached
	}

	if f.StartStepID != "" {
		walk(f.StartStepID, nil)
	}
	return result
}

// FlowsList is the immutable, indexed store of all registered flows
// (spec.md §4.1, "Flow Catalog"). It is safe for concurrent reads once
// built; it is never mutated after NewFlowsList returns.
type FlowsList struct {
	order []string
	byID  map[string]*Flow
}

// NewFlowsList builds a catalog from a set of flows. Flow iteration order
// (used by the Trigger Matcher's tie-break) is the order flows are given
// here.
func NewFlowsList(flows []*Flow) *FlowsList {
	list := &FlowsList{byID: make(map[string]*Flow, len(flows))}
	for _, flow := range flows {
		list.order = append(list.order, flow.ID)
		list.byID[flow.ID] = flow
	}
	return list
}

// FlowByID looks up a flow by id. A miss returns (nil, false).
func (l *FlowsList) FlowByID(flowID string) (*Flow, bool) {
	if l == nil {
		return nil, false
	}
	flow, ok := l.byID[flowID]
	return flow, ok
}

// StepByID looks up a step by (stepID, flowID) pair, resolving through the
// named flow only (spec.md §9, open question 4).
func (l *FlowsList) StepByID(stepID, flowID string) (FlowStep, bool) {
	flow, ok := l.FlowByID(flowID)
	if !ok {
		return nil, false
	}
	return flow.StepByID(stepID)
}

// FirstStep returns the designated start step of the named flow.
func (l *FlowsList) FirstStep(flowID string) (FlowStep, bool) {
	flow, ok := l.FlowByID(flowID)
	if !ok {
		return nil, false
	}
	return flow.FirstStep()
}

// Flows returns every flow in catalog (iteration) order.
func (l *FlowsList) Flows() []*Flow {
	flows := make([]*Flow, 0, len(l.order))
	for _, id := range l.order {
		flows = append(flows, l.byID[id])
	}
	return flows
}

// Len reports the number of flows in the catalog.
func (l *FlowsList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}
