package flowcore

// FlowStep is a single node in a flow's step graph. It is a tagged
// variant over UserMessageStep, QuestionStep, ActionStep and LinkStep
// (spec.md §3); the interpreter dispatches on the concrete type rather
// than through virtual methods, keeping the state machine fully visible
// in interpreter.go (spec.md §9, "Tagged variants over inheritance").
type FlowStep interface {
	// StepID returns the id of this step, unique within its enclosing
	// flow (spec.md §9, open question 4).
	StepID() string
	// Next returns the step's outgoing link set, possibly empty.
	Next() FlowLinks
	// HasNext reports whether the step has any outgoing link.
	HasNext() bool
}

// baseStep factors the id/links pair shared by every step variant.
type baseStep struct {
	ID    string
	Links FlowLinks
}

func (s baseStep) StepID() string  { return s.ID }
func (s baseStep) Next() FlowLinks { return s.Links }
func (s baseStep) HasNext() bool   { return len(s.Links) > 0 }

// UserMessageStep is the triggering step of a flow: it carries an intent
// pattern and an optional required entity set, and matches an incoming
// user message via IsTriggered.
type UserMessageStep struct {
	baseStep
	Intent           string
	RequiredEntities []string
}

// NewUserMessageStep constructs a UserMessageStep with the given id,
// trigger intent and outgoing links.
func NewUserMessageStep(id, intent string, requiredEntities []string, links FlowLinks) *UserMessageStep {
	return &UserMessageStep{baseStep: baseStep{ID: id, Links: links}, Intent: intent, RequiredEntities: requiredEntities}
}

// IsTriggered reports whether this step's intent pattern matches intent
// and this step's required entity set is a subset of entities (spec.md
// §4.3).
func (s *UserMessageStep) IsTriggered(intent string, entities []string) bool {
	if s.Intent != intent {
		return false
	}
	present := make(map[string]bool, len(entities))
	for _, e := range entities {
		present[e] = true
	}
	for _, required := range s.RequiredEntities {
		if !present[required] {
			return false
		}
	}
	return true
}

// QuestionStep asks for a value to fill a slot. Ephemeral question slots
// are reset to their initial value when the enclosing flow terminates;
// SkipIfFilled is recognized but, per spec.md §9 open question 2, the
// interpreter does not actually skip the step when it is already filled —
// that behavior is preserved unchanged from the original source.
type QuestionStep struct {
	baseStep
	Question     string
	Ephemeral    bool
	SkipIfFilled bool
}

// NewQuestionStep constructs a QuestionStep.
func NewQuestionStep(id, question string, ephemeral, skipIfFilled bool, links FlowLinks) *QuestionStep {
	return &QuestionStep{baseStep: baseStep{ID: id, Links: links}, Question: question, Ephemeral: ephemeral, SkipIfFilled: skipIfFilled}
}

// ActionStep executes a named action.
type ActionStep struct {
	baseStep
	Action string
}

// NewActionStep constructs an ActionStep.
func NewActionStep(id, action string, links FlowLinks) *ActionStep {
	return &ActionStep{baseStep: baseStep{ID: id, Links: links}, Action: action}
}

// LinkStep calls another flow by id. Its Next links are consulted only
// once the callee flow has returned (spec.md §3).
type LinkStep struct {
	baseStep
	Link string
}

// NewLinkStep constructs a LinkStep.
func NewLinkStep(id, link string, links FlowLinks) *LinkStep {
	return &LinkStep{baseStep: baseStep{ID: id, Links: links}, Link: link}
}

// stepCompleted implements spec.md §4.6.5: whether the given step has
// already gathered the input it needs, given the current tracker slots.
func stepCompleted(step FlowStep, tracker Tracker) bool {
	switch s := step.(type) {
	case *QuestionStep:
		return tracker.GetSlot(s.Question) != nil
	case *LinkStep:
		// Completion is signaled externally by the callee returning and
		// popping the stack; a LinkStep is never "completed" on its own.
		return false
	default:
		return true
	}
}
