package flowcore

// Slot describes one domain slot: its name and the value it resets to.
// Both Tracker and Domain expose a Slots list (spec.md §6): the tracker's
// copy is read for ephemeral-reset initial values, the domain's copy is
// read to build the predicate evaluation environment.
type Slot struct {
	Name         string
	InitialValue any
}

// Entity is one recognized entity on the latest user message.
type Entity struct {
	Type string
}

// Intent is the classified intent of the latest user message.
type Intent struct {
	Name string
}

// Message is the latest user utterance, as classified by the (out of
// scope) NLU component.
type Message struct {
	Text     string
	Intent   Intent
	Entities []Entity
}

// EntityTypes returns the list of entity type strings present on this
// message.
func (m *Message) EntityTypes() []string {
	if m == nil {
		return nil
	}
	types := make([]string, 0, len(m.Entities))
	for _, e := range m.Entities {
		types = append(types, e.Type)
	}
	return types
}

// Tracker is the external, read-only per-conversation state snapshot
// (spec.md §3, §6). The interpreter never writes to it: all intended
// mutations are expressed as the SlotSet events it returns.
type Tracker interface {
	// LatestActionName is the name of the last action the dialogue system
	// executed.
	LatestActionName() string
	// LatestMessage is the most recent user utterance, or nil if none.
	LatestMessage() *Message
	// ActiveLoop is the name of the currently active form/loop, or "" if
	// none is active.
	ActiveLoop() string
	// GetSlot reads the current value of a named slot; nil if unset.
	GetSlot(name string) any
	// Slots enumerates every slot this tracker knows about, with its
	// configured initial value.
	Slots() []Slot
}

// Domain enumerates every slot and action the dialogue system knows
// about (spec.md §3, §6). It is immutable after construction and safely
// shared across concurrent turns.
type Domain interface {
	// Slots enumerates every domain slot.
	Slots() []Slot
	// IndexForAction maps an action name to its index in the domain's
	// action list, for callers building a one-hot prediction vector.
	IndexForAction(name string) int
}

func slotInitialValue(slots []Slot, name string) any {
	for _, slot := range slots {
		if slot.Name == name {
			return slot.InitialValue
		}
	}
	return nil
}
