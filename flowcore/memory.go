package flowcore

import (
	"sync"

	"github.com/google/uuid"
)

// InMemoryTracker is a thread-safe, in-memory reference implementation of
// Tracker, adapted from teleflow's inMemoryStateManager
// (core/state.go): same nested-map-under-RWMutex shape, generalized from
// "per Telegram user id" to "per conversation", and from an opaque
// key-value store to the specific slot/message/loop fields Tracker
// exposes. It exists to exercise the domain stack end-to-end in tests and
// the CLI/example adapter, not as a production persistence layer (see
// SPEC_FULL.md §5 Non-goals).
type InMemoryTracker struct {
	mu sync.RWMutex

	latestActionName string
	latestMessage    *Message
	activeLoop       string

	slots  []Slot
	values map[string]any
}

// NewInMemoryTracker creates a tracker whose slots start at their
// declared initial values.
func NewInMemoryTracker(slots []Slot) *InMemoryTracker {
	values := make(map[string]any, len(slots))
	for _, slot := range slots {
		values[slot.Name] = slot.InitialValue
	}
	return &InMemoryTracker{slots: slots, values: values}
}

// LatestActionName implements Tracker.
func (t *InMemoryTracker) LatestActionName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latestActionName
}

// SetLatestActionName records the last action name the embedding system
// executed, typically ActionListen right before the user's next message
// arrives.
func (t *InMemoryTracker) SetLatestActionName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latestActionName = name
}

// LatestMessage implements Tracker.
func (t *InMemoryTracker) LatestMessage() *Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latestMessage
}

// SetLatestMessage records the latest user utterance. Pass nil to clear
// it once it has been consumed by a turn.
func (t *InMemoryTracker) SetLatestMessage(message *Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latestMessage = message
}

// ActiveLoop implements Tracker.
func (t *InMemoryTracker) ActiveLoop() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeLoop
}

// SetActiveLoop records the name of the form/loop currently owning the
// conversation, or "" when none is active.
func (t *InMemoryTracker) SetActiveLoop(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeLoop = name
}

// GetSlot implements Tracker.
func (t *InMemoryTracker) GetSlot(name string) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[name]
}

// Slots implements Tracker.
func (t *InMemoryTracker) Slots() []Slot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	slots := make([]Slot, len(t.slots))
	copy(slots, t.slots)
	return slots
}

// ApplySlotSet applies a sequence of emitted events, in order, exactly as
// spec.md §5's ordering guarantee requires. This is the caller-side half
// of the contract: flowcore itself never writes to the tracker.
func (t *InMemoryTracker) ApplySlotSet(events []SlotSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, event := range events {
		t.values[event.Name] = event.Value
	}
}

// ConversationStore manages one InMemoryTracker per conversation id, the
// way teleflow's flowManager keyed userFlowState by Telegram user id.
type ConversationStore struct {
	mu            sync.RWMutex
	slots         []Slot
	conversations map[string]*InMemoryTracker
}

// NewConversationStore builds a store whose trackers all share the given
// slot declarations.
func NewConversationStore(slots []Slot) *ConversationStore {
	return &ConversationStore{slots: slots, conversations: make(map[string]*InMemoryTracker)}
}

// Tracker returns the tracker for conversationID, creating it with fresh
// initial slot values on first access, along with a fresh UUID
// identifying this particular call for log correlation.
func (s *ConversationStore) Tracker(conversationID string) (*InMemoryTracker, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracker, ok := s.conversations[conversationID]
	if !ok {
		tracker = NewInMemoryTracker(s.slots)
		tracker.SetLatestActionName(ActionListen)
		s.conversations[conversationID] = tracker
	}
	return tracker, uuid.NewString()
}

// InMemoryDomain is a minimal Domain implementation over a fixed slot and
// action list.
type InMemoryDomain struct {
	slots       []Slot
	actionIndex map[string]int
}

// NewInMemoryDomain builds a Domain enumerating slots and actions. Action
// indices are assigned in the order actions is given, matching how a
// trained model's one-hot action vector is ordinarily laid out.
func NewInMemoryDomain(slots []Slot, actions []string) *InMemoryDomain {
	index := make(map[string]int, len(actions))
	for i, action := range actions {
		index[action] = i
	}
	return &InMemoryDomain{slots: slots, actionIndex: index}
}

// Slots implements Domain.
func (d *InMemoryDomain) Slots() []Slot {
	return d.slots
}

// IndexForAction implements Domain. An unknown action returns -1.
func (d *InMemoryDomain) IndexForAction(name string) int {
	if idx, ok := d.actionIndex[name]; ok {
		return idx
	}
	return -1
}
