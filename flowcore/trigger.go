package flowcore

// FindStartable implements the Trigger Matcher (spec.md §4.5): given the
// latest user message on the tracker, it scans the catalog in iteration
// order and returns the first flow whose start step is a UserMessageStep
// triggered by that message. An absent message, or no match, reports
// (nil, false).
func FindStartable(tracker Tracker, catalog *FlowsList) (*Flow, bool) {
	message := tracker.LatestMessage()
	if message == nil {
		return nil, false
	}

	entityTypes := message.EntityTypes()
	for _, flow := range catalog.Flows() {
		first, ok := flow.FirstStep()
		if !ok {
			continue
		}
		trigger, ok := first.(*UserMessageStep)
		if !ok {
			continue
		}
		if trigger.IsTriggered(message.Intent.Name, entityTypes) {
			return flow, true
		}
	}
	return nil, false
}
