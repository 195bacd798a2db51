package services

import "sync"

// RecordingNotifier captures published events for assertions in tests
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewRecordingNotifier creates a notifier that records every published event
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Publish implements Notifier
func (n *RecordingNotifier) Publish(event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (n *RecordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Event, len(n.events))
	copy(out, n.events)
	return out
}

// EventsOfType returns recorded events matching the given type
func (n *RecordingNotifier) EventsOfType(eventType string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded events
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// FailWith makes subsequent Publish calls return err (for fire-and-forget tests)
func (n *RecordingNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}
