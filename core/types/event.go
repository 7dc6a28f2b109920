package types

// Event represents a typed event emitted during state transitions. Topics
// carry the indexed fields so subscribers can filter without decoding the
// attribute map.
type Event struct {
	Type       string            `json:"type"`
	Topics     []string          `json:"topics,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	out := Event{Type: e.Type}
	if len(e.Topics) > 0 {
		out.Topics = append([]string(nil), e.Topics...)
	}
	out.Attributes = make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		out.Attributes[k] = v
	}
	return out
}
