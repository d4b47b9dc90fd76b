package domain

import "encoding/json"

// Document is the single shared record every backend persists. Jobs, profiles and
// applications belong to other parts of the job board and are carried through untouched.
type Document struct {
	Jobs         []json.RawMessage `json:"jobs"`
	Profiles     []json.RawMessage `json:"profiles"`
	Applications []json.RawMessage `json:"applications"`
	Messages     []Message         `json:"messages"`
	VideoCalls   []VideoCall       `json:"videoCalls"`
}

// NewDocument returns an empty document with every collection initialized
func NewDocument() *Document {
	return &Document{
		Jobs:         []json.RawMessage{},
		Profiles:     []json.RawMessage{},
		Applications: []json.RawMessage{},
		Messages:     []Message{},
		VideoCalls:   []VideoCall{},
	}
}

// Normalize replaces nil collections with empty ones so they serialize as []
func (d *Document) Normalize() {
	if d.Jobs == nil {
		d.Jobs = []json.RawMessage{}
	}
	if d.Profiles == nil {
		d.Profiles = []json.RawMessage{}
	}
	if d.Applications == nil {
		d.Applications = []json.RawMessage{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	if d.VideoCalls == nil {
		d.VideoCalls = []VideoCall{}
	}
}

// Clone returns a deep copy so callers can mutate it without touching the original
func (d *Document) Clone() *Document {
	out := &Document{
		Jobs:         cloneRaw(d.Jobs),
		Profiles:     cloneRaw(d.Profiles),
		Applications: cloneRaw(d.Applications),
		Messages:     append([]Message{}, d.Messages...),
		VideoCalls:   make([]VideoCall, len(d.VideoCalls)),
	}
	for i, c := range d.VideoCalls {
		if c.EndedAt != nil {
			endedAt := *c.EndedAt
			c.EndedAt = &endedAt
		}
		out.VideoCalls[i] = c
	}
	return out
}

func cloneRaw(in []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(in))
	for i, raw := range in {
		out[i] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// Conversation returns the messages of one application in append order
func (d *Document) Conversation(applicationID string) []Message {
	out := make([]Message, 0)
	for _, m := range d.Messages {
		if m.ApplicationID == applicationID {
			out = append(out, m)
		}
	}
	return out
}

// CurrentCall returns the most recent calling or active call of an
// application. The pointer refers into d.VideoCalls.
func (d *Document) CurrentCall(applicationID string) *VideoCall {
	for i := len(d.VideoCalls) - 1; i >= 0; i-- {
		c := &d.VideoCalls[i]
		if c.ApplicationID == applicationID && c.Ongoing() {
			return c
		}
	}
	return nil
}

// FindCall returns the call with the given id. The pointer refers into d.VideoCalls.
func (d *Document) FindCall(id string) *VideoCall {
	for i := range d.VideoCalls {
		if d.VideoCalls[i].ID == id {
			return &d.VideoCalls[i]
		}
	}
	return nil
}
