package events

import (
	"encoding/json"
	"time"
)

// Event types published by the outreach runner.
const (
	TypePostAccepted = "post_accepted"
	TypePostRejected = "post_rejected"
	TypeDraftReady   = "draft_ready"
	TypeMailSent     = "mail_sent"
	TypeCycleDone    = "cycle_done"
)

type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

func New(typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type: typ,
		At:   time.Now().UTC(),
		Data: raw,
	}
}

// Encode renders the event as one JSON line for the SSE stream.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
