package domain

import "time"

type CallStatus string

const (
	CallCalling CallStatus = "calling"
	CallActive  CallStatus = "active"
	CallEnded   CallStatus = "ended"
)

// Terminal reports whether no further transitions are possible
func (s CallStatus) Terminal() bool {
	return s == CallEnded
}

type VideoCall struct {
	ID             string     `json:"id"`
	ApplicationID  string     `json:"applicationId"`
	InitiatorEmail string     `json:"initiatorEmail"`
	InitiatorRole  Role       `json:"initiatorRole"`
	Status         CallStatus `json:"status"`
	StartedAt      time.Time  `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
	RoomURL        string     `json:"roomUrl,omitempty"`
}

// Ongoing reports whether the call is still calling or active
func (c *VideoCall) Ongoing() bool {
	return c != nil && !c.Status.Terminal()
}
