package domain

import (
	"time"
)

type Role string

const (
	RoleEmployer  Role = "employer"
	RoleCandidate Role = "candidate"
)

// Valid reports whether r is one of the two conversation roles
func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleCandidate
}

// Message is a single chat entry. Only Read changes after creation.
type Message struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	Sender        Role      `json:"sender"`
	SenderEmail   string    `json:"senderEmail"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	Read          bool      `json:"read"`
}

type WebhookResponse struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}
