package models

import "time"

// Event types published when a user record changes.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// UserEvent describes a change to a user record, pushed to websocket subscribers.
type UserEvent struct {
	Type          string    `json:"type"`
	UserID        string    `json:"userId"`
	AccountNumber string    `json:"accountNumber"`
	At            time.Time `json:"at"`
}

// NewUserEvent builds an event of the given type for u, stamped with the current time.
func NewUserEvent(eventType string, u *User) UserEvent {
	return UserEvent{
		Type:          eventType,
		UserID:        u.ID,
		AccountNumber: u.AccountNumber,
		At:            time.Now().UTC(),
	}
}
