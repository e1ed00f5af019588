package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle event types recorded in the audit trail.
const (
	EventLogin   = "login"
	EventRefresh = "refresh"
	EventLogout  = "logout"
)

// LoginEvent is one row of the session audit trail. UserEmail is joined in
// for the admin listing and is empty elsewhere.
type LoginEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	EventType string    `json:"eventType"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
	UserEmail string    `json:"userEmail,omitempty"`
}

type LoginEventRepository interface {
	Create(event *LoginEvent) error
	ListRecent(limit, offset int) ([]*LoginEvent, int, error)
	ListByUser(userID uuid.UUID, limit, offset int) ([]*LoginEvent, error)
}
