// Package notification fans booking events out over NATS and turns them into
// emails.
package notification

import (
	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

const (
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"

	DefaultPrefix = "sapan"
)

// BookingEvent is the JSON payload on every booking subject.
type BookingEvent struct {
	BookingID   uuid.UUID     `json:"booking_id"`
	CancelledBy repo.UserType `json:"cancelled_by,omitempty"`
}

// Subject returns <prefix>.booking.<event>.<id>.
func Subject(prefix, event string, id uuid.UUID) string {
	return prefix + ".booking." + event + "." + id.String()
}

// Wildcard matches every booking id for event.
func Wildcard(prefix, event string) string {
	return prefix + ".booking." + event + ".*"
}
