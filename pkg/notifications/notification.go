package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type represents the notification type/severity.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is the core domain model for contractor notifications.
type Notification struct {
	ID           string     `json:"id"`
	ContractorID uuid.UUID  `json:"contractor_id"`
	Type         Type       `json:"type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	// Archived marks notifications past the retention window without
	// deleting them, preserving the audit trail.
	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
