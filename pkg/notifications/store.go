package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
)

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int  // maximum number of notifications to return (0 = no limit)
	Offset     int  // number of notifications to skip for pagination
	OnlyUnread bool // when true, only return unread notifications
}

// Store handles notification persistence, including the batch operations
// the cleanup sweep needs.
type Store interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// List returns notifications for a contractor, newest first,
	// excluding archived ones.
	List(ctx context.Context, contractorID uuid.UUID, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read.
	MarkRead(ctx context.Context, contractorID uuid.UUID, notifIDs ...string) error

	// CountUnread returns the unread count for a contractor.
	CountUnread(ctx context.Context, contractorID uuid.UUID) (int64, error)

	// CountOlderThan counts unarchived notifications created before cutoff.
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// MarkArchivedOlderThan archives unarchived notifications created
	// before cutoff, returning how many were archived. Idempotent.
	MarkArchivedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteReadOlderThan hard-deletes up to limit notifications that are
	// read and were created before cutoff, returning how many were
	// deleted. Small batches keep individual sweep steps short and make
	// an interrupted sweep resumable.
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
