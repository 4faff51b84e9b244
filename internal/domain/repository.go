package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	// GetByIDAndOwner ignores soft-deleted alerts and returns ErrNotFound
	// when the alert belongs to a different owner.
	GetByIDAndOwner(ctx context.Context, alertID, ownerID string) (*Alert, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Alert, error)
	ListDue(ctx context.Context, now time.Time) ([]Alert, error)
	Update(ctx context.Context, alert *Alert) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	// ListByOwner returns notifications belonging to the owner's alerts,
	// newest first. limit <= 0 means no limit. Notifications of
	// soft-deleted alerts are included.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Notification, error)
	// MarkRead flags the notification as read. Ownership is checked
	// through the owning alert; ErrNotFound covers both an unknown id and
	// a foreign owner.
	MarkRead(ctx context.Context, notificationID, ownerID string) error
}
