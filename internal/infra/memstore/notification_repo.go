package memstore

import (
	"context"
	"sort"

	"github.com/avezhnov/scholarwatch/internal/domain"
)

type NotificationRepository struct {
	state *state
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.notifications[notification.ID] = cloneNotification(*notification)
	return nil
}

func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var notifications []domain.Notification
	for _, notification := range r.state.notifications {
		alert, ok := r.state.alerts[notification.AlertID]
		if !ok || alert.OwnerID != ownerID {
			continue
		}
		notifications = append(notifications, cloneNotification(notification))
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, ownerID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	notification, ok := r.state.notifications[notificationID]
	if !ok {
		return domain.ErrNotFound
	}
	// Ownership runs through the owning alert, soft-deleted ones included.
	alert, ok := r.state.alerts[notification.AlertID]
	if !ok || alert.OwnerID != ownerID {
		return domain.ErrNotFound
	}

	notification.Read = true
	r.state.notifications[notificationID] = notification
	return nil
}
