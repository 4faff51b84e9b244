// Package memstore keeps alerts and notifications in process memory. It is
// the reference store for single-process deployments and the substrate the
// usecase tests run against; the gorm repositories in internal/infra/db are
// the durable equivalent.
package memstore

import (
	"sync"

	"github.com/avezhnov/scholarwatch/internal/domain"
)

type state struct {
	mu            sync.RWMutex
	alerts        map[string]domain.Alert
	notifications map[string]domain.Notification
}

// New returns an alert repository and a notification repository sharing one
// in-memory state, so notification ownership checks can walk through the
// owning alert.
func New() (*AlertRepository, *NotificationRepository) {
	s := &state{
		alerts:        make(map[string]domain.Alert),
		notifications: make(map[string]domain.Notification),
	}
	return &AlertRepository{state: s}, &NotificationRepository{state: s}
}

func cloneAlert(alert domain.Alert) domain.Alert {
	if alert.LastRun != nil {
		lastRun := *alert.LastRun
		alert.LastRun = &lastRun
	}
	if alert.NextRun != nil {
		nextRun := *alert.NextRun
		alert.NextRun = &nextRun
	}
	return alert
}

func cloneNotification(notification domain.Notification) domain.Notification {
	matches := make([]domain.Match, len(notification.Matches))
	copy(matches, notification.Matches)
	notification.Matches = matches
	return notification
}
