package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
)

type AlertRepository struct {
	state *state
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.alerts[alert.ID] = cloneAlert(*alert)
	return nil
}

func (r *AlertRepository) GetByIDAndOwner(ctx context.Context, alertID, ownerID string) (*domain.Alert, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	alert, ok := r.state.alerts[alertID]
	if !ok || alert.OwnerID != ownerID || alert.Status == domain.AlertStatusDeleted {
		return nil, domain.ErrNotFound
	}
	clone := cloneAlert(alert)
	return &clone, nil
}

func (r *AlertRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Alert, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var alerts []domain.Alert
	for _, alert := range r.state.alerts {
		if alert.OwnerID == ownerID && alert.Status != domain.AlertStatusDeleted {
			alerts = append(alerts, cloneAlert(alert))
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts, nil
}

func (r *AlertRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Alert, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var due []domain.Alert
	for _, alert := range r.state.alerts {
		if alert.Due(now) {
			due = append(due, cloneAlert(alert))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRun.Before(*due[j].NextRun)
	})
	return due, nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.alerts[alert.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state.alerts[alert.ID] = cloneAlert(*alert)
	return nil
}
