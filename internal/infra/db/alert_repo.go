package db

import (
	"context"
	"errors"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(alert)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *AlertRepository) GetByIDAndOwner(ctx context.Context, alertID, ownerID string) (*domain.Alert, error) {
	var model alertModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status <> ?", alertID, ownerID, domain.AlertStatusDeleted).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	alert := mapAlertToDomain(model)
	return &alert, nil
}

func (r *AlertRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Alert, error) {
	var models []alertModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status <> ?", ownerID, domain.AlertStatusDeleted).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Alert, error) {
	var models []alertModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_run IS NOT NULL AND next_run <= ?", domain.AlertStatusActive, now).
		Order("next_run").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(alert)
	result := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ?", alert.ID).Select("*").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, mapAlertToDomain(model))
	}
	return alerts
}

func mapAlertToDomain(model alertModel) domain.Alert {
	return domain.Alert{
		ID:                  model.ID,
		OwnerID:             model.OwnerID,
		ResearchTitle:       model.ResearchTitle,
		ResearchAbstract:    model.ResearchAbstract,
		SimilarityThreshold: model.SimilarityThreshold,
		LookbackDays:        model.LookbackDays,
		Frequency:           domain.AlertFrequency(model.Frequency),
		Status:              domain.AlertStatus(model.Status),
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
		LastRun:             model.LastRun,
		NextRun:             model.NextRun,
		NotificationCount:   model.NotificationCount,
	}
}

func mapAlertToModel(alert *domain.Alert) alertModel {
	return alertModel{
		ID:                  alert.ID,
		OwnerID:             alert.OwnerID,
		ResearchTitle:       alert.ResearchTitle,
		ResearchAbstract:    alert.ResearchAbstract,
		SimilarityThreshold: alert.SimilarityThreshold,
		LookbackDays:        alert.LookbackDays,
		Frequency:           string(alert.Frequency),
		Status:              string(alert.Status),
		CreatedAt:           alert.CreatedAt,
		UpdatedAt:           alert.UpdatedAt,
		LastRun:             alert.LastRun,
		NextRun:             alert.NextRun,
		NotificationCount:   alert.NotificationCount,
	}
}
