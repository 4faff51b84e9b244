package db

import (
	"context"
	"encoding/json"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	model, err := mapNotificationToModel(notification)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN alerts ON alerts.id = notifications.alert_id").
		Where("alerts.owner_id = ?", ownerID).
		Order("notifications.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []notificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return mapNotificationsToDomain(models)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, ownerID string) error {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND alert_id IN (SELECT id FROM alerts WHERE owner_id = ?)", notificationID, ownerID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapNotificationsToDomain(models []notificationModel) ([]domain.Notification, error) {
	notifications := make([]domain.Notification, 0, len(models))
	for _, model := range models {
		notification, err := mapNotificationToDomain(model)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func mapNotificationToDomain(model notificationModel) (domain.Notification, error) {
	var matches []domain.Match
	if err := json.Unmarshal(model.Matches, &matches); err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		ID:        model.ID,
		AlertID:   model.AlertID,
		Matches:   matches,
		CreatedAt: model.CreatedAt,
		Read:      model.Read,
	}, nil
}

func mapNotificationToModel(notification *domain.Notification) (notificationModel, error) {
	matches, err := json.Marshal(notification.Matches)
	if err != nil {
		return notificationModel{}, err
	}
	return notificationModel{
		ID:        notification.ID,
		AlertID:   notification.AlertID,
		Matches:   matches,
		CreatedAt: notification.CreatedAt,
		Read:      notification.Read,
	}, nil
}
