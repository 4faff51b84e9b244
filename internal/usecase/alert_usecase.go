package usecase

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidTitle     = errors.New("invalid research title")
	ErrInvalidAbstract  = errors.New("invalid research abstract")
	ErrInvalidThreshold = errors.New("invalid similarity threshold")
	ErrInvalidLookback  = errors.New("invalid lookback window")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrAlertNotFound    = errors.New("alert not found")
)

const (
	maxTitleLen       = 500
	minAbstractLen    = 10
	maxAbstractLen    = 5000
	maxLookbackDays   = 365
	defaultNotifLimit = 50
)

// AlertService owns the alert lifecycle and the per-alert unit of work that
// the scheduler drives.
type AlertService struct {
	alerts        domain.AlertRepository
	notifications domain.NotificationRepository
	matcher       domain.SimilarityMatcher
	logger        *zap.Logger
}

func NewAlertService(alerts domain.AlertRepository, notifications domain.NotificationRepository, matcher domain.SimilarityMatcher, logger *zap.Logger) *AlertService {
	return &AlertService{alerts: alerts, notifications: notifications, matcher: matcher, logger: logger}
}

func (s *AlertService) Create(ctx context.Context, ownerID, title, abstract string, threshold float64, lookbackDays int, frequency domain.AlertFrequency) (*domain.Alert, error) {
	if err := validateCriteria(title, abstract); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	if lookbackDays < 1 || lookbackDays > maxLookbackDays {
		return nil, ErrInvalidLookback
	}
	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	now := time.Now()
	nextRun := now.Add(frequency.Period())
	alert := &domain.Alert{
		ID:                  uuid.NewString(),
		OwnerID:             ownerID,
		ResearchTitle:       title,
		ResearchAbstract:    abstract,
		SimilarityThreshold: threshold,
		LookbackDays:        lookbackDays,
		Frequency:           frequency,
		Status:              domain.AlertStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
		NextRun:             &nextRun,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("created alert", zap.String("alert_id", alert.ID), zap.String("owner_id", ownerID))
	return alert, nil
}

func (s *AlertService) List(ctx context.Context, ownerID string) ([]domain.Alert, error) {
	return s.alerts.ListByOwner(ctx, ownerID)
}

func (s *AlertService) Get(ctx context.Context, alertID, ownerID string) (*domain.Alert, error) {
	alert, err := s.alerts.GetByIDAndOwner(ctx, alertID, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

// UpdateAlertParams carries an optional new value per mutable field; nil
// leaves the field untouched.
type UpdateAlertParams struct {
	ResearchTitle       *string
	ResearchAbstract    *string
	SimilarityThreshold *float64
	LookbackDays        *int
	Frequency           *domain.AlertFrequency
	Status              *domain.AlertStatus
}

func (s *AlertService) Update(ctx context.Context, alertID, ownerID string, params UpdateAlertParams) (*domain.Alert, error) {
	alert, err := s.Get(ctx, alertID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if params.ResearchTitle != nil {
		if err := validateTitle(*params.ResearchTitle); err != nil {
			return nil, err
		}
		alert.ResearchTitle = *params.ResearchTitle
	}
	if params.ResearchAbstract != nil {
		if err := validateAbstract(*params.ResearchAbstract); err != nil {
			return nil, err
		}
		alert.ResearchAbstract = *params.ResearchAbstract
	}
	if params.SimilarityThreshold != nil {
		if *params.SimilarityThreshold < 0 || *params.SimilarityThreshold > 1 {
			return nil, ErrInvalidThreshold
		}
		alert.SimilarityThreshold = *params.SimilarityThreshold
	}
	if params.LookbackDays != nil {
		if *params.LookbackDays < 1 || *params.LookbackDays > maxLookbackDays {
			return nil, ErrInvalidLookback
		}
		alert.LookbackDays = *params.LookbackDays
	}
	if params.Frequency != nil {
		if !params.Frequency.Valid() {
			return nil, ErrInvalidFrequency
		}
		alert.Frequency = *params.Frequency
		// Changing cadence re-anchors the schedule at the time of the
		// change rather than at the previous last_run.
		nextRun := now.Add(params.Frequency.Period())
		alert.NextRun = &nextRun
	}
	if params.Status != nil {
		if *params.Status != domain.AlertStatusActive && *params.Status != domain.AlertStatusPaused {
			return nil, ErrInvalidStatus
		}
		alert.Status = *params.Status
	}

	alert.UpdatedAt = now
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("updated alert", zap.String("alert_id", alert.ID))
	return alert, nil
}

// Delete soft-deletes the alert so past notifications keep a valid
// reference. Idempotent: a second call reports false.
func (s *AlertService) Delete(ctx context.Context, alertID, ownerID string) (bool, error) {
	alert, err := s.Get(ctx, alertID, ownerID)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return false, nil
		}
		return false, err
	}

	alert.Status = domain.AlertStatusDeleted
	alert.UpdatedAt = time.Now()
	if err := s.alerts.Update(ctx, alert); err != nil {
		return false, err
	}

	s.logger.Info("deleted alert", zap.String("alert_id", alert.ID))
	return true, nil
}

func (s *AlertService) Notifications(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotifLimit
	}
	return s.notifications.ListByOwner(ctx, ownerID, limit)
}

func (s *AlertService) MarkNotificationRead(ctx context.Context, notificationID, ownerID string) (bool, error) {
	if err := s.notifications.MarkRead(ctx, notificationID, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AlertStats summarizes one owner's alerts and notifications.
type AlertStats struct {
	TotalAlerts         int
	ActiveAlerts        int
	PausedAlerts        int
	TotalNotifications  int
	UnreadNotifications int
	LastNotification    *time.Time
}

func (s *AlertService) Stats(ctx context.Context, ownerID string) (*AlertStats, error) {
	alerts, err := s.alerts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	notifications, err := s.notifications.ListByOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}

	stats := &AlertStats{
		TotalAlerts:        len(alerts),
		TotalNotifications: len(notifications),
	}
	for _, alert := range alerts {
		switch alert.Status {
		case domain.AlertStatusActive:
			stats.ActiveAlerts++
		case domain.AlertStatusPaused:
			stats.PausedAlerts++
		}
	}
	for _, notification := range notifications {
		if !notification.Read {
			stats.UnreadNotifications++
		}
	}
	if len(notifications) > 0 {
		last := notifications[0].CreatedAt
		stats.LastNotification = &last
	}
	return stats, nil
}

// DueAlerts returns the active alerts whose next run time has passed.
func (s *AlertService) DueAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.alerts.ListDue(ctx, time.Now())
}

// RunAlertNow processes one alert immediately, bypassing its schedule. Used
// for the user-facing "test my alert" action.
func (s *AlertService) RunAlertNow(ctx context.Context, alertID, ownerID string) (*domain.Notification, error) {
	alert, err := s.Get(ctx, alertID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, alert), nil
}

// Process runs one alert against the similarity engine and records the
// outcome. It never returns an error: a matcher failure is logged, the run
// still consumes its time slot, and siblings in a scheduler batch are
// unaffected. A notification is created only when at least one match came
// back.
func (s *AlertService) Process(ctx context.Context, alert *domain.Alert) *domain.Notification {
	if alert.Status != domain.AlertStatusActive {
		return nil
	}

	criteria := domain.SearchCriteria{Title: alert.ResearchTitle, Abstract: alert.ResearchAbstract}
	matches, err := s.matcher.Search(ctx, criteria, alert.SimilarityThreshold, alert.LookbackDays)

	now := time.Now()
	nextRun := now.Add(alert.Frequency.Period())
	alert.LastRun = &now
	alert.NextRun = &nextRun
	alert.UpdatedAt = now

	if err != nil {
		s.logger.Error("alert run failed", zap.String("alert_id", alert.ID), zap.Error(err))
		s.persistBookkeeping(ctx, alert)
		return nil
	}

	if len(matches) == 0 {
		s.logger.Debug("alert run found no matches", zap.String("alert_id", alert.ID))
		s.persistBookkeeping(ctx, alert)
		return nil
	}

	notification := &domain.Notification{
		ID:        uuid.NewString(),
		AlertID:   alert.ID,
		Matches:   matches,
		CreatedAt: now,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Error("failed to store notification", zap.String("alert_id", alert.ID), zap.Error(err))
		s.persistBookkeeping(ctx, alert)
		return nil
	}

	alert.NotificationCount++
	s.persistBookkeeping(ctx, alert)
	s.logger.Info("alert run found matches", zap.String("alert_id", alert.ID), zap.Int("matches", len(matches)))
	return notification
}

func (s *AlertService) persistBookkeeping(ctx context.Context, alert *domain.Alert) {
	if err := s.alerts.Update(ctx, alert); err != nil {
		s.logger.Error("failed to persist alert bookkeeping", zap.String("alert_id", alert.ID), zap.Error(err))
	}
}

func validateCriteria(title, abstract string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	return validateAbstract(abstract)
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > maxTitleLen {
		return ErrInvalidTitle
	}
	return nil
}

func validateAbstract(abstract string) error {
	n := utf8.RuneCountInString(abstract)
	if n < minAbstractLen || n > maxAbstractLen {
		return ErrInvalidAbstract
	}
	return nil
}
