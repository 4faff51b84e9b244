package httpapi

import (
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/avezhnov/scholarwatch/internal/usecase"
)

// Request and response shapes live only at this boundary; internally the
// service works with typed enums and time.Time.

type createAlertRequest struct {
	ResearchTitle       string   `json:"research_title"`
	ResearchAbstract    string   `json:"research_abstract"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	LookbackDays        *int     `json:"lookback_days"`
	Frequency           *string  `json:"frequency"`
}

type updateAlertRequest struct {
	ResearchTitle       *string  `json:"research_title"`
	ResearchAbstract    *string  `json:"research_abstract"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	LookbackDays        *int     `json:"lookback_days"`
	Frequency           *string  `json:"frequency"`
	Status              *string  `json:"status"`
}

type alertResponse struct {
	ID                  string  `json:"id"`
	OwnerID             string  `json:"owner_id"`
	ResearchTitle       string  `json:"research_title"`
	ResearchAbstract    string  `json:"research_abstract"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	LookbackDays        int     `json:"lookback_days"`
	Frequency           string  `json:"frequency"`
	Status              string  `json:"status"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
	LastRun             *string `json:"last_run"`
	NextRun             *string `json:"next_run"`
	NotificationCount   int     `json:"notification_count"`
}

type matchResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SimilarityScore float64  `json:"similarity_score"`
	DocumentType    string   `json:"document_type"`
	PublicationDate string   `json:"publication_date"`
	Authors         []string `json:"authors"`
	Institutions    []string `json:"institutions"`
	Abstract        string   `json:"abstract"`
	URL             string   `json:"url"`
	Reason          string   `json:"reason"`
}

type notificationResponse struct {
	ID          string          `json:"id"`
	AlertID     string          `json:"alert_id"`
	ResultCount int             `json:"result_count"`
	CreatedAt   string          `json:"created_at"`
	Read        bool            `json:"read"`
	Results     []matchResponse `json:"results"`
}

type statsResponse struct {
	TotalAlerts         int     `json:"total_alerts"`
	ActiveAlerts        int     `json:"active_alerts"`
	PausedAlerts        int     `json:"paused_alerts"`
	TotalNotifications  int     `json:"total_notifications"`
	UnreadNotifications int     `json:"unread_notifications"`
	LastNotification    *string `json:"last_notification"`
}

func mapAlertResponse(alert *domain.Alert) alertResponse {
	return alertResponse{
		ID:                  alert.ID,
		OwnerID:             alert.OwnerID,
		ResearchTitle:       alert.ResearchTitle,
		ResearchAbstract:    alert.ResearchAbstract,
		SimilarityThreshold: alert.SimilarityThreshold,
		LookbackDays:        alert.LookbackDays,
		Frequency:           string(alert.Frequency),
		Status:              string(alert.Status),
		CreatedAt:           alert.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           alert.UpdatedAt.Format(time.RFC3339),
		LastRun:             formatOptionalTime(alert.LastRun),
		NextRun:             formatOptionalTime(alert.NextRun),
		NotificationCount:   alert.NotificationCount,
	}
}

func mapAlertResponses(alerts []domain.Alert) []alertResponse {
	responses := make([]alertResponse, 0, len(alerts))
	for i := range alerts {
		responses = append(responses, mapAlertResponse(&alerts[i]))
	}
	return responses
}

func mapNotificationResponse(notification *domain.Notification) notificationResponse {
	results := make([]matchResponse, 0, len(notification.Matches))
	for _, match := range notification.Matches {
		results = append(results, matchResponse{
			ID:              match.ID,
			Title:           match.Title,
			SimilarityScore: match.SimilarityScore,
			DocumentType:    match.DocumentType,
			PublicationDate: match.PublicationDate,
			Authors:         match.Authors,
			Institutions:    match.Institutions,
			Abstract:        match.Abstract,
			URL:             match.URL,
			Reason:          match.Reason,
		})
	}
	return notificationResponse{
		ID:          notification.ID,
		AlertID:     notification.AlertID,
		ResultCount: len(notification.Matches),
		CreatedAt:   notification.CreatedAt.Format(time.RFC3339),
		Read:        notification.Read,
		Results:     results,
	}
}

func mapNotificationResponses(notifications []domain.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, mapNotificationResponse(&notifications[i]))
	}
	return responses
}

func mapStatsResponse(stats *usecase.AlertStats) statsResponse {
	return statsResponse{
		TotalAlerts:         stats.TotalAlerts,
		ActiveAlerts:        stats.ActiveAlerts,
		PausedAlerts:        stats.PausedAlerts,
		TotalNotifications:  stats.TotalNotifications,
		UnreadNotifications: stats.UnreadNotifications,
		LastNotification:    formatOptionalTime(stats.LastNotification),
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
