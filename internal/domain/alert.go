package domain

import "time"

type AlertStatus string

const (
	AlertStatusActive  AlertStatus = "active"
	AlertStatusPaused  AlertStatus = "paused"
	AlertStatusDeleted AlertStatus = "deleted"
)

type AlertFrequency string

const (
	FrequencyDaily   AlertFrequency = "daily"
	FrequencyWeekly  AlertFrequency = "weekly"
	FrequencyMonthly AlertFrequency = "monthly"
)

// Period returns the fixed interval between two runs of an alert.
// Monthly is a flat 30 days, not calendar-aware.
func (f AlertFrequency) Period() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

func (f AlertFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Alert is a standing similarity-search subscription owned by a single user.
type Alert struct {
	ID                  string
	OwnerID             string
	ResearchTitle       string
	ResearchAbstract    string
	SimilarityThreshold float64
	LookbackDays        int
	Frequency           AlertFrequency
	Status              AlertStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastRun             *time.Time
	NextRun             *time.Time
	NotificationCount   int
}

// Due reports whether the alert should be picked up by the scheduler.
func (a *Alert) Due(now time.Time) bool {
	return a.Status == AlertStatusActive && a.NextRun != nil && !a.NextRun.After(now)
}
