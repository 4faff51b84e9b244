package db

import (
	"time"
)

type alertModel struct {
	ID                  string `gorm:"primaryKey;size:36"`
	OwnerID             string `gorm:"index;not null"`
	ResearchTitle       string `gorm:"size:500;not null"`
	ResearchAbstract    string `gorm:"type:text;not null"`
	SimilarityThreshold float64 `gorm:"not null"`
	LookbackDays        int     `gorm:"not null"`
	Frequency           string  `gorm:"size:16;not null"`
	Status              string  `gorm:"size:16;index:idx_alerts_status_next_run,priority:1;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastRun             *time.Time
	NextRun             *time.Time `gorm:"index:idx_alerts_status_next_run,priority:2"`
	NotificationCount   int       `gorm:"not null;default:0"`
}

func (alertModel) TableName() string { return "alerts" }

type notificationModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	AlertID   string `gorm:"size:36;index;not null"`
	Matches   []byte `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	Read      bool `gorm:"not null;default:false"`
}

func (notificationModel) TableName() string { return "notifications" }
