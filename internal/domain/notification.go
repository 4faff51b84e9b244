package domain

import "time"

// Match is a single candidate document returned by the similarity engine.
type Match struct {
	ID              string
	Title           string
	SimilarityScore float64
	DocumentType    string
	PublicationDate string
	Authors         []string
	Institutions    []string
	Abstract        string
	URL             string
	Reason          string
}

// Notification records one alert run that found at least one match.
// Notifications are never deleted; a soft-deleted alert keeps its history.
type Notification struct {
	ID        string
	AlertID   string
	Matches   []Match
	CreatedAt time.Time
	Read      bool
}
