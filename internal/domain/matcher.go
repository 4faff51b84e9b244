package domain

import (
	"context"
	"errors"
)

var ErrMatcherUnavailable = errors.New("similarity engine unavailable")

// SearchCriteria is the text an alert is matched against.
type SearchCriteria struct {
	Title    string
	Abstract string
}

// SimilarityMatcher finds documents similar to the given criteria. The call
// is a side-effect-free query and is safe to repeat at scheduler cadence.
type SimilarityMatcher interface {
	Search(ctx context.Context, criteria SearchCriteria, threshold float64, lookbackDays int) ([]Match, error)
}
