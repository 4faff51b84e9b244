package logicmill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"go.uber.org/zap"
)

// maxResults caps how many candidate documents one alert run keeps.
const maxResults = 20

// Client talks to the Logic Mill similarity-search API. Search is a pure
// query, so the scheduler can call it at every cadence without side effects.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type searchRequest struct {
	Query        string  `json:"query"`
	Threshold    float64 `json:"threshold"`
	LookbackDays int     `json:"lookback_days"`
	Limit        int     `json:"limit"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Score           float64  `json:"score"`
	Type            string   `json:"type"`
	PublicationDate string   `json:"publication_date"`
	Authors         []string `json:"authors"`
	Institutions    []string `json:"institutions"`
	Abstract        string   `json:"abstract"`
	URL             string   `json:"url"`
}

func (c *Client) Search(ctx context.Context, criteria domain.SearchCriteria, threshold float64, lookbackDays int) ([]domain.Match, error) {
	endpoint := c.baseURL + "/search"
	payload := searchRequest{
		Query:        fmt.Sprintf("%s. %s", criteria.Title, criteria.Abstract),
		Threshold:    threshold,
		LookbackDays: lookbackDays,
		Limit:        maxResults,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("logic mill request failed", zap.String("url", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMatcherUnavailable, err)
	}
	defer response.Body.Close()

	c.logger.Debug(
		"logic mill request complete",
		zap.String("url", endpoint),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMatcherUnavailable, response.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMatcherUnavailable, err)
	}

	return mapResults(decoded.Results, threshold), nil
}

// mapResults filters out documents below the alert's threshold, keeps the
// strongest maxResults of them, and orders them by score descending.
func mapResults(results []searchResult, threshold float64) []domain.Match {
	matches := make([]domain.Match, 0, len(results))
	for _, result := range results {
		if result.Score < threshold {
			continue
		}
		matches = append(matches, domain.Match{
			ID:              result.ID,
			Title:           result.Title,
			SimilarityScore: result.Score,
			DocumentType:    result.Type,
			PublicationDate: result.PublicationDate,
			Authors:         result.Authors,
			Institutions:    result.Institutions,
			Abstract:        result.Abstract,
			URL:             result.URL,
			Reason:          fmt.Sprintf("high semantic similarity (%.3f) to research", result.Score),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
