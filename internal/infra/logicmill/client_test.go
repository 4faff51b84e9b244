package logicmill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "secret-token", 5*time.Second, zap.NewNop())
}

func TestSearch(t *testing.T) {
	criteria := domain.SearchCriteria{Title: "Quantum sensing", Abstract: "Nitrogen vacancy magnetometry."}

	t.Run("sends query with auth and decodes matches", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

			var req searchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Quantum sensing. Nitrogen vacancy magnetometry.", req.Query)
			assert.Equal(t, 0.75, req.Threshold)
			assert.Equal(t, 30, req.LookbackDays)

			_ = json.NewEncoder(w).Encode(searchResponse{Results: []searchResult{
				{ID: "doc-low", Title: "Weak match", Score: 0.42},
				{ID: "doc-mid", Title: "Decent match", Score: 0.80, Type: "publication"},
				{ID: "doc-top", Title: "Strong match", Score: 0.95, Type: "patent", Authors: []string{"A. Author"}},
			}})
		})

		matches, err := client.Search(context.Background(), criteria, 0.75, 30)
		require.NoError(t, err)
		require.Len(t, matches, 2, "results below the threshold are dropped")
		assert.Equal(t, "doc-top", matches[0].ID)
		assert.Equal(t, "doc-mid", matches[1].ID)
		assert.Equal(t, "patent", matches[0].DocumentType)
		assert.Equal(t, "high semantic similarity (0.950) to research", matches[0].Reason)
	})

	t.Run("caps the match list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			results := make([]searchResult, 0, 30)
			for i := 0; i < 30; i++ {
				results = append(results, searchResult{ID: fmt.Sprintf("doc-%d", i), Score: 0.9})
			}
			_ = json.NewEncoder(w).Encode(searchResponse{Results: results})
		})

		matches, err := client.Search(context.Background(), criteria, 0.5, 30)
		require.NoError(t, err)
		assert.Len(t, matches, maxResults)
	})

	t.Run("server error maps to matcher unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Search(context.Background(), criteria, 0.75, 30)
		assert.ErrorIs(t, err, domain.ErrMatcherUnavailable)
	})

	t.Run("malformed body maps to matcher unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})

		_, err := client.Search(context.Background(), criteria, 0.75, 30)
		assert.ErrorIs(t, err, domain.ErrMatcherUnavailable)
	})

	t.Run("unreachable engine maps to matcher unavailable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "", 100*time.Millisecond, zap.NewNop())
		_, err := client.Search(context.Background(), criteria, 0.75, 30)
		assert.ErrorIs(t, err, domain.ErrMatcherUnavailable)
	})
}
