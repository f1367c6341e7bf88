package trakt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

func TestClient_Watching(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		expected      domain.WatchStatus
		errorContains string
	}{
		{
			name:       "Success - Movie",
			statusCode: http.StatusOK,
			body:       `{"type": "movie", "movie": {"title": "The Matrix", "ids": {"trakt": 481, "tmdb": 603}}}`,
			expected: domain.WatchStatus{
				Active: true, MediaType: domain.KindMovie, ExternalID: "603", Title: "The Matrix",
			},
		},
		{
			name:       "Success - Episode",
			statusCode: http.StatusOK,
			body: `{"type": "episode",
				"episode": {"season": 3, "number": 9, "title": "The Rains of Castamere"},
				"show": {"title": "Game of Thrones", "ids": {"tmdb": 1399}}}`,
			expected: domain.WatchStatus{
				Active: true, MediaType: domain.KindEpisode, ExternalID: "1399", Season: 3,
				Title: "Game of Thrones S03E09",
			},
		},
		{
			name:       "Movie Without TMDB Id",
			statusCode: http.StatusOK,
			body:       `{"type": "movie", "movie": {"title": "Obscure", "ids": {"tmdb": null}}}`,
			expected:   domain.WatchStatus{Active: true, MediaType: domain.KindMovie, Title: "Obscure"},
		},
		{
			name:       "No Content Is Idle",
			statusCode: http.StatusNoContent,
			expected:   domain.WatchStatus{},
		},
		{
			name:       "Empty Body Is Idle",
			statusCode: http.StatusOK,
			body:       "",
			expected:   domain.WatchStatus{},
		},
		{
			name:       "Missing Type Is Idle",
			statusCode: http.StatusOK,
			body:       `{}`,
			expected:   domain.WatchStatus{},
		},
		{
			name:          "Error - Rate Limited",
			statusCode:    http.StatusTooManyRequests,
			errorContains: "unexpected status code: 429",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/users/someone/watching" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.Header.Get("trakt-api-key") != "trakt-id" || r.Header.Get("trakt-api-version") != "2" {
					t.Errorf("missing trakt headers: %v", r.Header)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(zap.NewNop(), server.URL, "trakt-id", "someone")
			got, err := client.Watching(context.Background())

			if tt.errorContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}
