package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

const trackPayload = `{
	"is_playing": true,
	"currently_playing_type": "track",
	"item": {
		"name": "Bohemian Rhapsody",
		"artists": [{"name": "Queen"}],
		"album": {"images": [{"url": "https://i.scdn.co/image/large"}, {"url": "https://i.scdn.co/image/small"}]}
	}
}`

const episodePayload = `{
	"is_playing": true,
	"currently_playing_type": "episode",
	"item": {
		"name": "Episode 12",
		"images": [],
		"show": {"images": [{"url": "https://i.scdn.co/image/show"}]}
	}
}`

func TestClient_CurrentlyPlaying(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		expected      domain.PlaybackStatus
		expectedError error
		errorContains string
	}{
		{
			name:       "Success - Track",
			statusCode: http.StatusOK,
			body:       trackPayload,
			expected: domain.PlaybackStatus{
				Active: true, ItemKind: "track",
				ArtworkURL:  "https://i.scdn.co/image/large",
				DisplayName: "Queen - Bohemian Rhapsody",
			},
		},
		{
			name:       "Success - Podcast Episode Uses Show Image",
			statusCode: http.StatusOK,
			body:       episodePayload,
			expected: domain.PlaybackStatus{
				Active: true, ItemKind: "episode",
				ArtworkURL:  "https://i.scdn.co/image/show",
				DisplayName: "Episode 12",
			},
		},
		{
			name:       "Paused Is Idle",
			statusCode: http.StatusOK,
			body:       `{"is_playing": false, "item": {"name": "x"}}`,
			expected:   domain.PlaybackStatus{},
		},
		{
			name:       "Null Item Is Idle",
			statusCode: http.StatusOK,
			body:       `{"is_playing": true, "item": null}`,
			expected:   domain.PlaybackStatus{},
		},
		{
			name:       "No Content Is Idle",
			statusCode: http.StatusNoContent,
			expected:   domain.PlaybackStatus{},
		},
		{
			name:       "Empty Body Is Idle",
			statusCode: http.StatusOK,
			body:       "  ",
			expected:   domain.PlaybackStatus{},
		},
		{
			name:          "Error - Unauthorized",
			statusCode:    http.StatusUnauthorized,
			body:          `{"error": {"status": 401, "message": "The access token expired"}}`,
			expectedError: domain.ErrUnauthorized,
		},
		{
			name:          "Error - Server Error",
			statusCode:    http.StatusBadGateway,
			errorContains: "unexpected status code: 502",
		},
		{
			name:          "Error - Malformed JSON",
			statusCode:    http.StatusOK,
			body:          "{",
			errorContains: "failed to decode playback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/player/currently-playing" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
					t.Errorf("unexpected Authorization header %q", got)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(zap.NewNop(), server.URL)
			got, err := client.CurrentlyPlaying(context.Background(), "token-1")

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected %v, got %v", tt.expectedError, err)
				}
				return
			}
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

func TestRefresher_Refresh(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		expected      domain.Credentials
		errorContains string
	}{
		{
			name:       "Success - Keeps Refresh Token Empty When Not Rotated",
			statusCode: http.StatusOK,
			body:       `{"access_token": "new-access", "token_type": "Bearer", "expires_in": 3600}`,
			expected:   domain.Credentials{AccessToken: "new-access"},
		},
		{
			name:       "Success - Rotated Refresh Token",
			statusCode: http.StatusOK,
			body:       `{"access_token": "new-access", "refresh_token": "new-refresh"}`,
			expected:   domain.Credentials{AccessToken: "new-access", RefreshToken: "new-refresh"},
		},
		{
			name:          "Error - Invalid Grant",
			statusCode:    http.StatusBadRequest,
			body:          `{"error": "invalid_grant"}`,
			errorContains: "unexpected status code: 400",
		},
		{
			name:          "Error - Missing Access Token",
			statusCode:    http.StatusOK,
			body:          `{}`,
			errorContains: "no access token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				user, pass, ok := r.BasicAuth()
				if !ok || user != "client-id" || pass != "client-secret" {
					t.Errorf("unexpected basic auth %q:%q", user, pass)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "stored-refresh" {
					t.Errorf("unexpected form %v", r.PostForm)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			refresher := NewRefresher(zap.NewNop(), server.URL, "client-id", "client-secret")
			got, err := refresher.Refresh(context.Background(), domain.Credentials{AccessToken: "old", RefreshToken: "stored-refresh"})

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
