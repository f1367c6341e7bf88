package source

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/genricoloni/coverpanel/internal/domain"
	"github.com/genricoloni/coverpanel/internal/domain/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var playing = domain.PlaybackStatus{
	Active:      true,
	ItemKind:    "track",
	ArtworkURL:  "https://i.scdn.co/image/trackA",
	DisplayName: "Song A",
}

func writeCredentials(t *testing.T, creds domain.Credentials) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMusicSource_Fetch(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher)
		expected  domain.ActivityOutcome
	}{
		{
			name: "Success - Playing",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").Return(playing, nil)
			},
			expected: domain.Active(domain.ArtworkRef{
				Locator: playing.ArtworkURL, Key: playing.ArtworkURL, Title: "Song A",
			}, domain.KindMusic),
		},
		{
			name: "Success - Nothing Playing",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").Return(domain.PlaybackStatus{}, nil)
			},
			expected: domain.Idle(),
		},
		{
			name: "Playing Without Artwork",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
					Return(domain.PlaybackStatus{Active: true, DisplayName: "Local file"}, nil)
			},
			expected: domain.Unavailable(domain.ReasonResolveFailed),
		},
		{
			name: "Transport Error",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
					Return(domain.PlaybackStatus{}, errors.New("dial tcp: i/o timeout"))
			},
			expected: domain.Unavailable(domain.ReasonTransport),
		},
		{
			name: "Unauthorized - Refresh And Retry Once",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				gomock.InOrder(
					c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
						Return(domain.PlaybackStatus{}, domain.ErrUnauthorized).Times(1),
					r.EXPECT().Refresh(gomock.Any(), domain.Credentials{AccessToken: "old-access", RefreshToken: "refresh"}).
						Return(domain.Credentials{AccessToken: "new-access"}, nil).Times(1),
					c.EXPECT().CurrentlyPlaying(gomock.Any(), "new-access").Return(playing, nil).Times(1),
				)
			},
			expected: domain.Active(domain.ArtworkRef{
				Locator: playing.ArtworkURL, Key: playing.ArtworkURL, Title: "Song A",
			}, domain.KindMusic),
		},
		{
			name: "Unauthorized - Refresh Fails, No Retry",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
					Return(domain.PlaybackStatus{}, domain.ErrUnauthorized).Times(1)
				r.EXPECT().Refresh(gomock.Any(), gomock.Any()).
					Return(domain.Credentials{}, errors.New("invalid_grant")).Times(1)
			},
			expected: domain.Unavailable(domain.ReasonAuthFailed),
		},
		{
			name: "Unauthorized - Retry Rejected Too",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
					Return(domain.PlaybackStatus{}, domain.ErrUnauthorized).Times(1)
				r.EXPECT().Refresh(gomock.Any(), gomock.Any()).
					Return(domain.Credentials{AccessToken: "new-access"}, nil).Times(1)
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "new-access").
					Return(domain.PlaybackStatus{}, domain.ErrUnauthorized).Times(1)
			},
			expected: domain.Unavailable(domain.ReasonAuthFailed),
		},
		{
			name: "Unauthorized - Retry Transport Error",
			setupMock: func(c *mocks.MockPlaybackClient, r *mocks.MockTokenRefresher) {
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").
					Return(domain.PlaybackStatus{}, domain.ErrUnauthorized)
				r.EXPECT().Refresh(gomock.Any(), gomock.Any()).
					Return(domain.Credentials{AccessToken: "new-access"}, nil)
				c.EXPECT().CurrentlyPlaying(gomock.Any(), "new-access").
					Return(domain.PlaybackStatus{}, errors.New("503 service unavailable"))
			},
			expected: domain.Unavailable(domain.ReasonTransport),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockPlaybackClient(ctrl)
			refresher := mocks.NewMockTokenRefresher(ctrl)
			tt.setupMock(client, refresher)

			creds := NewMemoryCredentials(zap.NewNop(), domain.Credentials{AccessToken: "old-access", RefreshToken: "refresh"})
			src := NewMusicSource(zap.NewNop(), client, refresher, creds)

			got := src.Fetch(context.Background())
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMusicSource_RefreshIsPersisted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	path := writeCredentials(t, domain.Credentials{AccessToken: "old-access", RefreshToken: "refresh"})
	creds, err := LoadCredentials(zap.NewNop(), path)
	if err != nil {
		t.Fatalf("failed to load credentials: %v", err)
	}

	client := mocks.NewMockPlaybackClient(ctrl)
	refresher := mocks.NewMockTokenRefresher(ctrl)
	client.EXPECT().CurrentlyPlaying(gomock.Any(), "old-access").Return(domain.PlaybackStatus{}, domain.ErrUnauthorized)
	refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).Return(domain.Credentials{AccessToken: "new-access"}, nil)
	client.EXPECT().CurrentlyPlaying(gomock.Any(), "new-access").Return(playing, nil)
	// the next tick uses the stored token directly
	client.EXPECT().CurrentlyPlaying(gomock.Any(), "new-access").Return(playing, nil)

	src := NewMusicSource(zap.NewNop(), client, refresher, creds)
	src.Fetch(context.Background())
	src.Fetch(context.Background())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read credentials: %v", err)
	}
	var stored domain.Credentials
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("stored credentials are not valid JSON: %v", err)
	}
	if stored.AccessToken != "new-access" {
		t.Errorf("expected stored access token new-access, got %q", stored.AccessToken)
	}
	if stored.RefreshToken != "refresh" {
		t.Errorf("refresh token should be kept when the service omits it, got %q", stored.RefreshToken)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

// countingRefresher counts refreshes and hands out numbered tokens
type countingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRefresher) Refresh(ctx context.Context, stored domain.Credentials) (domain.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return domain.Credentials{AccessToken: "fresh"}, nil
}

func TestCredentialStore_ConcurrentRefresh(t *testing.T) {
	creds := NewMemoryCredentials(zap.NewNop(), domain.Credentials{AccessToken: "stale", RefreshToken: "refresh"})
	refresher := &countingRefresher{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := creds.Refresh(context.Background(), refresher, "stale")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if token != "fresh" {
				t.Errorf("expected fresh token, got %q", token)
			}
		}()
	}
	wg.Wait()

	if refresher.calls != 1 {
		t.Errorf("expected one refresh for overlapping callers, got %d", refresher.calls)
	}
}

func TestLoadCredentials_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCredentials(zap.NewNop(), filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials(zap.NewNop(), bad); err == nil {
		t.Error("expected error for malformed file")
	}

	noRefresh := writeCredentials(t, domain.Credentials{AccessToken: "a"})
	if _, err := LoadCredentials(zap.NewNop(), noRefresh); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken, got %v", err)
	}
}
