package domain

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrUnauthorized is returned by service clients when the credential was rejected
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a lookup has no result
	ErrNotFound = errors.New("not found")
)

// ActivitySource produces one outcome per tick. Implementations never fail;
// every failure is folded into an Unavailable outcome.
type ActivitySource interface {
	Fetch(ctx context.Context) ActivityOutcome
}

// PlaybackClient queries the music service for the current playback
//
//go:generate mockgen -destination=mocks/interfaces_mock.go -package=mocks github.com/genricoloni/coverpanel/internal/domain PlaybackClient,TokenRefresher,WatchClient,ArtworkResolver,Fetcher,Sink
type PlaybackClient interface {
	// CurrentlyPlaying returns ErrUnauthorized when accessToken is expired
	CurrentlyPlaying(ctx context.Context, accessToken string) (PlaybackStatus, error)
}

// TokenRefresher exchanges refresh material for a new credential
type TokenRefresher interface {
	Refresh(ctx context.Context, stored Credentials) (Credentials, error)
}

// WatchClient queries the watch-activity service
type WatchClient interface {
	Watching(ctx context.Context) (WatchStatus, error)
}

// ArtworkResolver maps a movie or episode to a poster URL.
// season is ignored for movies and may be 0 for episodes.
type ArtworkResolver interface {
	Resolve(ctx context.Context, mediaType ActivityKind, externalID string, season int) (string, error)
}

// Fetcher defines the interface for retrieving artwork bytes
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Sink is the pixel display target
type Sink interface {
	// Draw pushes a frame of exactly the panel size to the display
	Draw(ctx context.Context, frame image.Image) error
	Close() error
}

// Journal stores render history. Optional collaborator of the engine.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}
