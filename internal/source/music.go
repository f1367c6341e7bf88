package source

import (
	"context"
	"errors"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

// MusicSource polls the music service and absorbs its failures.
// An expired credential is refreshed once and the call retried once.
type MusicSource struct {
	logger    *zap.Logger
	client    domain.PlaybackClient
	refresher domain.TokenRefresher
	creds     *CredentialStore
}

// NewMusicSource creates a music source backed by client
func NewMusicSource(logger *zap.Logger, client domain.PlaybackClient, refresher domain.TokenRefresher, creds *CredentialStore) *MusicSource {
	return &MusicSource{
		logger:    logger,
		client:    client,
		refresher: refresher,
		creds:     creds,
	}
}

// Fetch reports what is playing. It never returns an error.
func (s *MusicSource) Fetch(ctx context.Context) domain.ActivityOutcome {
	token := s.creds.AccessToken()
	status, err := s.client.CurrentlyPlaying(ctx, token)

	if errors.Is(err, domain.ErrUnauthorized) {
		s.logger.Info("Music credential rejected, refreshing")

		fresh, rerr := s.creds.Refresh(ctx, s.refresher, token)
		if rerr != nil {
			s.logger.Warn("Credential refresh failed", zap.Error(rerr))
			return domain.Unavailable(domain.ReasonAuthFailed)
		}

		status, err = s.client.CurrentlyPlaying(ctx, fresh)
		if errors.Is(err, domain.ErrUnauthorized) {
			s.logger.Warn("Music credential rejected after refresh")
			return domain.Unavailable(domain.ReasonAuthFailed)
		}
	}

	if err != nil {
		s.logger.Warn("Failed to fetch playback status", zap.Error(err))
		return domain.Unavailable(domain.ReasonTransport)
	}

	return PlaybackOutcome(s.logger, status)
}

// PlaybackOutcome maps a playback status to an outcome
func PlaybackOutcome(logger *zap.Logger, status domain.PlaybackStatus) domain.ActivityOutcome {
	if !status.Active {
		return domain.Idle()
	}
	if status.ArtworkURL == "" {
		logger.Warn("Playing item has no artwork", zap.String("item", status.DisplayName))
		return domain.Unavailable(domain.ReasonResolveFailed)
	}

	ref := domain.ArtworkRef{
		Locator: status.ArtworkURL,
		Key:     status.ArtworkURL,
		Title:   status.DisplayName,
	}
	return domain.Active(ref, domain.KindMusic)
}
