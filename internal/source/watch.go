package source

import (
	"context"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

// WatchSource polls the watch-activity service and resolves posters
type WatchSource struct {
	logger   *zap.Logger
	client   domain.WatchClient
	resolver domain.ArtworkResolver
}

// NewWatchSource creates a watch source
func NewWatchSource(logger *zap.Logger, client domain.WatchClient, resolver domain.ArtworkResolver) *WatchSource {
	return &WatchSource{
		logger:   logger,
		client:   client,
		resolver: resolver,
	}
}

// Fetch reports what is being watched. It never returns an error.
func (s *WatchSource) Fetch(ctx context.Context) domain.ActivityOutcome {
	status, err := s.client.Watching(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch watch activity", zap.Error(err))
		return domain.Unavailable(domain.ReasonTransport)
	}
	if !status.Active {
		return domain.Idle()
	}

	if status.ExternalID == "" {
		s.logger.Warn("Watched item has no external id", zap.String("title", status.Title))
		return domain.Unavailable(domain.ReasonResolveFailed)
	}

	url, err := s.resolver.Resolve(ctx, status.MediaType, status.ExternalID, status.Season)
	if err != nil || url == "" {
		s.logger.Warn("Failed to resolve poster",
			zap.String("type", string(status.MediaType)),
			zap.String("id", status.ExternalID),
			zap.Int("season", status.Season),
			zap.Error(err))
		return domain.Unavailable(domain.ReasonResolveFailed)
	}

	ref := domain.ArtworkRef{Locator: url, Key: url, Title: status.Title}
	return domain.Active(ref, status.MediaType)
}

// Disabled is a source that is always idle
type Disabled struct{}

// Fetch implements domain.ActivitySource
func (Disabled) Fetch(context.Context) domain.ActivityOutcome {
	return domain.Idle()
}
