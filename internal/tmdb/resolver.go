package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p/original"

	_maxBodySize = 1 << 20
)

// Resolver looks up poster images by TMDB id
type Resolver struct {
	logger    *zap.Logger
	client    *http.Client
	apiBase   string
	imageBase string
	apiKey    string
}

// NewResolver creates a poster resolver. Empty bases select the public service.
func NewResolver(logger *zap.Logger, apiBase, imageBase, apiKey string) *Resolver {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if imageBase == "" {
		imageBase = DefaultImageBase
	}
	return &Resolver{
		logger:    logger,
		client:    &http.Client{Timeout: 10 * time.Second},
		apiBase:   strings.TrimRight(apiBase, "/"),
		imageBase: strings.TrimRight(imageBase, "/"),
		apiKey:    apiKey,
	}
}

// Resolve implements domain.ArtworkResolver. Episodes use the season poster
// when a season is known and the show poster otherwise.
func (r *Resolver) Resolve(ctx context.Context, mediaType domain.ActivityKind, externalID string, season int) (string, error) {
	var endpoint string
	id := url.PathEscape(externalID)
	switch mediaType {
	case domain.KindMovie:
		endpoint = "/movie/" + id
	case domain.KindEpisode:
		endpoint = "/tv/" + id
		if season > 0 {
			endpoint += "/season/" + strconv.Itoa(season)
		}
	default:
		return "", fmt.Errorf("unsupported media type %q", mediaType)
	}

	q := url.Values{"api_key": {r.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiBase+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s %s: %w", mediaType, externalID, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		PosterPath string `json:"poster_path"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxBodySize)).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode metadata: %w", err)
	}
	if payload.PosterPath == "" {
		return "", fmt.Errorf("%s %s has no poster: %w", mediaType, externalID, domain.ErrNotFound)
	}

	poster := r.imageBase + payload.PosterPath
	r.logger.Debug("Poster resolved", zap.String("id", externalID), zap.String("url", poster))
	return poster, nil
}
