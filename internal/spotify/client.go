package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	_maxBodySize = 1 << 20
	_userAgent   = "coverpanelDaemon/1.0"
)

// imageRef is one entry of an images array; the first entry is the largest
type imageRef struct {
	URL string `json:"url"`
}

// currentlyPlaying is the subset of the currently-playing response we use.
// Item is a pointer because the service sends null between tracks and for
// private sessions.
type currentlyPlaying struct {
	IsPlaying            bool   `json:"is_playing"`
	CurrentlyPlayingType string `json:"currently_playing_type"`
	Item                 *struct {
		Name  string `json:"name"`
		Album *struct {
			Images []imageRef `json:"images"`
		} `json:"album"`
		// episodes carry their own images and a show
		Images []imageRef `json:"images"`
		Show   *struct {
			Images []imageRef `json:"images"`
		} `json:"show"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"item"`
}

// Client talks to the playback endpoints of the Spotify Web API
type Client struct {
	logger  *zap.Logger
	client  *http.Client
	apiBase string
}

// NewClient creates a playback client. apiBase may be empty for the public API.
func NewClient(logger *zap.Logger, apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: strings.TrimRight(apiBase, "/"),
	}
}

// CurrentlyPlaying implements domain.PlaybackClient
func (c *Client) CurrentlyPlaying(ctx context.Context, accessToken string) (domain.PlaybackStatus, error) {
	endpoint := c.apiBase + "/me/player/currently-playing?additional_types=episode"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", _userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return domain.PlaybackStatus{}, nil
	case http.StatusUnauthorized:
		return domain.PlaybackStatus{}, domain.ErrUnauthorized
	default:
		return domain.PlaybackStatus{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodySize))
	if err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.PlaybackStatus{}, nil
	}

	var payload currentlyPlaying
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("failed to decode playback: %w", err)
	}
	return toStatus(payload), nil
}

func toStatus(p currentlyPlaying) domain.PlaybackStatus {
	if !p.IsPlaying || p.Item == nil {
		return domain.PlaybackStatus{}
	}

	status := domain.PlaybackStatus{
		Active:      true,
		ItemKind:    p.CurrentlyPlayingType,
		DisplayName: p.Item.Name,
	}
	if len(p.Item.Artists) > 0 {
		status.DisplayName = p.Item.Artists[0].Name + " - " + p.Item.Name
	}

	switch {
	case p.Item.Album != nil && len(p.Item.Album.Images) > 0:
		status.ArtworkURL = p.Item.Album.Images[0].URL
	case len(p.Item.Images) > 0:
		status.ArtworkURL = p.Item.Images[0].URL
	case p.Item.Show != nil && len(p.Item.Show.Images) > 0:
		status.ArtworkURL = p.Item.Show.Images[0].URL
	}
	return status
}

// Refresher exchanges a refresh token for a new access token
type Refresher struct {
	logger       *zap.Logger
	client       *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
}

// NewRefresher creates a token refresher for the given application credentials
func NewRefresher(logger *zap.Logger, tokenURL, clientID, clientSecret string) *Refresher {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &Refresher{
		logger:       logger,
		client:       &http.Client{Timeout: 10 * time.Second},
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh implements domain.TokenRefresher. The returned refresh token is
// empty when the service keeps the old one.
func (r *Refresher) Refresh(ctx context.Context, stored domain.Credentials) (domain.Credentials, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {stored.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", _userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Credentials{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxBodySize)).Decode(&tok); err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return domain.Credentials{}, fmt.Errorf("no access token in response")
	}

	r.logger.Debug("Token endpoint issued new access token",
		zap.Bool("rotatedRefresh", tok.RefreshToken != ""))
	return domain.Credentials{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}
