package trakt

import (
	"bytes"
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
	DefaultAPIBase = "https://api.trakt.tv"

	_maxBodySize = 1 << 20
)

type ids struct {
	TMDB *int64 `json:"tmdb"`
}

// watching is the payload of /users/{user}/watching
type watching struct {
	Type  string `json:"type"`
	Movie *struct {
		Title string `json:"title"`
		IDs   ids    `json:"ids"`
	} `json:"movie"`
	Show *struct {
		Title string `json:"title"`
		IDs   ids    `json:"ids"`
	} `json:"show"`
	Episode *struct {
		Season int    `json:"season"`
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"episode"`
}

// Client reads a user's current check-in or scrobble from Trakt
type Client struct {
	logger   *zap.Logger
	client   *http.Client
	apiBase  string
	clientID string
	username string
}

// NewClient creates a watch-activity client. apiBase may be empty.
func NewClient(logger *zap.Logger, apiBase, clientID, username string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		apiBase:  strings.TrimRight(apiBase, "/"),
		clientID: clientID,
		username: username,
	}
}

// Watching implements domain.WatchClient
func (c *Client) Watching(ctx context.Context) (domain.WatchStatus, error) {
	endpoint := c.apiBase + "/users/" + url.PathEscape(c.username) + "/watching"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.WatchStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("trakt-api-version", "2")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WatchStatus{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return domain.WatchStatus{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return domain.WatchStatus{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodySize))
	if err != nil {
		return domain.WatchStatus{}, fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.WatchStatus{}, nil
	}

	var payload watching
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.WatchStatus{}, fmt.Errorf("failed to decode watching: %w", err)
	}

	status := toStatus(payload)
	c.logger.Debug("Watch activity",
		zap.Bool("active", status.Active),
		zap.String("type", string(status.MediaType)),
		zap.String("title", status.Title))
	return status, nil
}

func toStatus(p watching) domain.WatchStatus {
	switch p.Type {
	case "movie":
		if p.Movie == nil {
			return domain.WatchStatus{}
		}
		return domain.WatchStatus{
			Active:     true,
			MediaType:  domain.KindMovie,
			ExternalID: formatID(p.Movie.IDs.TMDB),
			Title:      p.Movie.Title,
		}
	case "episode":
		if p.Show == nil {
			return domain.WatchStatus{}
		}
		status := domain.WatchStatus{
			Active:     true,
			MediaType:  domain.KindEpisode,
			ExternalID: formatID(p.Show.IDs.TMDB),
			Title:      p.Show.Title,
		}
		if p.Episode != nil {
			status.Season = p.Episode.Season
			status.Title = fmt.Sprintf("%s S%02dE%02d", p.Show.Title, p.Episode.Season, p.Episode.Number)
		}
		return status
	default:
		// no type field: nothing is being watched
		return domain.WatchStatus{}
	}
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
