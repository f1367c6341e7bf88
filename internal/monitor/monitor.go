package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/genricoloni/coverpanel/internal/domain"
	"github.com/genricoloni/coverpanel/internal/source"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	propMetadata    = "org.mpris.MediaPlayer2.Player.Metadata"
	propStatus      = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
)

// Dialer opens a session bus connection
type Dialer func() (DBusClient, error)

// MprisSource reports local media playback as a music source. Each tick it
// asks every MPRIS player on the session bus for its status and picks the
// first one that is playing.
type MprisSource struct {
	logger *zap.Logger
	dial   Dialer

	mu   sync.Mutex
	conn DBusClient
}

// NewMprisSource creates an MPRIS source. The bus is dialed on the first
// fetch and re-dialed after a bus error.
func NewMprisSource(logger *zap.Logger, dial Dialer) *MprisSource {
	return &MprisSource{
		logger: logger,
		dial:   dial,
	}
}

// Fetch implements domain.ActivitySource
func (m *MprisSource) Fetch(ctx context.Context) domain.ActivityOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		conn, err := m.dial()
		if err != nil {
			m.logger.Warn("Failed to connect to session bus", zap.Error(err))
			return domain.Unavailable(domain.ReasonTransport)
		}
		m.conn = conn
	}

	names, err := m.conn.ListNames()
	if err != nil {
		m.logger.Warn("Failed to list bus names", zap.Error(err))
		m.dropConn()
		return domain.Unavailable(domain.ReasonTransport)
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return domain.Unavailable(domain.ReasonTransport)
		}
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}

		status, err := m.playerStatus(name)
		if err != nil {
			// Players come and go between ListNames and the property call
			m.logger.Debug("Skipping player", zap.String("player", name), zap.Error(err))
			continue
		}
		if status.Active {
			m.logger.Debug("Playing MPRIS player found",
				zap.String("player", name),
				zap.String("item", status.DisplayName))
			return source.PlaybackOutcome(m.logger, status)
		}
	}

	return domain.Idle()
}

// Close releases the bus connection, if any
func (m *MprisSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

func (m *MprisSource) dropConn() {
	if err := m.conn.Close(); err != nil {
		m.logger.Debug("Failed to close D-Bus connection", zap.Error(err))
	}
	m.conn = nil
}

// playerStatus reads one player. Anything but "Playing" is inactive.
func (m *MprisSource) playerStatus(player string) (domain.PlaybackStatus, error) {
	statusVariant, err := m.conn.GetProperty(player, mprisObjectPath, propStatus)
	if err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("failed to get playback status: %w", err)
	}

	status, ok := statusVariant.Value().(string)
	if !ok {
		return domain.PlaybackStatus{}, fmt.Errorf("invalid playback status format")
	}
	if status != "Playing" {
		return domain.PlaybackStatus{}, nil
	}

	variant, err := m.conn.GetProperty(player, mprisObjectPath, propMetadata)
	if err != nil {
		return domain.PlaybackStatus{}, fmt.Errorf("failed to get metadata: %w", err)
	}

	// Some players return nil or unexpected types while switching tracks
	metadata, _ := variant.Value().(map[string]dbus.Variant)
	return m.parseMetadata(metadata), nil
}

// parseMetadata converts MPRIS metadata of a playing player
func (m *MprisSource) parseMetadata(metadata map[string]dbus.Variant) domain.PlaybackStatus {
	status := domain.PlaybackStatus{Active: true, ItemKind: "track"}
	if metadata == nil {
		return status
	}

	var title, artist string
	if titleVar, ok := metadata["xesam:title"]; ok {
		title, _ = titleVar.Value().(string)
	}

	// Artist is a list per the MPRIS spec, but some players send a string
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				artist = artists[0]
			}
		case string:
			artist = artists
		default:
			m.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	switch {
	case artist != "" && title != "":
		status.DisplayName = artist + " - " + title
	default:
		status.DisplayName = artist + title
	}

	// Browsers and local files may send an empty artUrl
	if artVar, ok := metadata["mpris:artUrl"]; ok {
		status.ArtworkURL, _ = artVar.Value().(string)
	}

	return status
}
