package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/coverpanel/internal/fit"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COVERPANEL_"

// Supported values for MusicSource
const (
	MusicSpotify = "spotify"
	MusicMPRIS   = "mpris"
	MusicNone    = "none"
)

// Supported values for Sink
const (
	SinkFile    = "file"
	SinkCommand = "command"
	SinkSSD1306 = "ssd1306"
)

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// AppConfig holds application configuration
type AppConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`

	PanelWidth   int     `yaml:"panel_width"`
	PanelHeight  int     `yaml:"panel_height"`
	ColorDepth   int     `yaml:"color_depth"`
	FitMode      string  `yaml:"fit_mode"`
	ZoomPercent  int     `yaml:"zoom_percent"`
	OffsetPixels int     `yaml:"offset_pixels"`
	ClockOverlay bool    `yaml:"clock_overlay"`
	FontSize     float64 `yaml:"font_size"`

	MusicSource         string `yaml:"music_source"`
	SpotifyClientID     string `yaml:"spotify_client_id"`
	SpotifyClientSecret string `yaml:"spotify_client_secret"`
	CredentialsPath     string `yaml:"credentials_path"`

	WatchEnabled  bool   `yaml:"watch_enabled"`
	TraktClientID string `yaml:"trakt_client_id"`
	TraktUsername string `yaml:"trakt_username"`
	TMDBAPIKey    string `yaml:"tmdb_api_key"`

	Sink        string `yaml:"sink"`
	OutputDir   string `yaml:"output_dir"`
	SinkCommand string `yaml:"sink_command"`
	I2CBus      string `yaml:"i2c_bus"`

	JournalPath      string        `yaml:"journal_path"`
	JournalRetention time.Duration `yaml:"journal_retention"`
}

// Default returns the configuration used when nothing is overridden
func Default() *AppConfig {
	return &AppConfig{
		PollInterval:     10 * time.Second,
		PanelWidth:       64,
		PanelHeight:      64,
		ColorDepth:       8,
		FitMode:          "fill",
		ClockOverlay:     true,
		FontSize:         18,
		MusicSource:      MusicNone,
		CredentialsPath:  "~/.config/coverpanel/credentials.json",
		Sink:             SinkFile,
		OutputDir:        "/tmp/coverpanel",
		JournalPath:      "~/.local/state/coverpanel/journal.db",
		JournalRetention: 7 * 24 * time.Hour,
	}
}

// NewAppConfig creates the application configuration: defaults, then the
// YAML file named by COVERPANEL_CONFIG, then COVERPANEL_* variables.
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	cfg := Default()

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := cfg.loadFile(expandPath(path)); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.CredentialsPath = expandPath(cfg.CredentialsPath)
	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.JournalPath = expandPath(cfg.JournalPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.Duration("pollInterval", cfg.PollInterval),
		zap.Int("panelWidth", cfg.PanelWidth),
		zap.Int("panelHeight", cfg.PanelHeight),
		zap.String("fitMode", cfg.FitMode),
		zap.Bool("clockOverlay", cfg.ClockOverlay),
		zap.String("musicSource", cfg.MusicSource),
		zap.Bool("watchEnabled", cfg.WatchEnabled),
		zap.String("sink", cfg.Sink),
		zap.String("outputDir", cfg.OutputDir),
		zap.String("journalPath", cfg.JournalPath))

	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "config", Reason: err.Error()}
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return &ConfigError{Field: "config", Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return nil
}

// envReader applies COVERPANEL_* overrides and keeps the first parse failure
type envReader struct {
	err error
}

func (r *envReader) readString(key string, dst *string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func (r *envReader) readInt(key string, dst *int) {
	v := os.Getenv(envPrefix + key)
	if v == "" || r.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = &ConfigError{Field: strings.ToLower(key), Reason: fmt.Sprintf("%q is not an integer", v)}
		return
	}
	*dst = n
}

func (r *envReader) readFloat(key string, dst *float64) {
	v := os.Getenv(envPrefix + key)
	if v == "" || r.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = &ConfigError{Field: strings.ToLower(key), Reason: fmt.Sprintf("%q is not a number", v)}
		return
	}
	*dst = f
}

func (r *envReader) readBool(key string, dst *bool) {
	v := os.Getenv(envPrefix + key)
	if v == "" || r.err != nil {
		return
	}
	switch v {
	case "1", "true", "TRUE", "yes", "YES":
		*dst = true
	case "0", "false", "FALSE", "no", "NO":
		*dst = false
	default:
		r.err = &ConfigError{Field: strings.ToLower(key), Reason: fmt.Sprintf("%q is not a boolean", v)}
	}
}

func (r *envReader) readDuration(key string, dst *time.Duration) {
	v := os.Getenv(envPrefix + key)
	if v == "" || r.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = &ConfigError{Field: strings.ToLower(key), Reason: fmt.Sprintf("%q is not a duration", v)}
		return
	}
	*dst = d
}

func (c *AppConfig) applyEnv() error {
	r := &envReader{}

	r.readDuration("POLL_INTERVAL", &c.PollInterval)
	r.readInt("PANEL_WIDTH", &c.PanelWidth)
	r.readInt("PANEL_HEIGHT", &c.PanelHeight)
	r.readInt("COLOR_DEPTH", &c.ColorDepth)
	r.readString("FIT_MODE", &c.FitMode)
	r.readInt("ZOOM_PERCENT", &c.ZoomPercent)
	r.readInt("OFFSET_PIXELS", &c.OffsetPixels)
	r.readBool("CLOCK_OVERLAY", &c.ClockOverlay)
	r.readFloat("FONT_SIZE", &c.FontSize)

	r.readString("MUSIC_SOURCE", &c.MusicSource)
	r.readString("SPOTIFY_CLIENT_ID", &c.SpotifyClientID)
	r.readString("SPOTIFY_CLIENT_SECRET", &c.SpotifyClientSecret)
	r.readString("CREDENTIALS_PATH", &c.CredentialsPath)

	r.readBool("WATCH_ENABLED", &c.WatchEnabled)
	r.readString("TRAKT_CLIENT_ID", &c.TraktClientID)
	r.readString("TRAKT_USERNAME", &c.TraktUsername)
	r.readString("TMDB_API_KEY", &c.TMDBAPIKey)

	r.readString("SINK", &c.Sink)
	r.readString("OUTPUT_DIR", &c.OutputDir)
	r.readString("SINK_COMMAND", &c.SinkCommand)
	r.readString("I2C_BUS", &c.I2CBus)

	r.readString("JOURNAL_PATH", &c.JournalPath)
	r.readDuration("JOURNAL_RETENTION", &c.JournalRetention)

	return r.err
}

// Validate checks ranges and that every enabled integration has what it needs
func (c *AppConfig) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return &ConfigError{Field: "poll_interval", Reason: "must be positive"}
	case c.PanelWidth <= 0:
		return &ConfigError{Field: "panel_width", Reason: "must be positive"}
	case c.PanelHeight <= 0:
		return &ConfigError{Field: "panel_height", Reason: "must be positive"}
	case c.ColorDepth < 1 || c.ColorDepth > 8:
		return &ConfigError{Field: "color_depth", Reason: "must be between 1 and 8"}
	case c.FontSize <= 0:
		return &ConfigError{Field: "font_size", Reason: "must be positive"}
	}
	if _, err := fit.ParseMode(c.FitMode); err != nil {
		return &ConfigError{Field: "fit_mode", Reason: err.Error()}
	}

	switch c.MusicSource {
	case MusicSpotify:
		if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
			return &ConfigError{Field: "spotify_client_id", Reason: "client id and secret are required for the spotify source"}
		}
		if c.CredentialsPath == "" {
			return &ConfigError{Field: "credentials_path", Reason: "required for the spotify source"}
		}
	case MusicMPRIS, MusicNone:
	default:
		return &ConfigError{Field: "music_source", Reason: fmt.Sprintf("unknown source %q", c.MusicSource)}
	}

	if c.WatchEnabled {
		switch {
		case c.TraktClientID == "":
			return &ConfigError{Field: "trakt_client_id", Reason: "required when watch is enabled"}
		case c.TraktUsername == "":
			return &ConfigError{Field: "trakt_username", Reason: "required when watch is enabled"}
		case c.TMDBAPIKey == "":
			return &ConfigError{Field: "tmdb_api_key", Reason: "required when watch is enabled"}
		}
	}

	switch c.Sink {
	case SinkFile:
	case SinkCommand:
		if strings.TrimSpace(c.SinkCommand) == "" {
			return &ConfigError{Field: "sink_command", Reason: "required for the command sink"}
		}
	case SinkSSD1306:
	default:
		return &ConfigError{Field: "sink", Reason: fmt.Sprintf("unknown sink %q", c.Sink)}
	}
	if c.OutputDir == "" && c.Sink != SinkSSD1306 {
		return &ConfigError{Field: "output_dir", Reason: "required for file based sinks"}
	}

	if c.JournalPath != "" && c.JournalRetention < 0 {
		return &ConfigError{Field: "journal_retention", Reason: "must not be negative"}
	}
	return nil
}

// expandPath resolves environment variables and a leading ~
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
