package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/genricoloni/coverpanel/internal/arbiter"
	"github.com/genricoloni/coverpanel/internal/compositor"
	"github.com/genricoloni/coverpanel/internal/config"
	"github.com/genricoloni/coverpanel/internal/domain"
	"github.com/genricoloni/coverpanel/internal/engine"
	"github.com/genricoloni/coverpanel/internal/fetcher"
	"github.com/genricoloni/coverpanel/internal/fit"
	"github.com/genricoloni/coverpanel/internal/journal"
	"github.com/genricoloni/coverpanel/internal/monitor"
	"github.com/genricoloni/coverpanel/internal/sink"
	"github.com/genricoloni/coverpanel/internal/source"
	"github.com/genricoloni/coverpanel/internal/spotify"
	"github.com/genricoloni/coverpanel/internal/tmdb"
	"github.com/genricoloni/coverpanel/internal/trakt"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the complete application graph
var AppOptions = fx.Options(
	// Provide dependencies
	fx.Provide(
		newLogger,
		config.NewAppConfig,
		fx.Annotate(fetcher.NewHTTPFetcher, fx.As(new(domain.Fetcher))),
		newMusicSource,
		newWatchSource,
		newArbiter,
		fx.Annotate(newCompositor, fx.As(new(engine.Renderer))),
		newSink,
		newJournal,
		newEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		AppOptions,
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

type musicResult struct {
	fx.Out

	Source domain.ActivitySource `name:"music"`
}

// newMusicSource selects the configured music source
func newMusicSource(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig) (musicResult, error) {
	switch cfg.MusicSource {
	case config.MusicSpotify:
		creds, err := source.LoadCredentials(logger, cfg.CredentialsPath)
		if err != nil {
			return musicResult{}, err
		}
		client := spotify.NewClient(logger, spotify.DefaultAPIBase)
		refresher := spotify.NewRefresher(logger, spotify.DefaultTokenURL, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		return musicResult{Source: source.NewMusicSource(logger, client, refresher, creds)}, nil

	case config.MusicMPRIS:
		mpris := monitor.NewMprisSource(logger, monitor.NewStdDBusClient)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return mpris.Close()
			},
		})
		return musicResult{Source: mpris}, nil

	default:
		logger.Info("Music source disabled")
		return musicResult{Source: source.Disabled{}}, nil
	}
}

type watchResult struct {
	fx.Out

	Source domain.ActivitySource `name:"watch"`
}

// newWatchSource wires the watch-activity service and poster lookup
func newWatchSource(logger *zap.Logger, cfg *config.AppConfig) watchResult {
	if !cfg.WatchEnabled {
		logger.Info("Watch source disabled")
		return watchResult{Source: source.Disabled{}}
	}

	client := trakt.NewClient(logger, trakt.DefaultAPIBase, cfg.TraktClientID, cfg.TraktUsername)
	resolver := tmdb.NewResolver(logger, tmdb.DefaultAPIBase, tmdb.DefaultImageBase, cfg.TMDBAPIKey)
	return watchResult{Source: source.NewWatchSource(logger, client, resolver)}
}

func newArbiter(cfg *config.AppConfig) *arbiter.Arbiter {
	return arbiter.New(cfg.ClockOverlay)
}

func newCompositor(logger *zap.Logger, f domain.Fetcher, cfg *config.AppConfig) (*compositor.Compositor, error) {
	mode, err := fit.ParseMode(cfg.FitMode)
	if err != nil {
		return nil, err
	}
	return compositor.New(logger, f, compositor.Options{
		Panel:        domain.PanelSize{Width: cfg.PanelWidth, Height: cfg.PanelHeight},
		Mode:         mode,
		ZoomPercent:  cfg.ZoomPercent,
		OffsetPixels: cfg.OffsetPixels,
		ClockOverlay: cfg.ClockOverlay,
		ColorDepth:   cfg.ColorDepth,
		FontSize:     cfg.FontSize,
	}), nil
}

// newSink opens the configured display behind a guard
func newSink(logger *zap.Logger, cfg *config.AppConfig) (domain.Sink, error) {
	var inner domain.Sink

	switch cfg.Sink {
	case config.SinkSSD1306:
		panel := domain.PanelSize{Width: cfg.PanelWidth, Height: cfg.PanelHeight}
		s, err := sink.NewSSD1306Sink(logger, cfg.I2CBus, panel)
		if err != nil {
			return nil, err
		}
		inner = s

	case config.SinkCommand:
		file, err := sink.NewFileSink(logger, cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		s, err := sink.NewCommandSink(logger, file, cfg.SinkCommand)
		if err != nil {
			return nil, err
		}
		inner = s

	default:
		s, err := sink.NewFileSink(logger, cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		inner = s
	}

	return sink.NewGuard(inner), nil
}

// newJournal opens the render journal, or returns nil when it is disabled
func newJournal(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig) (domain.Journal, error) {
	if cfg.JournalPath == "" {
		return nil, nil
	}

	store, err := journal.Open(context.Background(), logger, cfg.JournalPath)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.JournalRetention <= 0 {
				return nil
			}
			n, err := store.Prune(ctx, time.Now().Add(-cfg.JournalRetention))
			if err != nil {
				logger.Warn("Failed to prune journal", zap.Error(err))
				return nil
			}
			logger.Info("Journal pruned", zap.Int64("rows", n))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

type engineParams struct {
	fx.In

	Logger   *zap.Logger
	Config   *config.AppConfig
	Music    domain.ActivitySource `name:"music"`
	Watch    domain.ActivitySource `name:"watch"`
	Arbiter  *arbiter.Arbiter
	Renderer engine.Renderer
	Sink     domain.Sink
	Journal  domain.Journal
}

func newEngine(p engineParams) *engine.Engine {
	return engine.NewEngine(p.Logger, p.Music, p.Watch, p.Arbiter, p.Renderer, p.Sink, p.Journal, p.Config.PollInterval)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Coverpanel Daemon Started")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return eng.Stop(ctx)
		},
	})
}
