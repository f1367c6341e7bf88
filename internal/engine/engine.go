package engine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/coverpanel/internal/arbiter"
	"github.com/genricoloni/coverpanel/internal/compositor"
	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Renderer composes frames for arbiter decisions
type Renderer interface {
	Render(ctx context.Context, d arbiter.Decision, now time.Time) (compositor.Frame, error)
	Blank() *image.NRGBA
}

// Engine drives the poll loop: fetch both sources, arbitrate, render and
// push the frame to the panel, once per interval.
type Engine struct {
	logger   *zap.Logger
	music    domain.ActivitySource
	watch    domain.ActivitySource
	arbiter  *arbiter.Arbiter
	renderer Renderer
	sink     domain.Sink
	journal  domain.Journal // optional
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new poll loop. journal may be nil.
func NewEngine(
	logger *zap.Logger,
	music domain.ActivitySource,
	watch domain.ActivitySource,
	arb *arbiter.Arbiter,
	renderer Renderer,
	sink domain.Sink,
	journal domain.Journal,
	interval time.Duration,
) *Engine {
	return &Engine{
		logger:   logger,
		music:    music,
		watch:    watch,
		arbiter:  arb,
		renderer: renderer,
		sink:     sink,
		journal:  journal,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the loop in a goroutine and returns immediately.
// The first tick runs right away.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...", zap.Duration("interval", e.interval))

	// The start context only bounds startup; the loop lives until Stop
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.runLoop(loopCtx)
	return nil
}

func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick runs one fetch/arbitrate/render cycle. Failures are logged and
// leave the display state untouched so the next tick retries.
func (e *Engine) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Tick panicked, continuing", zap.Any("panic", r))
		}
	}()

	music, watch := e.fetchBoth(ctx)
	now := e.now()

	d := e.arbiter.Decide(music, watch, now)
	e.logger.Debug("Tick",
		zap.Stringer("music", music),
		zap.Stringer("watch", watch),
		zap.String("decision", string(d.Kind)),
		zap.Bool("render", d.Render))

	if !d.Render {
		return
	}

	frame, err := e.renderer.Render(ctx, d, now)
	if err != nil {
		e.logger.Error("Failed to render frame", zap.Error(err))
		return
	}

	if err := e.sink.Draw(ctx, frame.Image); err != nil {
		e.logger.Error("Failed to draw frame",
			zap.String("reason", domain.ReasonSink),
			zap.Error(err))
		return
	}

	if frame.Degraded {
		e.arbiter.Invalidate()
		e.logger.Warn("Showed clock in place of artwork, will retry",
			zap.String("key", d.Artwork.Key))
	} else {
		e.arbiter.Commit(d)
		e.logger.Info("Panel updated",
			zap.String("kind", string(d.Kind)),
			zap.String("title", d.Artwork.Title),
			zap.String("minute", d.Minute))
	}

	e.record(ctx, d, frame.Degraded, now)
}

// fetchBoth queries both sources concurrently and waits for both answers
func (e *Engine) fetchBoth(ctx context.Context) (music, watch domain.ActivityOutcome) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		music = e.safeFetch(ctx, "music", e.music)
	}()
	go func() {
		defer wg.Done()
		watch = e.safeFetch(ctx, "watch", e.watch)
	}()
	wg.Wait()
	return music, watch
}

func (e *Engine) safeFetch(ctx context.Context, name string, src domain.ActivitySource) (out domain.ActivityOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Source panicked", zap.String("source", name), zap.Any("panic", r))
			out = domain.Unavailable(domain.ReasonTransport)
		}
	}()
	return src.Fetch(ctx)
}

func (e *Engine) record(ctx context.Context, d arbiter.Decision, degraded bool, now time.Time) {
	if e.journal == nil {
		return
	}

	entry := domain.JournalEntry{
		Kind:       d.Kind,
		Key:        d.Artwork.Key,
		Title:      d.Artwork.Title,
		Degraded:   degraded,
		RenderedAt: now,
	}
	if err := e.journal.Record(ctx, entry); err != nil {
		e.logger.Warn("Failed to journal render", zap.Error(err))
	}
}

// Stop ends the loop after the current tick, blanks the panel and closes the sink
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	if e.cancel != nil {
		e.cancel()
		select {
		case <-e.done:
		case <-ctx.Done():
			return fmt.Errorf("engine loop did not stop: %w", ctx.Err())
		}
	}

	err := e.sink.Draw(ctx, e.renderer.Blank())
	if err != nil {
		err = fmt.Errorf("failed to blank panel: %w", err)
	}
	err = multierr.Append(err, e.sink.Close())

	if err != nil {
		e.logger.Error("Engine stopped with errors", zap.Error(err))
		return err
	}
	e.logger.Info("Engine stopped, panel blanked")
	return nil
}
