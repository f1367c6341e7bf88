package sink

import (
	"context"
	"image"
	"sync"

	"github.com/genricoloni/coverpanel/internal/domain"
)

// Guard serializes access to a sink so only one frame is ever in flight.
// The lock is released on every exit path, including a driver panic.
type Guard struct {
	mu   sync.Mutex
	sink domain.Sink
}

// NewGuard wraps s
func NewGuard(s domain.Sink) *Guard {
	return &Guard{sink: s}
}

// Draw forwards img to the wrapped sink while holding the lock
func (g *Guard) Draw(ctx context.Context, img image.Image) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sink.Draw(ctx, img)
}

// Close closes the wrapped sink once any in-flight draw has finished
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sink.Close()
}
