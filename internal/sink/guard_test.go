package sink

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/coverpanel/internal/domain/mocks"
	"go.uber.org/mock/gomock"
)

// slowSink records the highest number of concurrent draws it observed
type slowSink struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowSink) Draw(ctx context.Context, img image.Image) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return nil
}

func (s *slowSink) Close() error { return nil }

type panicSink struct{}

func (panicSink) Draw(ctx context.Context, img image.Image) error { panic("driver fault") }
func (panicSink) Close() error                                    { return nil }

func TestGuard_SerializesDraws(t *testing.T) {
	inner := &slowSink{}
	guard := NewGuard(inner)
	frame := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = guard.Draw(context.Background(), frame)
		}()
	}
	wg.Wait()

	if peak := inner.peak.Load(); peak != 1 {
		t.Errorf("expected one frame in flight, saw %d", peak)
	}
}

func TestGuard_ReleasesAfterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockSink(ctrl)
	frame := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	gomock.InOrder(
		inner.EXPECT().Draw(gomock.Any(), frame).Return(errors.New("bus error")),
		inner.EXPECT().Draw(gomock.Any(), frame).Return(nil),
		inner.EXPECT().Close().Return(nil),
	)

	guard := NewGuard(inner)
	if err := guard.Draw(context.Background(), frame); err == nil {
		t.Fatal("expected driver error to propagate")
	}
	if err := guard.Draw(context.Background(), frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := guard.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGuard_ReleasesAfterPanic(t *testing.T) {
	guard := NewGuard(panicSink{})

	func() {
		defer func() { _ = recover() }()
		_ = guard.Draw(context.Background(), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	}()

	done := make(chan struct{})
	go func() {
		_ = guard.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("guard stayed locked after a panicking draw")
	}
}
