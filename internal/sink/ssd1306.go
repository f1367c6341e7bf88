package sink

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// SSD1306Sink drives a monochrome SSD1306 OLED over I2C
type SSD1306Sink struct {
	logger *zap.Logger
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
}

// NewSSD1306Sink opens the I2C bus (empty name picks the first one) and
// initializes a panel of the given size
func NewSSD1306Sink(logger *zap.Logger, busName string, size domain.PanelSize) (*SSD1306Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", busName, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W = size.Width
	opts.H = size.Height

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to initialize ssd1306: %w", err), bus.Close())
	}

	logger.Info("SSD1306 panel ready",
		zap.String("bus", busName),
		zap.Int("width", size.Width),
		zap.Int("height", size.Height))

	return &SSD1306Sink{logger: logger, bus: bus, dev: dev}, nil
}

// Draw converts img to the panel's 1-bit layout and pushes it
func (s *SSD1306Sink) Draw(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mono := toMono(img, s.dev.Bounds())
	if err := s.dev.Draw(mono.Bounds(), mono, image.Point{}); err != nil {
		return fmt.Errorf("failed to draw on ssd1306: %w", err)
	}
	return nil
}

// Close turns the panel off and releases the bus
func (s *SSD1306Sink) Close() error {
	return multierr.Combine(s.dev.Halt(), s.bus.Close())
}

// toMono thresholds img into the controller's vertical LSB-first bit layout
func toMono(img image.Image, bounds image.Rectangle) *image1bit.VerticalLSB {
	mono := image1bit.NewVerticalLSB(bounds)
	draw.Draw(mono, mono.Bounds(), img, img.Bounds().Min, draw.Src)
	return mono
}
