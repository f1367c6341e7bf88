package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/coverpanel/internal/arbiter"
	"github.com/genricoloni/coverpanel/internal/domain"
	"github.com/genricoloni/coverpanel/internal/fit"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultFontSize = 18.0

	_outlineWidth    = 2
	_luminanceMiddle = 127.5
)

// Options controls how frames are composed
type Options struct {
	Panel        domain.PanelSize
	Mode         fit.Mode
	ZoomPercent  int
	OffsetPixels int
	ClockOverlay bool
	// ColorDepth is the number of bits kept per channel, 1 to 8
	ColorDepth int
	FontSize   float64
}

// Frame is a composed panel image
type Frame struct {
	Image *image.NRGBA
	// Degraded is set when the artwork could not be loaded and the clock
	// was drawn in its place
	Degraded bool
}

// Compositor turns arbiter decisions into panel frames
type Compositor struct {
	logger  *zap.Logger
	fetcher domain.Fetcher
	opts    Options
	face    font.Face
}

// New creates a compositor. The clock face falls back to a bitmap font when
// the vector font cannot be loaded.
func New(logger *zap.Logger, fetcher domain.Fetcher, opts Options) *Compositor {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.ColorDepth < 1 || opts.ColorDepth > 8 {
		opts.ColorDepth = 8
	}
	if opts.Mode == "" {
		opts.Mode = fit.ModeFill
	}

	return &Compositor{
		logger:  logger,
		fetcher: fetcher,
		opts:    opts,
		face:    loadFace(logger, opts.FontSize),
	}
}

func loadFace(logger *zap.Logger, size float64) font.Face {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		logger.Warn("Falling back to bitmap font", zap.Error(err))
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		logger.Warn("Falling back to bitmap font", zap.Error(err))
		return basicfont.Face7x13
	}
	return face
}

// Render composes the frame for d. Content that cannot be fetched or decoded
// yields a degraded clock frame instead of an error.
func (c *Compositor) Render(ctx context.Context, d arbiter.Decision, now time.Time) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	minute := d.Minute
	if minute == "" {
		minute = now.Format(arbiter.MinuteLayout)
	}

	if d.Kind == domain.ShownClock {
		return Frame{Image: c.clock(minute)}, nil
	}

	img, err := c.content(ctx, d.Artwork)
	if err != nil {
		c.logger.Warn("Artwork unavailable, showing clock",
			zap.String("key", d.Artwork.Key),
			zap.Error(err))
		return Frame{Image: c.clock(minute), Degraded: true}, nil
	}

	if c.opts.ClockOverlay {
		c.drawText(img, minute)
	}
	return Frame{Image: img}, nil
}

// Blank returns an all-black panel frame
func (c *Compositor) Blank() *image.NRGBA {
	return imaging.New(c.opts.Panel.Width, c.opts.Panel.Height, color.NRGBA{0, 0, 0, 255})
}

func (c *Compositor) content(ctx context.Context, ref domain.ArtworkRef) (*image.NRGBA, error) {
	data, err := c.fetcher.Fetch(ctx, ref.Locator)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	g, err := fit.Fit(domain.PanelSize{Width: b.Dx(), Height: b.Dy()}, c.opts.Panel,
		c.opts.Mode, c.opts.ZoomPercent, c.opts.OffsetPixels)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fitting artwork",
		zap.Int("src_w", b.Dx()), zap.Int("src_h", b.Dy()),
		zap.Int("scaled_w", g.ScaledWidth), zap.Int("scaled_h", g.ScaledHeight))

	frame := fit.Apply(src, g, c.opts.Panel, c.opts.Mode)
	quantize(frame, c.opts.ColorDepth)
	return frame, nil
}

func (c *Compositor) clock(minute string) *image.NRGBA {
	img := c.Blank()
	c.drawText(img, minute)
	return img
}

// drawText centers text on img, picking the text color from the brightness
// underneath it and tracing an outline in the opposite color
func (c *Compositor) drawText(img *image.NRGBA, text string) {
	bounds, _ := font.BoundString(c.face, text)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x0 := (img.Bounds().Dx() - w) / 2
	y0 := (img.Bounds().Dy() - h) / 2
	region := image.Rect(x0, y0, x0+w, y0+h).Intersect(img.Bounds())

	fg, outline := textColors(regionLuminance(img, region))

	// Dot is the baseline origin; shift it so the ink box lands on region
	dot := fixed.Point26_6{
		X: fixed.I(x0) - bounds.Min.X,
		Y: fixed.I(y0) - bounds.Min.Y,
	}

	d := &font.Drawer{Dst: img, Face: c.face, Src: image.NewUniform(outline)}
	for dy := -_outlineWidth; dy <= _outlineWidth; dy++ {
		for dx := -_outlineWidth; dx <= _outlineWidth; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = dot.Add(fixed.P(dx, dy))
			d.DrawString(text)
		}
	}

	d.Src = image.NewUniform(fg)
	d.Dot = dot
	d.DrawString(text)
}

// textColors returns the text and outline colors for a background of the
// given mean luminance
func textColors(luminance float64) (fg, outline color.Color) {
	if luminance > _luminanceMiddle {
		return color.Black, color.White
	}
	return color.White, color.Black
}

// regionLuminance is the mean ITU-R 601 luma of r. An empty region reads as dark.
func regionLuminance(img *image.NRGBA, r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}

	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := img.NRGBAAt(x, y)
			sum += 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
		}
	}
	return sum / float64(r.Dx()*r.Dy())
}

// quantize reduces every color channel to depth bits in place
func quantize(img *image.NRGBA, depth int) {
	if depth >= 8 {
		return
	}

	levels := (1 << depth) - 1
	var table [256]uint8
	for v := range table {
		q := (v*levels + 127) / 255
		table[v] = uint8(q * 255 / levels)
	}

	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = table[img.Pix[i]]
		img.Pix[i+1] = table[img.Pix[i+1]]
		img.Pix[i+2] = table[img.Pix[i+2]]
	}
}
