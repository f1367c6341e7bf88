// Package fit computes how artwork of arbitrary aspect ratio is placed on a
// fixed-resolution panel. Fit is pure geometry; Apply performs the pixel work.
package fit

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/coverpanel/internal/domain"
)

// ErrInvalidSize is returned when source or target dimensions are not positive
var ErrInvalidSize = errors.New("invalid size")

// Mode selects the fitting strategy
type Mode string

const (
	// ModeFill scales to cover the panel, then crops
	ModeFill Mode = "fill"
	// ModeLetterbox scales to fit inside the panel, then pads with black
	ModeLetterbox Mode = "letterbox"
)

// ParseMode maps a configuration string to a Mode. Empty means fill.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFill:
		return ModeFill, nil
	case ModeLetterbox:
		return ModeLetterbox, nil
	default:
		return "", fmt.Errorf("unknown fit mode %q", s)
	}
}

// Geometry describes the scaled image and where the panel window sits on it.
// In fill mode Left/Top is the crop origin inside the scaled image.
// In letterbox mode Left/Top is the paste origin on the panel.
type Geometry struct {
	ScaledWidth  int
	ScaledHeight int
	Left         int
	Top          int
}

// Fit computes the placement of a source image onto target.
// zoomPercent <= 0 means no zoom. verticalOffset moves the fill crop window
// down (positive) or up (negative); the window is clamped to the scaled image.
func Fit(source, target domain.PanelSize, mode Mode, zoomPercent, verticalOffset int) (Geometry, error) {
	if source.Width <= 0 || source.Height <= 0 {
		return Geometry{}, fmt.Errorf("source %dx%d: %w", source.Width, source.Height, ErrInvalidSize)
	}
	if target.Width <= 0 || target.Height <= 0 {
		return Geometry{}, fmt.Errorf("target %dx%d: %w", target.Width, target.Height, ErrInvalidSize)
	}

	if mode == ModeLetterbox {
		return letterbox(source, target), nil
	}
	return fill(source, target, zoomPercent, verticalOffset), nil
}

func fill(source, target domain.PanelSize, zoomPercent, verticalOffset int) Geometry {
	var w, h int
	// Compare aspect ratios with integer cross products to stay exact.
	if source.Width*target.Height < target.Width*source.Height {
		// source is narrower than the panel: width is the binding axis
		w = target.Width
		h = target.Width * source.Height / source.Width
	} else {
		h = target.Height
		w = target.Height * source.Width / source.Height
	}
	w = max(w, target.Width)
	h = max(h, target.Height)

	if zoomPercent > 0 {
		factor := 1 + float64(zoomPercent)/100
		w = int(float64(w) * factor)
		h = int(float64(h) * factor)
	}

	left := (w - target.Width) / 2
	top := (h-target.Height)/2 + verticalOffset
	top = min(max(top, 0), h-target.Height)

	return Geometry{ScaledWidth: w, ScaledHeight: h, Left: left, Top: top}
}

func letterbox(source, target domain.PanelSize) Geometry {
	var w, h int
	if source.Width*target.Height > target.Width*source.Height {
		// source is wider than the panel
		w = target.Width
		h = target.Width * source.Height / source.Width
	} else {
		h = target.Height
		w = target.Height * source.Width / source.Height
	}
	w = min(max(w, 1), target.Width)
	h = min(max(h, 1), target.Height)

	return Geometry{
		ScaledWidth:  w,
		ScaledHeight: h,
		Left:         (target.Width - w) / 2,
		Top:          (target.Height - h) / 2,
	}
}

// Apply resizes img per g and produces a frame of exactly target size
func Apply(img image.Image, g Geometry, target domain.PanelSize, mode Mode) *image.NRGBA {
	scaled := imaging.Resize(img, g.ScaledWidth, g.ScaledHeight, imaging.Lanczos)

	if mode == ModeLetterbox {
		background := imaging.New(target.Width, target.Height, color.NRGBA{0, 0, 0, 255})
		return imaging.Paste(background, scaled, image.Pt(g.Left, g.Top))
	}

	return imaging.Crop(scaled, image.Rect(g.Left, g.Top, g.Left+target.Width, g.Top+target.Height))
}
