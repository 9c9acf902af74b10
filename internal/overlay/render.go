package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FadeFraction is the share of an animated item's duration spent fading in
// and, symmetrically, fading out.
const FadeFraction = 0.3

// Placement is a visible item resolved to canvas pixels.
type Placement struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Color   string  `json:"color"`
	Size    int     `json:"size"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
}

// Layout resolves the items visible at t onto a width x height canvas.
func (o *TextOverlay) Layout(t float64, width, height int) []Placement {
	visible := o.Visible(t)
	out := make([]Placement, 0, len(visible))
	for _, it := range visible {
		opacity := 1.0
		if it.Animation {
			opacity = fadeOpacity((t - it.StartTime) / it.Duration)
		}
		out = append(out, Placement{
			ID:      it.ID,
			Content: it.Content,
			Color:   it.Color,
			Size:    it.Size,
			X:       it.X * float64(width),
			Y:       it.Y * float64(height),
			Opacity: opacity,
		})
	}
	return out
}

func fadeOpacity(progress float64) float64 {
	switch {
	case progress < FadeFraction:
		return math.Max(0, progress/FadeFraction)
	case progress > 1-FadeFraction:
		return math.Max(0, (1-progress)/FadeFraction)
	default:
		return 1
	}
}

// Rasterize draws the items visible at t onto dst, each centered on its
// anchor point with a soft shadow.
func (o *TextOverlay) Rasterize(dst *image.RGBA, t float64) error {
	b := dst.Bounds()
	face := basicfont.Face7x13

	for _, p := range o.Layout(t, b.Dx(), b.Dy()) {
		if p.Opacity <= 0 {
			continue
		}
		c, err := ParseColor(p.Color)
		if err != nil {
			return fmt.Errorf("text item %s: %w", p.ID, err)
		}
		c.A = uint8(math.Round(float64(c.A) * p.Opacity))

		drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
		bounds, _ := drawer.BoundString(p.Content)
		textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
		textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

		x := b.Min.X + int(p.X) - textWidth/2
		y := b.Min.Y + int(p.Y) + textHeight/2

		shadow := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.NRGBA{0, 0, 0, uint8(math.Round(180 * p.Opacity))}),
			Face: face,
			Dot:  fixed.P(x+1, y+1),
		}
		shadow.DrawString(p.Content)

		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(p.Content)
	}
	return nil
}

// ParseColor parses #rgb and #rrggbb hex colors.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", errInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", errInvalidColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
