// Package preview renders single frames of a session at a playhead time:
// the active clip image with its effect applied and the visible text drawn
// on top.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/reelcut/reelcut/internal/editor"
	"github.com/reelcut/reelcut/internal/effects"
	"github.com/reelcut/reelcut/internal/session"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 360
)

var background = color.RGBA{A: 255}

type Renderer struct {
	width, height int
}

func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// FrameInfo describes what a rendered frame contains.
type FrameInfo struct {
	At     float64              `json:"at"`
	ClipID string               `json:"clipId,omitempty"`
	Effect editor.EffectSetting `json:"effect"`
	Texts  int                  `json:"texts"`
}

// Render draws the frame of s at time at. Gaps between clips render as a
// black frame that still carries visible text.
func (r *Renderer) Render(s *session.Session, at float64) (*image.RGBA, FrameInfo, error) {
	frame := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	info := FrameInfo{At: at, Effect: editor.NoEffect}

	var renderErr error
	s.Read(func(st *session.State) {
		if c, ok := st.Timeline.ClipAt(editor.ClipTypeVideo, at); ok {
			info.ClipID = c.ID
			if src := s.Media().Image(c.ImagePath); src != nil {
				fit(frame, src)
			}
			info.Effect = st.Effects.Lookup(c.ID)
			effects.Apply(frame, info.Effect)
		}
		info.Texts = len(st.Overlay.Visible(at))
		renderErr = st.Overlay.Rasterize(frame, at)
	})
	if renderErr != nil {
		return nil, FrameInfo{}, renderErr
	}
	return frame, info, nil
}

// RenderPNG writes the frame at time at to w as PNG.
func (r *Renderer) RenderPNG(w io.Writer, s *session.Session, at float64) (FrameInfo, error) {
	frame, info, err := r.Render(s, at)
	if err != nil {
		return FrameInfo{}, err
	}
	return info, png.Encode(w, frame)
}

// fit scales src into dst preserving its aspect ratio, centered.
func fit(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	db := dst.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	scale := min(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x0 := db.Min.X + (db.Dx()-w)/2
	y0 := db.Min.Y + (db.Dy()-h)/2

	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, sb, draw.Over, nil)
}
