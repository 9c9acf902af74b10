package effects

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/reelcut/reelcut/internal/editor"
)

// Apply transforms img in place according to s. Alpha is left untouched.
// Applying the same setting to the same input always yields the same output.
func Apply(img *image.RGBA, s editor.EffectSetting) {
	s = s.Normalize()
	switch s.Type {
	case editor.EffectGrayscale:
		k := float64(s.Value) / 100
		eachPixel(img, func(r, g, b float64) (float64, float64, float64) {
			gray := 0.3*r + 0.59*g + 0.11*b
			return blend(r, gray, k), blend(g, gray, k), blend(b, gray, k)
		})
	case editor.EffectSepia:
		k := float64(s.Value) / 100
		eachPixel(img, func(r, g, b float64) (float64, float64, float64) {
			tr := math.Min(255, 0.393*r+0.769*g+0.189*b)
			tg := math.Min(255, 0.349*r+0.686*g+0.168*b)
			tb := math.Min(255, 0.272*r+0.534*g+0.131*b)
			return blend(r, tr, k), blend(g, tg, k), blend(b, tb, k)
		})
	case editor.EffectBrightness:
		offset := float64((s.Value - 50) * 2)
		eachPixel(img, func(r, g, b float64) (float64, float64, float64) {
			return r + offset, g + offset, b + offset
		})
	case editor.EffectContrast:
		factor := float64(s.Value) / 50
		eachPixel(img, func(r, g, b float64) (float64, float64, float64) {
			return (r-128)*factor + 128, (g-128)*factor + 128, (b-128)*factor + 128
		})
	case editor.EffectBlur:
		Blur(img, float64(s.Value)/10)
	}
}

// Blur softens img by resampling it down by (1+radius) and back up. The
// work is left to the scaler rather than a convolution over every pixel.
func Blur(img *image.RGBA, radius float64) {
	if radius < 0.5 {
		return
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) / (1 + radius))
	h := int(float64(b.Dy()) / (1 + radius))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)
	draw.BiLinear.Scale(img, b, small, small.Bounds(), draw.Src, nil)
}

func eachPixel(img *image.RGBA, fn func(r, g, b float64) (float64, float64, float64)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			i := row + x*4
			px := img.Pix[i : i+3 : i+3]
			r, g, bl := fn(float64(px[0]), float64(px[1]), float64(px[2]))
			px[0] = clampByte(r)
			px[1] = clampByte(g)
			px[2] = clampByte(bl)
		}
	}
}

// blend moves c toward target by k in [0,1]. The endpoints are returned
// exactly so that k=0 is the identity and k=1 is the target.
func blend(c, target, k float64) float64 {
	switch {
	case k <= 0:
		return c
	case k >= 1:
		return target
	default:
		return c + (target-c)*k
	}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
