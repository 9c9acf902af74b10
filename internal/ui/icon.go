package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var iconBytes = renderIcon(22)

// renderIcon draws a film strip glyph: a filled frame with sprocket holes
// down both edges and a play triangle in the middle.
func renderIcon(size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	ink := color.NRGBA{R: 0xe8, G: 0x4a, B: 0x3c, A: 0xff}
	hole := color.NRGBA{}

	for y := 2; y < size-2; y++ {
		for x := 1; x < size-1; x++ {
			img.SetNRGBA(x, y, ink)
		}
	}
	for y := 4; y < size-4; y += 4 {
		img.SetNRGBA(2, y, hole)
		img.SetNRGBA(2, y+1, hole)
		img.SetNRGBA(size-3, y, hole)
		img.SetNRGBA(size-3, y+1, hole)
	}

	mid := size / 2
	for x := size / 3; x < size*2/3+1; x++ {
		reach := (x - size/3) / 2
		for y := mid - (size/6 - reach); y <= mid+(size/6-reach); y++ {
			img.SetNRGBA(x, y, hole)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
