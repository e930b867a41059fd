package saber

// This file contains the per pixel recolor rules.  Base animations mark
// pixels that follow the blade color with a reserved red channel encoding,
// overlays are grayscale where black is transparent and gray blends toward
// white

import (
	"math"

	"github.com/TeamNorCal/saber/model"
)

// isTintKey is true for pure red pixels and for pixels with red at maximum
// and equal green and blue, the latter carrying neutral highlight data
func isTintKey(r, g, b uint8) bool {
	return (r > 0 && g == 0 && b == 0) || (r == 255 && g == b)
}

func tintChannel(v uint8, factor float64) float64 {
	return math.Min(255, math.Floor(float64(v)*factor))
}

// Recolor maps one decoded base animation pixel to its output color.  Tint
// keyed pixels are scaled by the tint, using the red channel as the source of
// all three when green and blue are zero, and clamped before brightness is
// applied.  Every other pixel is literal
func Recolor(r, g, b uint8, tint model.Tint, brightness float64) model.Color {
	var fr, fg, fb float64

	if isTintKey(r, g, b) {
		fr = tintChannel(r, tint.R)
		if g == 0 && b == 0 {
			fg = tintChannel(r, tint.G)
			fb = tintChannel(r, tint.B)
		} else {
			fg = tintChannel(g, tint.G)
			fb = tintChannel(b, tint.B)
		}
	} else {
		fr, fg, fb = float64(r), float64(g), float64(b)
	}

	return model.Color{
		R: brighten(fr, brightness),
		G: brighten(fg, brightness),
		B: brighten(fb, brightness),
	}
}

func brighten(v float64, brightness float64) uint8 {
	v *= brightness
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// BlendOverlay applies one overlay pixel onto dst.  White is opaque, black
// leaves dst untouched, any other gray blends dst toward white with an alpha
// of gray/255 and any non gray color is written literally.  The second return
// is false when the pixel was transparent
func BlendOverlay(dst model.Color, r, g, b uint8) (model.Color, bool) {
	switch {
	case r == 0 && g == 0 && b == 0:
		return dst, false
	case r == 255 && g == 255 && b == 255:
		return model.White, true
	case r == g && g == b:
		alpha := float64(r) / 255.0
		return model.Color{
			R: blendChannel(dst.R, alpha),
			G: blendChannel(dst.G, alpha),
			B: blendChannel(dst.B, alpha),
		}, true
	}
	return model.Color{R: r, G: g, B: b}, true
}

func blendChannel(bg uint8, alpha float64) uint8 {
	return uint8(math.Round(float64(bg)*(1-alpha) + 255*alpha))
}
