package model

// This module defines the pixel level data structures shared by the
// decoder, the players and the LED sinks

// Color is a single 8 bit RGB pixel as transmitted to the strip
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0x00, 0x00, 0x00}
	White = Color{0xFF, 0xFF, 0xFF}
	Red   = Color{0xFF, 0x00, 0x00}
)

// IsBlack is true for the structural transparent value used by overlays
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Scale multiplies every channel by factor, truncating toward zero
func (c Color) Scale(factor float64) Color {
	return Color{
		R: scaleChannel(c.R, factor),
		G: scaleChannel(c.G, factor),
		B: scaleChannel(c.B, factor),
	}
}

func scaleChannel(v uint8, factor float64) uint8 {
	f := float64(v) * factor
	if f >= 255 {
		return 255
	}
	if f <= 0 {
		return 0
	}
	return uint8(f)
}

// Buffer is a frame of pixels, one entry per LED on the strip
type Buffer []Color

func NewBuffer(pixels int) Buffer {
	return make(Buffer, pixels)
}

// Fill sets every pixel to c
func (buf Buffer) Fill(c Color) {
	for i := range buf {
		buf[i] = c
	}
}

// Clear resets the buffer to black
func (buf Buffer) Clear() {
	buf.Fill(Black)
}

// Tint is a per channel multiplier applied to tint keyed pixels
type Tint struct {
	R, G, B float64
}

// NoTint leaves tint keyed pixels at their encoded values
var NoTint = Tint{1.0, 1.0, 1.0}

// TintOf converts a blade color into the multipliers that recolor a pure red
// key into that color
func TintOf(c Color) Tint {
	return Tint{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
