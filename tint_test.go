package saber

import (
	"math"
	"testing"

	"github.com/TeamNorCal/saber/model"
)

func TestRecolorRedKey(t *testing.T) {
	tint := model.Tint{R: 0.5, G: 1.0, B: 0.25}

	for r := 1; r < 256; r++ {
		got := Recolor(uint8(r), 0, 0, tint, 1.0)
		want := model.Color{
			R: uint8(math.Floor(float64(r) * 0.5)),
			G: uint8(r),
			B: uint8(math.Floor(float64(r) * 0.25)),
		}
		if got != want {
			t.Fatalf("red key %d recolored to %+v, expected %+v", r, got, want)
		}
	}
}

func TestRecolorHighlightKey(t *testing.T) {
	tint := model.Tint{R: 0.2, G: 2.0, B: 0.5}

	for v := 1; v < 256; v++ {
		got := Recolor(255, uint8(v), uint8(v), tint, 1.0)
		want := model.Color{
			R: 51,
			G: uint8(math.Min(255, math.Floor(float64(v)*2.0))),
			B: uint8(math.Floor(float64(v) * 0.5)),
		}
		if got != want {
			t.Fatalf("highlight key %d recolored to %+v, expected %+v", v, got, want)
		}
	}
}

func TestRecolorLiteral(t *testing.T) {
	tint := model.Tint{R: 0.1, G: 0.1, B: 0.1}

	cases := []model.Color{
		{R: 0, G: 0, B: 0},
		{R: 10, G: 10, B: 10},
		{R: 254, G: 254, B: 254},
		{R: 0, G: 200, B: 0},
		{R: 200, G: 10, B: 0},
		{R: 255, G: 10, B: 20},
		{R: 12, G: 34, B: 56},
	}
	for _, c := range cases {
		if got := Recolor(c.R, c.G, c.B, tint, 1.0); got != c {
			t.Fatalf("literal %+v must not be tinted, got %+v", c, got)
		}
	}
}

func TestRecolorWhiteIsKeyed(t *testing.T) {
	got := Recolor(255, 255, 255, model.TintOf(model.Color{R: 0, G: 255, B: 0}), 1.0)
	if got != (model.Color{R: 0, G: 255, B: 0}) {
		t.Fatalf("white has red at maximum and equal green and blue so it is tinted, got %+v", got)
	}
}

func TestRecolorBrightness(t *testing.T) {
	if got := Recolor(255, 0, 0, model.NoTint, 0.5); got != (model.Color{R: 127, G: 127, B: 127}) {
		t.Fatalf("brightness not applied after the tint, got %+v", got)
	}
	if got := Recolor(100, 100, 100, model.NoTint, 0.5); got != (model.Color{R: 50, G: 50, B: 50}) {
		t.Fatalf("brightness not applied to literal pixels, got %+v", got)
	}
	if got := Recolor(200, 0, 0, model.Tint{R: 4, G: 4, B: 4}, 0.5); got != (model.Color{R: 127, G: 127, B: 127}) {
		t.Fatalf("tint must clamp before brightness, got %+v", got)
	}
}

func TestBlendOverlay(t *testing.T) {
	bg := model.Color{R: 10, G: 100, B: 250}

	if got, opaque := BlendOverlay(bg, 0, 0, 0); opaque || got != bg {
		t.Fatal("black must be transparent")
	}
	if got, opaque := BlendOverlay(bg, 255, 255, 255); !opaque || got != model.White {
		t.Fatal("white must be opaque")
	}
	if got, opaque := BlendOverlay(bg, 255, 10, 10); !opaque || got != (model.Color{R: 255, G: 10, B: 10}) {
		t.Fatal("non gray overlay pixels are literal")
	}

	for v := 1; v < 255; v++ {
		for _, b := range []uint8{0, 1, 77, 128, 254, 255} {
			got, _ := BlendOverlay(model.Color{R: b, G: b, B: b}, uint8(v), uint8(v), uint8(v))
			a := float64(v) / 255.0
			want := uint8(math.Round(float64(b)*(1-a) + 255*a))
			if got.R != want || got.G != want || got.B != want {
				t.Fatalf("gray %d over %d blended to %+v, expected %d", v, b, got, want)
			}
		}
	}
}
