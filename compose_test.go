package saber

import (
	"math/rand"
	"testing"

	"github.com/TeamNorCal/saber/model"
)

func randomBuffer(rnd *rand.Rand, n int, blackEvery int) model.Buffer {
	buf := model.NewBuffer(n)
	for i := range buf {
		if rnd.Intn(blackEvery) == 0 {
			continue
		}
		buf[i] = model.Color{R: uint8(rnd.Intn(256)), G: uint8(rnd.Intn(256)), B: uint8(rnd.Intn(256))}
	}
	return buf
}

func TestCompose(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		base := randomBuffer(rnd, 80, 10)
		overlay := randomBuffer(rnd, 80, 2)
		out := model.NewBuffer(80)

		Compose(out, base, overlay)

		for i := range out {
			if overlay[i].IsBlack() {
				if out[i] != base[i] {
					t.Fatalf("index %d should show the base", i)
				}
			} else if out[i] != overlay[i] {
				t.Fatalf("index %d should show the overlay", i)
			}
		}
	}
}

func TestComposeDimmed(t *testing.T) {
	base := model.Buffer{{R: 200, G: 100, B: 51}, {R: 200, G: 100, B: 51}}
	overlay := model.Buffer{{}, {R: 9, G: 9, B: 9}}
	out := model.NewBuffer(2)

	ComposeDimmed(out, base, overlay, 0.5)

	if out[0] != (model.Color{R: 100, G: 50, B: 25}) {
		t.Fatalf("base not dimmed, got %+v", out[0])
	}
	if out[1] != overlay[1] {
		t.Fatal("the overlay must not be dimmed")
	}
	if base[0] != (model.Color{R: 200, G: 100, B: 51}) {
		t.Fatal("dimming must not modify the base buffer")
	}
}
