package main

// This file generates a small effect pack and the strike overlays in memory
// so the simulator works without any asset files

import (
	"math"
	"math/rand"

	"github.com/TeamNorCal/saber"
	"github.com/TeamNorCal/saber/model"
)

const demoDescriptor = `{
	"preon":    {"bin": "preon.bin", "frame_time": 40},
	"poweron":  {"bin": "on.bin", "frame_time": 5},
	"leds":     {"bin": "idle.bin", "frame_time": 30},
	"poweroff": {"bin": "off.bin", "frame_time": 5}
}`

func demoPack() *model.Pack {
	pack, _ := model.ParsePack("demo", "demo", []byte(demoDescriptor))
	return pack
}

type frames struct {
	width int
	data  []byte
}

func (f *frames) add(pixel func(i int) (r, g, b uint8)) {
	for i := 0; i < f.width; i++ {
		r, g, b := pixel(i)
		f.data = append(f.data, r, g, b)
	}
}

func demoAssets(pixels int) *saber.MemAssets {
	assets := saber.NewMemAssets()
	rnd := rand.New(rand.NewSource(1))

	// preon sparks near the hilt, literal whites
	preon := &frames{width: pixels}
	for f := 0; f < 12; f++ {
		preon.add(func(i int) (uint8, uint8, uint8) {
			if i < 4 && rnd.Intn(3) == 0 {
				return 220, 220, 220
			}
			return 0, 0, 0
		})
	}
	assets.Add("demo/preon.bin", preon.data)

	// ignition and retraction fill with the red tint key
	on := &frames{width: pixels}
	off := &frames{width: pixels}
	for f := 0; f < pixels; f++ {
		on.add(func(i int) (uint8, uint8, uint8) {
			if i <= f {
				return 255, 0, 0
			}
			return 0, 0, 0
		})
		off.add(func(i int) (uint8, uint8, uint8) {
			if i < pixels-1-f {
				return 255, 0, 0
			}
			return 0, 0, 0
		})
	}
	assets.Add("demo/on.bin", on.data)
	assets.Add("demo/off.bin", off.data)

	// idle ripples the key intensity with a hot highlight at the tip
	idle := &frames{width: pixels}
	for f := 0; f < 48; f++ {
		idle.add(func(i int) (uint8, uint8, uint8) {
			if i == pixels-1 {
				return 255, 180, 180
			}
			phase := 2 * math.Pi * (float64(i)/16.0 + float64(f)/48.0)
			return uint8(190 + 65*math.Sin(phase)), 0, 0
		})
	}
	assets.Add("demo/idle.bin", idle.data)

	// clash fades from white across the whole blade
	hit := &frames{width: pixels}
	for f := 0; f < 6; f++ {
		v := uint8(255 - 40*f)
		hit.add(func(i int) (uint8, uint8, uint8) { return v, v, v })
	}
	assets.Add("hit.bin", hit.data)

	// blast is a bright spot that spreads and fades
	blast := &frames{width: 42}
	for f := 0; f < 10; f++ {
		blast.add(func(i int) (uint8, uint8, uint8) {
			d := math.Abs(float64(i) - 20.5)
			v := 255 - d*float64(30-2*f) - float64(15*f)
			if v <= 0 {
				return 0, 0, 0
			}
			return uint8(v), uint8(v), uint8(v)
		})
	}
	assets.Add("blast.bin", blast.data)

	// lockup flickers between gray and white
	lockup := &frames{width: 20}
	for f := 0; f < 60; f++ {
		lockup.add(func(i int) (uint8, uint8, uint8) {
			if rnd.Intn(4) == 0 {
				return 255, 255, 255
			}
			v := uint8(96 + rnd.Intn(128))
			return v, v, v
		})
	}
	assets.Add("lockup20x60.bin", lockup.data)

	return assets
}
