package saber

// This file contains a sink that previews the strip as a row of colored
// blocks in a terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/saber/model"
)

type TermSink struct {
	screen tcell.Screen
	x, y   int
	rows   int

	frame dimmedFrame
	sync.Mutex
}

// NewTermSink draws the strip at x, y on screen, repeating it rows times so it
// is easier to see
func NewTermSink(screen tcell.Screen, x int, y int, rows int, pixels int) *TermSink {
	if rows <= 0 {
		rows = 1
	}
	return &TermSink{
		screen: screen,
		x:      x,
		y:      y,
		rows:   rows,
		frame:  newDimmedFrame(pixels),
	}
}

func (sink *TermSink) SetBrightness(brightness float64) {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.brightness = brightness
	sink.frame.last = nil
}

func (sink *TermSink) Write(buf model.Buffer) errors.Error {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.load(buf)
	return nil
}

func (sink *TermSink) Show() errors.Error {
	sink.Lock()
	defer sink.Unlock()

	hash, changed := sink.frame.changed()
	if !changed {
		return nil
	}

	for i, c := range sink.frame.pixels {
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		glyph := '█'
		if c.IsBlack() {
			glyph = '·'
			style = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
		}
		for row := 0; row < sink.rows; row++ {
			sink.screen.SetContent(sink.x+i, sink.y+row, glyph, nil, style)
		}
	}
	sink.screen.Show()
	sink.frame.last = hash
	return nil
}
