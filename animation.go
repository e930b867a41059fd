package saber

// This file contains the players that wrap a frame decoder.  A base
// animation covers the whole strip and is recolored through the tint rule, an
// overlay covers a shorter positioned span and is blended onto whatever the
// destination already holds

import (
	"math/rand"
	"time"

	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/saber/model"
)

// Renderer is anything that can generate a frame for a given time.  It
// returns false once the effect has run to completion
type Renderer interface {
	AdvanceInto(buf model.Buffer, now time.Time) bool
}

// DefaultBrightness is the per pixel brightness base animations decode with
const DefaultBrightness = 0.6

type AnimationConfig struct {
	Path       string
	Width      int
	Tint       model.Tint
	Interval   time.Duration
	Skip       int
	Brightness float64
}

// Animation plays a full strip binary animation
type Animation struct {
	dec        *frameDecoder
	tint       model.Tint
	brightness float64
}

func OpenAnimation(assets Assets, cfg AnimationConfig) (anim *Animation, err errors.Error) {
	dec, err := openDecoder(assets, cfg.Path, cfg.Width, cfg.Interval, cfg.Skip)
	if err != nil {
		return nil, err
	}
	return &Animation{
		dec:        dec,
		tint:       cfg.Tint,
		brightness: cfg.Brightness,
	}, nil
}

// AdvanceInto writes the next frame into buf when one is due, buf keeps its
// previous contents between frames
func (anim *Animation) AdvanceInto(buf model.Buffer, now time.Time) bool {
	active, fresh := anim.dec.advance(now)
	if fresh {
		for i := 0; i < anim.dec.width && i < len(buf); i++ {
			r, g, b := anim.dec.pixel(i)
			buf[i] = Recolor(r, g, b, anim.tint, anim.brightness)
		}
	}
	return active
}

// SetTint changes the tint used for frames decoded from now on
func (anim *Animation) SetTint(tint model.Tint) {
	anim.tint = tint
}

func (anim *Animation) Tint() model.Tint {
	return anim.tint
}

func (anim *Animation) Reset() errors.Error {
	return anim.dec.reset()
}

func (anim *Animation) Done() bool {
	return anim.dec.done
}

// Err is the read failure that ended the animation, nil for a normal end of
// stream
func (anim *Animation) Err() errors.Error {
	return anim.dec.err
}

func (anim *Animation) Path() string {
	return anim.dec.path
}

// Close releases the asset, the animation reports done afterwards
func (anim *Animation) Close() {
	anim.dec.release()
	anim.dec.done = true
}

type OverlayConfig struct {
	Path     string
	Width    int
	Position int
	Interval time.Duration
	Skip     int
}

// Overlay plays a short grayscale animation over a base buffer
type Overlay struct {
	dec *frameDecoder
	pos int
}

func OpenOverlay(assets Assets, cfg OverlayConfig) (overlay *Overlay, err errors.Error) {
	dec, err := openDecoder(assets, cfg.Path, cfg.Width, cfg.Interval, cfg.Skip)
	if err != nil {
		return nil, err
	}
	return &Overlay{
		dec: dec,
		pos: cfg.Position,
	}, nil
}

// AdvanceInto decodes the next overlay frame when one is due and blends the
// most recent frame onto buf at the current position.  The most recent frame
// is painted on every call so callers can clear buf each tick and move the
// overlay between frames
func (overlay *Overlay) AdvanceInto(buf model.Buffer, now time.Time) bool {
	active, fresh := overlay.dec.advance(now)
	if active || fresh {
		overlay.paint(buf)
	}
	return active
}

func (overlay *Overlay) paint(buf model.Buffer) {
	for i := 0; i < overlay.dec.width; i++ {
		idx := overlay.pos + i
		if idx < 0 || idx >= len(buf) {
			continue
		}
		r, g, b := overlay.dec.pixel(i)
		buf[idx], _ = BlendOverlay(buf[idx], r, g, b)
	}
}

func (overlay *Overlay) SetPosition(pos int) {
	overlay.pos = pos
}

func (overlay *Overlay) Position() int {
	return overlay.pos
}

func (overlay *Overlay) Width() int {
	return overlay.dec.width
}

func (overlay *Overlay) Reset() errors.Error {
	return overlay.dec.reset()
}

func (overlay *Overlay) Done() bool {
	return overlay.dec.done
}

func (overlay *Overlay) Err() errors.Error {
	return overlay.dec.err
}

func (overlay *Overlay) Close() {
	overlay.dec.release()
	overlay.dec.done = true
}

// CenterPosition places an overlay of width in the middle of the strip
func CenterPosition(pixels int, width int) int {
	if pixels <= width {
		return 0
	}
	return (pixels - width) / 2
}

// RandomPosition picks a uniformly random start that keeps the overlay on
// the strip
func RandomPosition(rnd *rand.Rand, pixels int, width int) int {
	if pixels <= width {
		return 0
	}
	return rnd.Intn(pixels - width + 1)
}

// TiltPosition maps a tilt reading onto the overlay start position, the
// reading at max puts the overlay at the hilt and at min at the tip
func TiltPosition(tilt float64, min float64, max float64, pixels int, width int) int {
	if pixels <= width || max <= min {
		return 0
	}
	t := (max - tilt) / (max - min)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return int(float64(pixels-width) * t)
}
