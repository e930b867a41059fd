package saber

// This file contains the modes that blend an overlay over the running base,
// clash, blast and lockup

import (
	"time"

	"github.com/TeamNorCal/saber/model"
)

// flashFallback stands in for a strike overlay that cannot be opened
func flashFallback(hold time.Duration) Renderer {
	return &Blink{Color: model.White, On: hold, Off: 0, Count: 1}
}

func (e *Engine) openStrike(spec OverlaySpec, pos int, fallback time.Duration) Renderer {
	overlay, err := OpenOverlay(e.io.Effects, OverlayConfig{
		Path:     spec.Path,
		Width:    spec.Width,
		Position: pos,
		Interval: spec.Interval,
	})
	if err != nil {
		e.logger.Warn("overlay unavailable, flashing instead", "path", spec.Path, "error", err.Error())
		return flashFallback(fallback)
	}
	return overlay
}

func (e *Engine) enterClash() {
	e.playSound(e.io.Sounds.Hit(e.rnd), VoiceFX, false)
	e.fx = e.openStrike(e.cfg.Clash, CenterPosition(e.cfg.Pixels, e.cfg.Clash.Width), 100*time.Millisecond)
}

func (e *Engine) enterBlast() {
	e.playSound(e.io.Sounds.Blast(e.rnd), VoiceFX, false)
	e.fx = e.openStrike(e.cfg.Blast, RandomPosition(e.rnd, e.cfg.Pixels, e.cfg.Blast.Width), 50*time.Millisecond)
}

// strike advances the base and the one shot overlay, returning false once
// the overlay has run out
func (e *Engine) strike(now time.Time) (active bool) {
	e.advanceBase(now)

	e.overlay.Clear()
	active = e.fx != nil && e.fx.AdvanceInto(e.overlay, now)
	Compose(e.out, e.base, e.overlay)
	return active
}

func (e *Engine) tickClash(now time.Time) {
	if e.strike(now) {
		return
	}
	if e.io.Button.Pressed() {
		e.transition(model.Lockup)
	} else {
		e.transition(model.Idle)
	}
}

func (e *Engine) tickBlast(now time.Time) {
	if !e.strike(now) {
		e.transition(model.Idle)
	}
}

func (e *Engine) enterLockup() {
	e.playSound(e.io.Sounds.Lockup, VoiceFX, true)

	spec := e.cfg.Lockup
	overlay, err := OpenOverlay(e.io.Effects, OverlayConfig{
		Path:     spec.Path,
		Width:    spec.Width,
		Interval: spec.Interval,
	})
	if err != nil {
		e.logger.Warn("lockup overlay unavailable, using a solid beam", "path", spec.Path, "error", err.Error())
		return
	}
	e.lock = overlay
}

// lockupPosition tracks the beam to the blade tilt
func (e *Engine) lockupPosition() int {
	_, y, _ := e.io.Sensor.Acceleration()
	return TiltPosition(y, e.cfg.TiltMin, e.cfg.TiltMax, e.cfg.Pixels, e.cfg.Lockup.Width)
}

func (e *Engine) tickLockup(now time.Time) {
	e.advanceBase(now)
	e.overlay.Clear()

	pos := e.lockupPosition()
	if e.lock != nil {
		e.lock.SetPosition(pos)
		if !e.lock.AdvanceInto(e.overlay, now) {
			// loop without a dark tick between passes
			if err := e.lock.Reset(); err != nil {
				e.logger.Warn("lockup overlay could not restart, using a solid beam", "error", err.Error())
				e.lock.Close()
				e.lock = nil
			} else {
				e.lock.AdvanceInto(e.overlay, now)
			}
		}
	}
	if e.lock == nil {
		for i := pos; i < pos+e.cfg.Lockup.Width && i < len(e.overlay); i++ {
			e.overlay[i] = model.White
		}
	}

	ComposeDimmed(e.out, e.base, e.overlay, e.cfg.LockupDim)

	if !e.io.Button.Pressed() {
		e.transition(model.Idle)
	}
}

// LockupPosition is the overlay start position of the running lockup beam,
// -1 outside of lockup
func (e *Engine) LockupPosition() int {
	if e.mode != model.Lockup {
		return -1
	}
	if e.lock != nil {
		return e.lock.Position()
	}
	return e.lockupPosition()
}
