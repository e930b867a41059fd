package saber

// This file contains the lit blade modes that run without an overlay, idle,
// swing and bleed, along with the base renderer every lit mode shares

import (
	"math"
	"time"

	"github.com/TeamNorCal/saber/model"
)

// openIdle builds the base renderer for the current pack.  The pack leds
// animation is used when animation is enabled, a chase when the pack has none
// or it cannot be opened, and a plain fill when animation is disabled
func (e *Engine) openIdle() {
	e.releaseIdle()
	e.base.Clear()
	e.overlay.Clear()

	pack := e.Pack()
	e.idlePack = pack.Name

	if !e.cfg.UseAnimation {
		e.idle = &Fill{Color: e.cfg.Color}
		return
	}

	if leds := pack.Leds; leds != nil && len(leds.Asset) != 0 {
		anim, err := OpenAnimation(e.io.Assets, AnimationConfig{
			Path:       leds.Asset,
			Width:      e.cfg.Pixels,
			Tint:       e.phaseTint(leds),
			Interval:   leds.Interval,
			Brightness: e.cfg.Brightness,
		})
		if err == nil {
			e.idle = anim
			e.idleAnim = anim
			return
		}
		e.logger.Warn("idle animation unavailable, using chase", "pack", pack.Name, "error", err.Error())
	}
	e.idle = NewChase(e.cfg.Color)
}

func (e *Engine) releaseIdle() {
	if e.idleAnim != nil {
		e.idleAnim.Close()
	}
	e.idle = nil
	e.idleAnim = nil
	e.idlePack = ""
}

func (e *Engine) phaseTint(phase *model.Phase) model.Tint {
	if phase == nil || !phase.Tinting {
		return model.NoTint
	}
	return model.TintOf(e.cfg.Color)
}

// advanceBase runs the idle renderer one step into the base buffer, looping
// the idle animation and swapping it when the pack changed
func (e *Engine) advanceBase(now time.Time) {
	if e.idle == nil || e.idlePack != e.Pack().Name {
		e.openIdle()
	}

	if e.idle.AdvanceInto(e.base, now) {
		return
	}
	if e.idleAnim == nil {
		return
	}

	if err := e.idleAnim.Err(); err != nil {
		e.logger.Warn("idle animation failed, using chase", "path", e.idleAnim.Path(), "error", err.Error())
		e.fallbackIdle()
		return
	}
	if err := e.idleAnim.Reset(); err != nil {
		e.logger.Warn("idle animation could not restart, using chase", "path", e.idleAnim.Path(), "error", err.Error())
		e.fallbackIdle()
		return
	}
	e.idleAnim.AdvanceInto(e.base, now)
}

func (e *Engine) fallbackIdle() {
	e.idleAnim.Close()
	e.idleAnim = nil
	e.idle = NewChase(e.cfg.Color)
}

// recolorIdle changes the color of the running base renderer
func (e *Engine) recolorIdle(color model.Color) {
	switch idle := e.idle.(type) {
	case *Animation:
		if e.idleTinted() {
			idle.SetTint(model.TintOf(color))
		}
	case *Chase:
		idle.SetColor(color)
	case *Fill:
		idle.Color = color
	}
}

func (e *Engine) idleTinted() bool {
	leds := e.Pack().Leds
	return leds != nil && leds.Tinting
}

func (e *Engine) humSound() string {
	if leds := e.Pack().Leds; leds != nil && e.cfg.UseAnimation && len(leds.Sound) != 0 {
		return leds.Sound
	}
	return e.io.Sounds.Idle
}

func (e *Engine) enterIdle() {
	if e.idle == nil {
		e.openIdle()
	}
	e.overlay.Clear()
}

func (e *Engine) tickIdle(now time.Time) {
	e.advanceBase(now)
	copy(e.out, e.base)

	if !e.io.Mixer.Playing(VoiceHum) {
		e.playSound(e.humSound(), VoiceHum, true)
	}

	x, _, z := e.io.Sensor.Acceleration()
	if e.io.Sensor.Tapped() {
		e.transition(model.Clash)
	} else if x*x+z*z >= e.cfg.SwingThreshold && !e.io.Mixer.Playing(VoiceFX) {
		e.transition(model.Swing)
	}

	// long presses only select packs while off
	e.io.Button.LongPress()

	switch e.io.Button.ShortCount() {
	case 1:
		e.transition(model.Blast)
	case 2:
		e.transition(model.ShutDown)
	case 3:
		e.transition(model.Bleed)
	}
}

func (e *Engine) tickSwing(now time.Time) {
	if !e.io.Mixer.Playing(VoiceFX) {
		e.playSound(e.io.Sounds.Swing(e.rnd), VoiceFX, false)
	}
	e.advanceBase(now)
	copy(e.out, e.base)
	e.transition(model.Idle)
}

type bleedState struct {
	ref   float64
	color model.Color
}

func (e *Engine) enterBleed() {
	_, _, z := e.io.Sensor.Acceleration()
	e.bleed = bleedState{
		ref:   z,
		color: e.cfg.Color,
	}
}

// bleedColor moves from the blade color toward the alarm color as the z
// reading drifts away from where it was when bleeding started
func (e *Engine) bleedColor(z float64) model.Color {
	span := e.cfg.BleedSpan
	if span <= 0 {
		span = 1
	}
	t := math.Min(1, math.Abs(z-e.bleed.ref)/span)
	return Lerp(e.cfg.Color, e.cfg.Alarm, t)
}

func (e *Engine) tickBleed(now time.Time) {
	if e.idle == nil || e.idlePack != e.Pack().Name {
		e.openIdle()
	}
	// an untinted idle animation cannot show the drift
	if _, isAnim := e.idle.(*Animation); isAnim && !e.idleTinted() {
		e.advanceBase(now)
		copy(e.out, e.base)
		e.transition(model.Idle)
		return
	}

	_, _, z := e.io.Sensor.Acceleration()
	e.bleed.color = e.bleedColor(z)
	e.recolorIdle(e.bleed.color)
	e.advanceBase(now)
	copy(e.out, e.base)

	if e.io.Button.ShortCount() == 1 {
		e.transition(model.Idle)
	}
}

// exitBleed keeps the alarm color when the blade left bleeding fully
// saturated, otherwise the blade color is restored
func (e *Engine) exitBleed() {
	if e.bleed.color == e.cfg.Alarm {
		e.cfg.Color = e.cfg.Alarm
	}
	e.recolorIdle(e.cfg.Color)
}
