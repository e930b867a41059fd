package saber

// This file contains the modes with the blade dark or changing state,
// startup, shutdown, off and the settings menu hand off.  Startup and
// shutdown play a sequence of phases, each an animation paired with a sound,
// and a phase ends only once both have finished

import (
	"time"

	"github.com/TeamNorCal/saber/model"
)

type stage struct {
	name  string
	sound string
	open  func() Renderer

	renderer Renderer
	started  bool
}

func (st *stage) close() {
	if closer, ok := st.renderer.(interface{ Close() }); ok {
		closer.Close()
	}
}

type sequence struct {
	stages []*stage
	idx    int
}

// advance runs the current stage one step into buf.  It returns true once
// every stage has finished, the next stage starts on the following call
func (seq *sequence) advance(e *Engine, buf model.Buffer, now time.Time) (done bool) {
	if seq.idx >= len(seq.stages) {
		return true
	}

	st := seq.stages[seq.idx]
	if !st.started {
		st.started = true
		if st.open != nil {
			st.renderer = st.open()
		}
		e.playSound(st.sound, VoiceFX, false)
		e.logger.Debug("phase started", "phase", st.name, "sound", st.sound)
	}

	if st.renderer != nil && st.renderer.AdvanceInto(buf, now) {
		return false
	}
	if e.io.Mixer.Playing(VoiceFX) {
		return false
	}

	if anim, ok := st.renderer.(*Animation); ok && anim.Err() != nil {
		e.logger.Warn("phase animation ended early", "phase", st.name, "error", anim.Err().Error())
	}
	st.close()
	seq.idx++
	return seq.idx >= len(seq.stages)
}

func (seq *sequence) close() {
	for _, st := range seq.stages[seq.idx:] {
		st.close()
	}
}

func fixed(r Renderer) func() Renderer {
	return func() Renderer { return r }
}

// phaseStage plays a pack phase, substituting the fallback renderer when the
// phase has no animation or its animation cannot be opened
func (e *Engine) phaseStage(name model.PhaseName, phase *model.Phase, sound string, fallback func() Renderer) *stage {
	st := &stage{
		name:  string(name),
		sound: phase.Sound,
		open:  fallback,
	}
	if len(st.sound) == 0 {
		st.sound = sound
	}
	if len(phase.Asset) == 0 {
		return st
	}

	st.open = func() Renderer {
		anim, err := OpenAnimation(e.io.Assets, AnimationConfig{
			Path:       phase.Asset,
			Width:      e.cfg.Pixels,
			Tint:       e.phaseTint(phase),
			Interval:   phase.Interval,
			Brightness: e.cfg.Brightness,
		})
		if err != nil {
			e.logger.Warn("phase animation unavailable", "phase", name, "error", err.Error())
			if fallback == nil {
				return nil
			}
			return fallback()
		}
		return anim
	}
	return st
}

func (e *Engine) ignitionStages() (stages []*stage) {
	pack := e.Pack()
	color := e.cfg.Color
	on := e.io.Sounds.On
	scan := func() Renderer { return NewScan(color) }

	switch {
	case !e.cfg.UseAnimation:
		return []*stage{{name: "fill", sound: on, open: fixed(&Scan{Color: color})}}
	case pack.Builtin:
		return []*stage{{name: pack.Name, sound: on, open: func() Renderer { return builtinIgnition(pack.Name, color) }}}
	}

	if pack.Preon != nil {
		stages = append(stages, e.phaseStage(model.Preon, pack.Preon, "", nil))
	}
	if pack.PowerOn != nil {
		stages = append(stages, e.phaseStage(model.PowerOn, pack.PowerOn, on, scan))
	} else {
		stages = append(stages, &stage{name: "scan", sound: on, open: scan})
	}
	return stages
}

func (e *Engine) retractionStages() (stages []*stage) {
	pack := e.Pack()
	color := e.cfg.Color
	off := e.io.Sounds.Off
	retract := func() Renderer { return NewRetract(color) }

	switch {
	case !e.cfg.UseAnimation:
		return []*stage{{name: "dark", sound: off, open: fixed(&Retract{Color: color})}}
	case pack.Builtin || pack.PowerOff == nil:
		stages = append(stages, &stage{name: "retract", sound: off, open: retract})
	default:
		stages = append(stages, e.phaseStage(model.PowerOff, pack.PowerOff, off, retract))
	}

	if !pack.Builtin && pack.PostOff != nil {
		stages = append(stages, e.phaseStage(model.PostOff, pack.PostOff, "", nil))
	}
	return stages
}

func (e *Engine) enterStartup() {
	e.base.Clear()
	e.overlay.Clear()
	e.seq = &sequence{stages: e.ignitionStages()}
}

func (e *Engine) tickStartup(now time.Time) {
	done := e.seq.advance(e, e.base, now)
	copy(e.out, e.base)
	if done {
		e.transition(model.Idle)
	}
}

func (e *Engine) enterShutDown() {
	e.io.Mixer.Stop(VoiceHum)
	e.overlay.Clear()
	e.seq = &sequence{stages: e.retractionStages()}
}

func (e *Engine) tickShutDown(now time.Time) {
	done := e.seq.advance(e, e.base, now)
	copy(e.out, e.base)
	if done {
		e.transition(model.Off)
	}
}

var previewColors = []model.Color{
	model.White,
	{R: 0, G: 255, B: 255},
	{R: 255, G: 255, B: 0},
	{R: 255, G: 0, B: 255},
}

func (e *Engine) enterOff() {
	e.io.Mixer.Stop(VoiceHum)
	e.base.Clear()
	e.overlay.Clear()
	e.out.Clear()
	e.show = nil
}

func (e *Engine) voltage() float64 {
	if e.io.Battery == nil {
		return e.cfg.FullBattery
	}
	return e.io.Battery.Voltage()
}

// batteryFraction maps the voltage onto the gauge range
func (e *Engine) batteryFraction() float64 {
	span := e.cfg.FullBattery - e.cfg.LowBattery
	if span <= 0 {
		return 1
	}
	frac := (e.voltage() - e.cfg.LowBattery) / span
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

func (e *Engine) tickOff(now time.Time) {
	if e.show != nil {
		if !e.show.AdvanceInto(e.out, now) {
			e.show = nil
			e.out.Clear()
		}
		return
	}
	e.out.Clear()

	if e.io.Button.LongPress() {
		e.cyclePack()
		return
	}

	switch e.io.Button.ShortCount() {
	case 1:
		if v := e.voltage(); v < e.cfg.LowBattery {
			e.logger.Warn("battery low, ignition refused", "volts", v)
			e.playSound(e.io.Sounds.LowBattery, VoiceFX, false)
			e.show = &Blink{Color: model.Red, On: 100 * time.Millisecond, Off: 100 * time.Millisecond, Count: 10}
			return
		}
		e.transition(model.Startup)
	case 2:
		e.logger.Info("battery", "volts", e.voltage())
		e.show = &Gauge{Fraction: e.batteryFraction(), Hold: 5 * time.Second, Dim: 0.1}
	case 3:
		e.transition(model.SettingsMenu)
	}
}

// cyclePack selects the next pack and flashes a preview
func (e *Engine) cyclePack() {
	prev := e.packIdx
	e.packIdx = (e.packIdx + 1) % len(e.packs)
	pack := e.Pack()

	e.logger.Info("pack selected", "pack", pack.Name)
	e.playSound(pack.FontSound(), VoiceFX, false)

	e.base.Clear()
	e.overlay.Clear()
	e.out.Clear()
	e.show = &Blink{
		Color: previewColors[prev%len(previewColors)],
		On:    200 * time.Millisecond,
		Off:   200 * time.Millisecond,
		Count: 3,
	}
}

func (e *Engine) enterSettings() {
	e.io.Mixer.Stop(VoiceHum)
	if e.io.Menu == nil {
		e.transition(model.Off)
		return
	}
	if updated := e.io.Menu.Run(e.settings); updated != nil {
		e.ApplySettings(*updated)
		e.logger.Info("settings applied", "settings", e.settings.String())
	}
	e.transition(model.ShutDown)
}

func (e *Engine) tickSettings(now time.Time) {
	e.out.Clear()
}
