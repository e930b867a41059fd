package saber

// This file contains the effect state machine.  The engine owns the frame
// buffers, the active players and the current mode.  Exactly one tick runs at
// a time, driven either by Run or directly by a caller supplying the time

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

// Mixer voices
const (
	VoiceHum = 0
	VoiceFX  = 1
)

// Sensor reports the accelerometer, polled once per tick
type Sensor interface {
	Acceleration() (x float64, y float64, z float64)
	Tapped() bool
}

// Button reports the trigger button.  ShortCount is the number of presses in
// the most recently completed burst and is consumed by reading it
type Button interface {
	ShortCount() int
	LongPress() bool
	Pressed() bool
}

type Battery interface {
	Voltage() float64
}

// Mixer triggers sounds, it never blocks on playback
type Mixer interface {
	Play(path string, voice int, loop bool) errors.Error
	Playing(voice int) bool
	Stop(voice int)
	SetLevel(voice int, level float64)
}

// Sink receives every composited frame
type Sink interface {
	Write(buf model.Buffer) errors.Error
	Show() errors.Error
}

// Dimmer is implemented by sinks that scale their output brightness
type Dimmer interface {
	SetBrightness(brightness float64)
}

// SettingsMenu takes over the blade to edit the user settings, returning nil
// when nothing changed
type SettingsMenu interface {
	Run(current Settings) (updated *Settings)
}

// OverlaySpec names an overlay asset and its geometry
type OverlaySpec struct {
	Path     string
	Width    int
	Interval time.Duration
}

type Config struct {
	Pixels int

	Color          model.Color
	Alarm          model.Color
	Brightness     float64 // per pixel brightness of base animations
	SinkBrightness float64
	Volume         float64
	UseAnimation   bool
	SwingThreshold float64

	LowBattery  float64
	FullBattery float64

	Clash  OverlaySpec
	Blast  OverlaySpec
	Lockup OverlaySpec

	TiltMin   float64
	TiltMax   float64
	LockupDim float64
	BleedSpan float64

	TickPeriod time.Duration
	Seed       int64
}

func DefaultConfig() Config {
	return Config{
		Pixels:         80,
		Color:          Palette[3].Color,
		Alarm:          model.Red,
		Brightness:     DefaultBrightness,
		SinkBrightness: brightnessLevels[2],
		Volume:         volumeLevels[2],
		UseAnimation:   true,
		SwingThreshold: swingThresholds[1],
		LowBattery:     3.4,
		FullBattery:    4.0,
		Clash:          OverlaySpec{Path: "hit.bin", Width: 80, Interval: 25 * time.Millisecond},
		Blast:          OverlaySpec{Path: "blast.bin", Width: 42, Interval: 10 * time.Millisecond},
		Lockup:         OverlaySpec{Path: "lockup20x60.bin", Width: 20, Interval: 25 * time.Millisecond},
		TiltMin:        -9.8,
		TiltMax:        9.8,
		LockupDim:      0.5,
		BleedSpan:      7.0,
		TickPeriod:     5 * time.Millisecond,
		Seed:           time.Now().UnixNano(),
	}
}

// Collaborators groups everything the engine talks to, nil members are
// replaced with inert stand ins
type Collaborators struct {
	Assets  Assets // packs
	Effects Assets // clash, blast and lockup overlays
	Sounds  *SoundBank
	Mixer   Mixer
	Sink    Sink
	Sensor  Sensor
	Button  Button
	Battery Battery
	Menu    SettingsMenu
}

type Engine struct {
	cfg      Config
	settings Settings
	io       Collaborators
	logger   logxi.Logger
	rnd      *rand.Rand

	packs   []*model.Pack
	packIdx int

	mode    model.Mode
	pending model.Mode

	base    model.Buffer
	overlay model.Buffer
	out     model.Buffer

	idle     Renderer
	idleAnim *Animation
	idlePack string

	fx       Renderer // clash and blast overlay
	lock     *Overlay
	seq      *sequence
	show     Renderer // battery and pack feedback while off
	bleed    bleedState
	sinkDown bool

	badSounds map[string]struct{}
	pollers   []Poller

	session  string
	eventSeq uint64
	eventC   chan<- model.ModeChange
	errorC   chan<- errors.Error
}

// NewEngine creates an engine in the Off mode.  packs must hold at least one
// pack, the built in packs are used when it is empty
func NewEngine(cfg Config, settings Settings, packs []*model.Pack, io Collaborators, logger logxi.Logger) (e *Engine) {
	if cfg.Pixels <= 0 {
		cfg.Pixels = DefaultConfig().Pixels
	}
	if len(packs) == 0 {
		packs = BuiltinPacks()
	}
	if io.Assets == nil {
		io.Assets = DirAssets{}
	}
	if io.Effects == nil {
		io.Effects = io.Assets
	}
	if io.Sounds == nil {
		io.Sounds = &SoundBank{}
	}
	if io.Mixer == nil {
		io.Mixer = silentMixer{}
	}
	if io.Sensor == nil {
		io.Sensor = stillSensor{}
	}
	if io.Button == nil {
		io.Button = idleButton{}
	}
	if logger == nil {
		logger = logxi.New("saber")
	}

	e = &Engine{
		cfg:      cfg,
		settings: settings,
		io:       io,
		logger:   logger,
		rnd:      rand.New(rand.NewSource(cfg.Seed)),
		packs:    packs,
		mode:     model.Off,
		pending:  model.Off,
		base:     model.NewBuffer(cfg.Pixels),
		overlay:  model.NewBuffer(cfg.Pixels),
		out:      model.NewBuffer(cfg.Pixels),
		session:  uuid.New().String(),

		badSounds: map[string]struct{}{},
	}
	for _, candidate := range []interface{}{io.Sensor, io.Button, io.Battery} {
		if poller, ok := candidate.(Poller); ok {
			e.addPoller(poller)
		}
	}
	e.applyLevels()
	return e
}

func (e *Engine) addPoller(poller Poller) {
	for _, known := range e.pollers {
		if known == poller {
			return
		}
	}
	e.pollers = append(e.pollers, poller)
}

// Subscribe sets the channel transitions are published on, sends never block
func (e *Engine) Subscribe(eventC chan<- model.ModeChange) {
	e.eventC = eventC
}

// ReportErrors sets the channel sink failures are reported on
func (e *Engine) ReportErrors(errorC chan<- errors.Error) {
	e.errorC = errorC
}

func (e *Engine) Mode() model.Mode {
	return e.mode
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) Session() string {
	return e.session
}

func (e *Engine) Pack() *model.Pack {
	return e.packs[e.packIdx]
}

func (e *Engine) Packs() []*model.Pack {
	return e.packs
}

// Output is the last composited frame, it is overwritten by the next tick
func (e *Engine) Output() model.Buffer {
	return e.out
}

// SelectPack makes the named pack current, an idle blade swaps its base
// animation on the next tick
func (e *Engine) SelectPack(name string) bool {
	for i, pack := range e.packs {
		if pack.Name == name {
			e.packIdx = i
			return true
		}
	}
	return false
}

// ApplySettings recomputes the engine configuration from user settings
func (e *Engine) ApplySettings(settings Settings) {
	e.settings = settings.Clamped()
	e.settings.Apply(&e.cfg)
	e.applyLevels()
	e.recolorIdle(e.cfg.Color)
}

func (e *Engine) applyLevels() {
	e.io.Mixer.SetLevel(VoiceHum, e.cfg.Volume)
	e.io.Mixer.SetLevel(VoiceFX, e.cfg.Volume)
	if dimmer, ok := e.io.Sink.(Dimmer); ok {
		dimmer.SetBrightness(e.cfg.SinkBrightness)
	}
}

// Enter forces an immediate transition, used to ignite the blade without a
// button and by tests
func (e *Engine) Enter(mode model.Mode, now time.Time) {
	e.pending = mode
	e.commit(now)
}

// Tick polls the inputs, advances the players of the current mode by one
// step, presents the composited frame and commits any transition requested
// during the step
func (e *Engine) Tick(now time.Time) {
	for _, poller := range e.pollers {
		poller.Poll(now)
	}

	switch e.mode {
	case model.Startup:
		e.tickStartup(now)
	case model.Idle:
		e.tickIdle(now)
	case model.Clash:
		e.tickClash(now)
	case model.Swing:
		e.tickSwing(now)
	case model.Blast:
		e.tickBlast(now)
	case model.Lockup:
		e.tickLockup(now)
	case model.Bleed:
		e.tickBleed(now)
	case model.ShutDown:
		e.tickShutDown(now)
	case model.Off:
		e.tickOff(now)
	case model.SettingsMenu:
		e.tickSettings(now)
	}

	e.present()
	e.commit(now)
}

// Run ticks the engine every TickPeriod until quitC is closed
func (e *Engine) Run(clock Clock, quitC <-chan struct{}) {
	if clock == nil {
		clock = RealClock{}
	}
	period := e.cfg.TickPeriod
	if period <= 0 {
		period = DefaultConfig().TickPeriod
	}

	e.playSound(e.io.Sounds.Boot, VoiceFX, false)

	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			e.Tick(clock.Now())
		case <-quitC:
			e.io.Mixer.Stop(VoiceHum)
			e.io.Mixer.Stop(VoiceFX)
			e.out.Clear()
			e.present()
			return
		}
	}
}

func (e *Engine) transition(to model.Mode) {
	e.pending = to
}

func (e *Engine) commit(now time.Time) {
	if e.pending == e.mode {
		return
	}
	from := e.mode
	to := e.pending

	e.exit(from, to)
	e.mode = to
	e.enter(to, now)

	e.logger.Debug("mode", "from", from.String(), "to", to.String(), "pack", e.Pack().Name)
	e.publish(from, to, now)

	// entering a mode may resolve immediately, the next tick picks it up
}

func (e *Engine) exit(from model.Mode, to model.Mode) {
	switch from {
	case model.Clash, model.Blast:
		e.releaseOverlay()
		e.fx = nil
	case model.Lockup:
		if e.lock != nil {
			e.lock.Close()
			e.lock = nil
		}
		e.io.Mixer.Stop(VoiceFX)
	case model.Bleed:
		e.exitBleed()
	case model.Startup, model.ShutDown:
		if e.seq != nil {
			e.seq.close()
			e.seq = nil
		}
	case model.Off:
		e.show = nil
	}

	if !to.BladeLit() {
		e.releaseIdle()
	}
}

func (e *Engine) enter(to model.Mode, now time.Time) {
	switch to {
	case model.Startup:
		e.enterStartup()
	case model.Idle:
		e.enterIdle()
	case model.Clash:
		e.enterClash()
	case model.Blast:
		e.enterBlast()
	case model.Lockup:
		e.enterLockup()
	case model.Bleed:
		e.enterBleed()
	case model.ShutDown:
		e.enterShutDown()
	case model.Off:
		e.enterOff()
	case model.SettingsMenu:
		e.enterSettings()
	}
}

func (e *Engine) releaseOverlay() {
	if closer, ok := e.fx.(interface{ Close() }); ok {
		closer.Close()
	}
	e.overlay.Clear()
}

func (e *Engine) publish(from model.Mode, to model.Mode, now time.Time) {
	e.eventSeq++
	if e.eventC == nil {
		return
	}
	change := model.ModeChange{
		Session: e.session,
		Seq:     e.eventSeq,
		From:    from.String(),
		To:      to.String(),
		Pack:    e.Pack().Name,
		At:      now,
	}
	select {
	case e.eventC <- change:
	default:
	}
}

func (e *Engine) present() {
	if e.io.Sink == nil {
		return
	}
	err := e.io.Sink.Write(e.out)
	if err == nil {
		err = e.io.Sink.Show()
	}
	if err == nil {
		if e.sinkDown {
			e.logger.Info("sink recovered")
			e.sinkDown = false
		}
		return
	}

	// Only the first failure of a run of failures is logged and reported
	if e.sinkDown {
		return
	}
	e.sinkDown = true
	e.logger.Error("sink write failed", "error", err.Error())
	if e.errorC != nil {
		select {
		case e.errorC <- err:
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// playSound starts a sound, a sound that fails once is logged and then
// skipped for the rest of the run
func (e *Engine) playSound(path string, voice int, loop bool) {
	if len(path) == 0 {
		return
	}
	if _, isPresent := e.badSounds[path]; isPresent {
		return
	}
	if err := e.io.Mixer.Play(path, voice, loop); err != nil {
		e.badSounds[path] = struct{}{}
		e.logger.Warn("sound skipped", "path", path, "voice", voice, "error", err.Error())
	}
}

// silentMixer is used when no audio output is available
type silentMixer struct{}

func (silentMixer) Play(path string, voice int, loop bool) errors.Error { return nil }
func (silentMixer) Playing(voice int) bool            { return false }
func (silentMixer) Stop(voice int)                    {}
func (silentMixer) SetLevel(voice int, level float64) {}

type stillSensor struct{}

func (stillSensor) Acceleration() (x float64, y float64, z float64) { return 0, 0, 0 }
func (stillSensor) Tapped() bool                                    { return false }

type idleButton struct{}

func (idleButton) ShortCount() int { return 0 }
func (idleButton) LongPress() bool { return false }
func (idleButton) Pressed() bool   { return false }
