package saber

// This module is responsible for driving the audio output.  Two voices are
// mixed, the looping hum and one shot effects, and starting a sound on a
// voice replaces whatever that voice was playing.
//
// Sounds are wav files, any sample rate, resampled to the output rate when
// needed.  The mixer is itself a beep streamer so it can be handed to the
// speaker or, in tests, pulled directly

import (
	"math"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const voiceCount = 2

type voiceSlot struct {
	path    string
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	source  beep.StreamSeekCloser
	playing bool
}

func (v *voiceSlot) halt() {
	if v.ctrl != nil {
		v.ctrl.Streamer = nil
	}
	if v.source != nil {
		v.source.Close()
	}
	*v = voiceSlot{}
}

// BeepMixer plays sounds on a fixed set of voices
type BeepMixer struct {
	rate   beep.SampleRate
	assets Assets
	mixer  *beep.Mixer
	voices [voiceCount]voiceSlot
	levels [voiceCount]float64
	sync.Mutex
}

func NewBeepMixer(rate beep.SampleRate, assets Assets) (m *BeepMixer) {
	if assets == nil {
		assets = DirAssets{}
	}
	m = &BeepMixer{
		rate:   rate,
		assets: assets,
		mixer:  &beep.Mixer{},
	}
	for i := range m.levels {
		m.levels[i] = 1.0
	}
	return m
}

// NewSpeakerMixer opens the default audio device and starts playing the mixer
// on it
func NewSpeakerMixer(sampleRate int, assets Assets) (m *BeepMixer, err errors.Error) {
	rate := beep.SampleRate(sampleRate)
	m = NewBeepMixer(rate, assets)

	if errGo := speaker.Init(rate, rate.N(100*time.Millisecond)); errGo != nil {
		return nil, errors.Wrap(errGo).With("kind", kindSoundUnavailable).With("rate", sampleRate).With("stack", stack.Trace().TrimRuntime())
	}
	speaker.Play(m)
	return m, nil
}

func volumeFor(level float64) (vol float64, silent bool) {
	if level <= 0 {
		return 0, true
	}
	return math.Log2(level), false
}

func validVoice(voice int) errors.Error {
	if voice < 0 || voice >= voiceCount {
		return errors.New("no such voice").With("kind", kindSoundUnavailable).With("voice", voice).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Play starts a wav file on the voice, stopping what the voice was playing
func (m *BeepMixer) Play(path string, voice int, loop bool) (err errors.Error) {
	if err = validVoice(voice); err != nil {
		return err.With("path", path)
	}

	file, err := m.assets.Open(path)
	if err != nil {
		return err.With("kind", kindSoundUnavailable)
	}
	source, format, errGo := wav.Decode(file)
	if errGo != nil {
		file.Close()
		return errors.Wrap(errGo).With("kind", kindSoundUnavailable).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	var streamer beep.Streamer = source
	if loop {
		streamer = beep.Loop(-1, source)
	}
	if format.SampleRate != m.rate {
		streamer = beep.Resample(4, format.SampleRate, m.rate, streamer)
	}

	m.Lock()
	defer m.Unlock()

	m.voices[voice].halt()

	vol, silent := volumeFor(m.levels[voice])
	volume := &effects.Volume{Streamer: streamer, Base: 2, Volume: vol, Silent: silent}

	slot := &m.voices[voice]
	ctrl := &beep.Ctrl{}
	ctrl.Streamer = beep.Seq(volume, beep.Callback(func() {
		// runs inside Stream with the lock held
		if slot.ctrl == ctrl {
			slot.halt()
		}
	}))

	*slot = voiceSlot{
		path:    path,
		ctrl:    ctrl,
		volume:  volume,
		source:  source,
		playing: true,
	}
	m.mixer.Add(ctrl)
	return nil
}

func (m *BeepMixer) Playing(voice int) bool {
	if validVoice(voice) != nil {
		return false
	}
	m.Lock()
	defer m.Unlock()
	return m.voices[voice].playing
}

func (m *BeepMixer) Stop(voice int) {
	if validVoice(voice) != nil {
		return
	}
	m.Lock()
	defer m.Unlock()
	m.voices[voice].halt()
}

// SetLevel sets the voice volume from 0, silent, to 1, unchanged
func (m *BeepMixer) SetLevel(voice int, level float64) {
	if validVoice(voice) != nil {
		return
	}
	m.Lock()
	defer m.Unlock()

	m.levels[voice] = level
	if v := m.voices[voice].volume; v != nil {
		v.Volume, v.Silent = volumeFor(level)
	}
}

// Stream mixes the active voices, silence is produced when nothing plays
func (m *BeepMixer) Stream(samples [][2]float64) (n int, ok bool) {
	m.Lock()
	defer m.Unlock()

	n, _ = m.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (m *BeepMixer) Err() error {
	return nil
}
