package saber

import (
	"bytes"
	"sync"

	"github.com/cnf/structhash"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/saber/model"
)

// frame is the hashed form of what a sink last transmitted
type frame struct {
	Pixels []model.Color
}

// dimmedFrame holds a brightness scaled copy of the engine output and
// remembers the hash of the last frame sent so identical frames are skipped
type dimmedFrame struct {
	pixels     model.Buffer
	brightness float64
	last       []byte
}

func newDimmedFrame(pixels int) dimmedFrame {
	return dimmedFrame{
		pixels:     model.NewBuffer(pixels),
		brightness: 1.0,
	}
}

func (f *dimmedFrame) load(buf model.Buffer) {
	for i := range f.pixels {
		if i >= len(buf) {
			f.pixels[i] = model.Black
			continue
		}
		if f.brightness == 1.0 {
			f.pixels[i] = buf[i]
		} else {
			f.pixels[i] = buf[i].Scale(f.brightness)
		}
	}
}

// changed is true when the loaded frame differs from the last one marked sent
func (f *dimmedFrame) changed() (hash []byte, changed bool) {
	hash = structhash.Md5(frame{Pixels: f.pixels}, 1)
	return hash, !bytes.Equal(hash, f.last)
}

// MultiSink fans every frame out to several sinks, the first failure is
// returned after all sinks were tried
type MultiSink struct {
	sinks []Sink
	sync.Mutex
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Add(sink Sink) {
	m.Lock()
	defer m.Unlock()
	m.sinks = append(m.sinks, sink)
}

func (m *MultiSink) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.sinks)
}

func (m *MultiSink) Write(buf model.Buffer) (err errors.Error) {
	m.Lock()
	defer m.Unlock()
	for _, sink := range m.sinks {
		if errS := sink.Write(buf); errS != nil && err == nil {
			err = errS
		}
	}
	return err
}

func (m *MultiSink) Show() (err errors.Error) {
	m.Lock()
	defer m.Unlock()
	for _, sink := range m.sinks {
		if errS := sink.Show(); errS != nil && err == nil {
			err = errS
		}
	}
	return err
}

func (m *MultiSink) SetBrightness(brightness float64) {
	m.Lock()
	defer m.Unlock()
	for _, sink := range m.sinks {
		if dimmer, ok := sink.(Dimmer); ok {
			dimmer.SetBrightness(brightness)
		}
	}
}

// MemorySink keeps the frames it is shown, used by tests and headless runs
type MemorySink struct {
	pending model.Buffer
	Frames  []model.Buffer
	Keep    int // frames retained, zero keeps only the latest
	sync.Mutex
}

func (m *MemorySink) Write(buf model.Buffer) errors.Error {
	m.Lock()
	defer m.Unlock()
	m.pending = append(m.pending[:0], buf...)
	return nil
}

func (m *MemorySink) Show() errors.Error {
	m.Lock()
	defer m.Unlock()
	shown := append(model.Buffer(nil), m.pending...)
	m.Frames = append(m.Frames, shown)
	keep := m.Keep
	if keep <= 0 {
		keep = 1
	}
	if len(m.Frames) > keep {
		m.Frames = append(m.Frames[:0], m.Frames[len(m.Frames)-keep:]...)
	}
	return nil
}

// Last returns the most recently shown frame
func (m *MemorySink) Last() model.Buffer {
	m.Lock()
	defer m.Unlock()
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[len(m.Frames)-1]
}
