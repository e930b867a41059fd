package saber

import (
	"io"
	"sync"
	"time"

	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

var (
	epoch      = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testLogger = logxi.NullLog
)

// frameBytes builds an asset of frames, each frame holding width copies of
// the frame's color
func frameBytes(width int, colors ...model.Color) (data []byte) {
	for _, c := range colors {
		for i := 0; i < width; i++ {
			data = append(data, c.R, c.G, c.B)
		}
	}
	return data
}

// countingAssets wraps MemAssets and counts the bytes read from every file
type countingAssets struct {
	*MemAssets
	read int64
	sync.Mutex
}

func (c *countingAssets) Open(path string) (io.ReadSeekCloser, errors.Error) {
	file, err := c.MemAssets.Open(path)
	if err != nil {
		return nil, err
	}
	return &countingFile{ReadSeekCloser: file, owner: c}, nil
}

func (c *countingAssets) bytesRead() int64 {
	c.Lock()
	defer c.Unlock()
	return c.read
}

type countingFile struct {
	io.ReadSeekCloser
	owner *countingAssets
}

func (f *countingFile) Read(p []byte) (int, error) {
	n, errGo := f.ReadSeekCloser.Read(p)
	f.owner.Lock()
	f.owner.read += int64(n)
	f.owner.Unlock()
	return n, errGo
}

// failingAssets opens readers that fail every read
type failingAssets struct{}

type failingFile struct{}

func (failingFile) Read(p []byte) (int, error)                  { return 0, io.ErrClosedPipe }
func (failingFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (failingFile) Close() error                                 { return nil }

func (failingAssets) Open(path string) (io.ReadSeekCloser, errors.Error) {
	return failingFile{}, nil
}

// fakeMixer records every sound started.  Sounds play until the test stops
// them unless autoStop is set, in which case they finish immediately
type fakeMixer struct {
	plays    []fakePlay
	playing  [voiceCount]bool
	stops    [voiceCount]int
	levels   [voiceCount]float64
	autoStop bool
	missing  map[string]bool
}

type fakePlay struct {
	path  string
	voice int
	loop  bool
}

func newFakeMixer() *fakeMixer {
	return &fakeMixer{autoStop: true, missing: map[string]bool{}}
}

func (m *fakeMixer) Play(path string, voice int, loop bool) errors.Error {
	if m.missing[path] {
		return errors.New("missing").With("kind", kindSoundUnavailable).With("path", path)
	}
	m.plays = append(m.plays, fakePlay{path: path, voice: voice, loop: loop})
	m.playing[voice] = loop || !m.autoStop
	return nil
}

func (m *fakeMixer) Playing(voice int) bool {
	return m.playing[voice]
}

func (m *fakeMixer) Stop(voice int) {
	m.stops[voice]++
	m.playing[voice] = false
}

func (m *fakeMixer) SetLevel(voice int, level float64) {
	m.levels[voice] = level
}

func (m *fakeMixer) played(path string) bool {
	for _, p := range m.plays {
		if p.path == path {
			return true
		}
	}
	return false
}
