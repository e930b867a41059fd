package saber

// This file contains the asset sources used to open binary animation files.
// The decoder only needs sequential reads, a rewind and a close, so anything
// satisfying io.ReadSeekCloser will do

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

const (
	kindAssetUnavailable    = "AssetUnavailable"
	kindSoundUnavailable    = "SoundUnavailable"
	kindMalformedDescriptor = "MalformedDescriptor"
	kindSinkUnavailable     = "SinkUnavailable"
)

// Assets opens animation assets by path
type Assets interface {
	Open(path string) (io.ReadSeekCloser, errors.Error)
}

// DirAssets opens files from the local file system, relative paths are
// resolved against Root
type DirAssets struct {
	Root string
}

func (d DirAssets) Open(path string) (io.ReadSeekCloser, errors.Error) {
	fp := path
	if !filepath.IsAbs(fp) && d.Root != "" {
		fp = filepath.Join(d.Root, fp)
	}
	file, errGo := os.Open(fp)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("kind", kindAssetUnavailable).With("path", fp).With("stack", stack.Trace().TrimRuntime())
	}
	return file, nil
}

// MemAssets serves assets from memory, used by the simulator demo pack and
// by tests.  Opens are counted per path
type MemAssets struct {
	files map[string][]byte
	opens map[string]int
	sync.Mutex
}

func NewMemAssets() *MemAssets {
	return &MemAssets{
		files: map[string][]byte{},
		opens: map[string]int{},
	}
}

// Add stores a copy of data under path
func (m *MemAssets) Add(path string, data []byte) {
	m.Lock()
	defer m.Unlock()
	m.files[path] = append([]byte(nil), data...)
}

// Opens returns how many times path has been opened
func (m *MemAssets) Opens(path string) int {
	m.Lock()
	defer m.Unlock()
	return m.opens[path]
}

func (m *MemAssets) Open(path string) (io.ReadSeekCloser, errors.Error) {
	m.Lock()
	defer m.Unlock()

	data, isPresent := m.files[path]
	if !isPresent {
		return nil, errors.Wrap(os.ErrNotExist).With("kind", kindAssetUnavailable).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	m.opens[path]++
	return &memFile{Reader: bytes.NewReader(data)}, nil
}

type memFile struct {
	*bytes.Reader
	closed bool
}

func (f *memFile) Read(p []byte) (n int, errGo error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	return f.Reader.Read(p)
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	return f.Reader.Seek(offset, whence)
}

func (f *memFile) Close() error {
	f.closed = true
	return nil
}
