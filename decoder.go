package saber

// This file contains the frame stream decoder.  An animation asset is a
// headerless sequence of fixed size records, one RGB triple per pixel the
// animation covers.  The decoder reads at most one record per frame interval
// and a short read is the end of the stream, never an error

import (
	"io"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

type frameDecoder struct {
	assets Assets
	path   string
	src    io.ReadSeekCloser

	width    int
	scratch  []byte
	interval time.Duration
	skip     int

	last time.Time // time of the last successful read, zero forces a read
	done bool
	err  errors.Error
}

func openDecoder(assets Assets, path string, width int, interval time.Duration, skip int) (dec *frameDecoder, err errors.Error) {
	if width <= 0 {
		return nil, errors.New("frame width must be positive").With("kind", kindAssetUnavailable).With("path", path).With("width", width).With("stack", stack.Trace().TrimRuntime())
	}
	if skip < 0 {
		skip = 0
	}
	if interval < 0 {
		interval = 0
	}

	src, err := assets.Open(path)
	if err != nil {
		return nil, err
	}

	return &frameDecoder{
		assets:   assets,
		path:     path,
		src:      src,
		width:    width,
		scratch:  make([]byte, width*3),
		interval: interval,
		skip:     skip,
	}, nil
}

// advance reads the next record into the scratch buffer when the frame
// interval has elapsed.  active goes false once the stream is exhausted or
// unreadable, fresh is true when a new record was decoded on this call.
// A frame may be fresh on the same call that exhausts the stream, when the
// stream ends while discarding skipped records
func (dec *frameDecoder) advance(now time.Time) (active bool, fresh bool) {
	if dec.done {
		return false, false
	}

	if !dec.last.IsZero() && now.Sub(dec.last) < dec.interval {
		return true, false
	}

	if !dec.read(dec.scratch) {
		return false, false
	}
	dec.last = now

	for i := 0; i < dec.skip; i++ {
		if _, errGo := io.CopyN(io.Discard, dec.src, int64(len(dec.scratch))); errGo != nil {
			dec.finish(errGo)
			return false, true
		}
	}
	return true, true
}

// read performs one fixed size read, releasing the source on a short read
func (dec *frameDecoder) read(buf []byte) (ok bool) {
	if dec.src == nil {
		dec.finish(io.EOF)
		return false
	}
	if _, errGo := io.ReadFull(dec.src, buf); errGo != nil {
		dec.finish(errGo)
		return false
	}
	return true
}

func (dec *frameDecoder) finish(errGo error) {
	if errGo != io.EOF && errGo != io.ErrUnexpectedEOF {
		dec.err = errors.Wrap(errGo).With("kind", kindAssetUnavailable).With("path", dec.path).With("stack", stack.Trace().TrimRuntime())
	}
	dec.release()
	dec.done = true
}

func (dec *frameDecoder) release() {
	if dec.src != nil {
		dec.src.Close()
		dec.src = nil
	}
}

// pixel returns the raw channels of position i from the last record read
func (dec *frameDecoder) pixel(i int) (r, g, b uint8) {
	return dec.scratch[i*3], dec.scratch[i*3+1], dec.scratch[i*3+2]
}

// reset rewinds the stream to its first record, reopening the asset when it
// was released by an earlier end of stream.  The scratch buffer is zeroed so
// no stale bytes are presented before the next read
func (dec *frameDecoder) reset() (err errors.Error) {
	if dec.src != nil {
		if _, errGo := dec.src.Seek(0, io.SeekStart); errGo != nil {
			dec.release()
		}
	}
	if dec.src == nil {
		if dec.src, err = dec.assets.Open(dec.path); err != nil {
			dec.done = true
			dec.err = err
			return err
		}
	}

	for i := range dec.scratch {
		dec.scratch[i] = 0
	}
	dec.done = false
	dec.err = nil
	dec.last = time.Time{}
	return nil
}
