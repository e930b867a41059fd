package saber

// This file contains the fadecandy sink.  Frames are sent to an OPC server,
// fcserver in front of the fadecandy boards, only when they differ from the
// last frame sent.  A dropped connection is retried from Show at most once a
// second so the control loop never waits on the network for long

import (
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/kellydunn/go-opc"

	"github.com/TeamNorCal/saber/model"
)

type OPCSink struct {
	server  string
	channel uint8

	client    *opc.Client
	connected bool
	lastDial  time.Time

	frame dimmedFrame
	sync.Mutex
}

// NewOPCSink connects to the OPC server, when the connection fails the sink
// is still returned and will keep trying
func NewOPCSink(server string, channel uint8, pixels int) (sink *OPCSink, err errors.Error) {
	sink = &OPCSink{
		server:  server,
		channel: channel,
		client:  opc.NewClient(),
		frame:   newDimmedFrame(pixels),
	}
	return sink, sink.dial()
}

func (sink *OPCSink) dial() (err errors.Error) {
	sink.lastDial = time.Now()
	if errGo := sink.client.Connect("tcp", sink.server); errGo != nil {
		sink.connected = false
		return errors.Wrap(errGo).With("kind", kindSinkUnavailable).With("url", sink.server).With("stack", stack.Trace().TrimRuntime())
	}
	sink.connected = true
	return nil
}

func (sink *OPCSink) SetBrightness(brightness float64) {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.brightness = brightness
	sink.frame.last = nil
}

func (sink *OPCSink) Write(buf model.Buffer) errors.Error {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.load(buf)
	return nil
}

func (sink *OPCSink) Show() (err errors.Error) {
	sink.Lock()
	defer sink.Unlock()

	hash, changed := sink.frame.changed()
	if !changed {
		return nil
	}

	if !sink.connected {
		if time.Since(sink.lastDial) < time.Second {
			return errors.New("fadecandy not connected").With("kind", kindSinkUnavailable).With("url", sink.server).With("stack", stack.Trace().TrimRuntime())
		}
		if err = sink.dial(); err != nil {
			return err
		}
	}

	m := opc.NewMessage(sink.channel)
	m.SetLength(uint16(len(sink.frame.pixels) * 3))
	for i, c := range sink.frame.pixels {
		m.SetPixelColor(i, c.R, c.G, c.B)
	}

	if errGo := sink.client.Send(m); errGo != nil {
		sink.connected = false
		return errors.Wrap(errGo).With("kind", kindSinkUnavailable).With("url", sink.server).With("stack", stack.Trace().TrimRuntime())
	}
	sink.frame.last = hash
	return nil
}
