package saber

// This file contains the DDP sink used with WLED controllers.  DDP rides on
// UDP so a frame is simply written, there is no connection to lose

import (
	"sync"

	"github.com/coral/ddp"
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/saber/model"
)

type ddpWriter interface {
	Write(data []byte) (int, error)
}

type DDPSink struct {
	addr   string
	out    ddpWriter
	close  func()
	packet []byte

	frame dimmedFrame
	sync.Mutex
}

func NewDDPSink(addr string, pixels int) (sink *DDPSink, err errors.Error) {
	controller := ddp.NewDDPController()
	if errGo := controller.ConnectUDP(addr); errGo != nil {
		return nil, errors.Wrap(errGo).With("kind", kindSinkUnavailable).With("addr", addr).With("stack", stack.Trace().TrimRuntime())
	}
	return &DDPSink{
		addr:   addr,
		out:    controller,
		close:  func() { controller.Close() },
		packet: make([]byte, pixels*3),
		frame:  newDimmedFrame(pixels),
	}, nil
}

func (sink *DDPSink) SetBrightness(brightness float64) {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.brightness = brightness
	sink.frame.last = nil
}

func (sink *DDPSink) Write(buf model.Buffer) errors.Error {
	sink.Lock()
	defer sink.Unlock()
	sink.frame.load(buf)
	return nil
}

func (sink *DDPSink) Show() errors.Error {
	sink.Lock()
	defer sink.Unlock()

	hash, changed := sink.frame.changed()
	if !changed {
		return nil
	}
	for i, c := range sink.frame.pixels {
		sink.packet[i*3] = c.R
		sink.packet[i*3+1] = c.G
		sink.packet[i*3+2] = c.B
	}
	if _, errGo := sink.out.Write(sink.packet); errGo != nil {
		return errors.Wrap(errGo).With("kind", kindSinkUnavailable).With("addr", sink.addr).With("stack", stack.Trace().TrimRuntime())
	}
	sink.frame.last = hash
	return nil
}

func (sink *DDPSink) Close() {
	sink.Lock()
	defer sink.Unlock()
	if sink.close != nil {
		sink.close()
		sink.close = nil
	}
}
