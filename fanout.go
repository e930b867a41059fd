package saber

import (
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

type subs struct {
	subs []chan model.ModeChange
	sync.Mutex
}

// StartFanOut implements a broadcast mechanism accepting mode change events
// and relaying them to subscribers.  The function returns a single channel
// to which events get sent and a channel that can be used to add listeners.
//
// Subscribers that are closed are dropped, subscribers that are slow miss
// events rather than holding up the others
func StartFanOut(logger logxi.Logger, quitC <-chan struct{}) (inC chan model.ModeChange, subC chan chan model.ModeChange) {

	inC = make(chan model.ModeChange, 16)
	subC = make(chan chan model.ModeChange, 1)

	if logger == nil {
		logger = logxi.New("fanout")
	}
	listeners := &subs{
		subs: []chan model.ModeChange{},
	}

	go func() {
		defer logger.Debug("fanout stopped")
		for {
			select {
			case <-quitC:
				return
			case sub := <-subC:
				if nil != sub {
					listeners.Lock()
					listeners.subs = append(listeners.subs, sub)
					listeners.Unlock()
					logger.Debug("subscription added")
				}
			case msg := <-inC:
				// Filtering without allocating, failed subscribers are groomed out
				listeners.Lock()
				kept := listeners.subs[:0]
				for _, ch := range listeners.subs {
					if deliver(ch, msg) {
						kept = append(kept, ch)
						continue
					}
					logger.Debug("subscription dropped")
				}
				listeners.subs = kept
				listeners.Unlock()
			}
		}
	}()

	return inC, subC
}

// deliver sends msg to ch, false means the subscriber has gone away
func deliver(ch chan model.ModeChange, msg model.ModeChange) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			alive = false
		}
	}()
	select {
	case ch <- msg:
	case <-time.After(20 * time.Millisecond):
	}
	return true
}
