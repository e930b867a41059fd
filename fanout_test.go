package saber

import (
	"testing"
	"time"

	"github.com/TeamNorCal/saber/model"
)

// subscribe adds a listener and waits until it is receiving
func subscribe(t *testing.T, inC chan model.ModeChange, subC chan chan model.ModeChange, size int) chan model.ModeChange {
	t.Helper()
	sub := make(chan model.ModeChange, size)
	subC <- sub

	for i := 0; i < 100; i++ {
		inC <- model.ModeChange{To: "probe"}
		select {
		case <-sub:
			return sub
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("subscription never became active")
	return nil
}

// next returns the next change that is not a subscription probe
func next(t *testing.T, ch chan model.ModeChange) (change model.ModeChange) {
	t.Helper()
	for {
		select {
		case change = <-ch:
			if change.To != "probe" {
				return change
			}
		case <-time.After(time.Second):
			t.Fatal("no change received")
		}
	}
}

func drain(ch chan model.ModeChange) {
	for {
		select {
		case <-ch:
		case <-time.After(20 * time.Millisecond):
			return
		}
	}
}

func TestFanOut(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)

	inC, subC := StartFanOut(testLogger, quitC)

	first := subscribe(t, inC, subC, 8)
	second := subscribe(t, inC, subC, 8)
	drain(first)

	inC <- model.ModeChange{Seq: 7, To: "idle"}
	for _, sub := range []chan model.ModeChange{first, second} {
		if change := next(t, sub); change.Seq != 7 || change.To != "idle" {
			t.Fatalf("unexpected change %+v", change)
		}
	}

	// a closed subscriber is dropped without disturbing the others
	close(second)
	inC <- model.ModeChange{Seq: 8}
	inC <- model.ModeChange{Seq: 9}
	for _, want := range []uint64{8, 9} {
		if change := next(t, first); change.Seq != want {
			t.Fatalf("expected %d, got %d", want, change.Seq)
		}
	}
}

func TestFanOutSlowSubscriber(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)

	inC, subC := StartFanOut(testLogger, quitC)
	fast := subscribe(t, inC, subC, 8)
	slow := subscribe(t, inC, subC, 1)
	drain(fast)
	drain(slow)

	for i := uint64(1); i <= 3; i++ {
		inC <- model.ModeChange{Seq: i}
	}
	for i := uint64(1); i <= 3; i++ {
		if change := next(t, fast); change.Seq != i {
			t.Fatalf("expected %d, got %d", i, change.Seq)
		}
	}
}
