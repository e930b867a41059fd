package saber

import (
	"testing"
	"time"

	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/saber/model"
)

func TestGateway(t *testing.T) {
	in := NewManualInput()
	sink := &MemorySink{}
	cfg := DefaultConfig()
	cfg.Pixels = 10
	cfg.UseAnimation = false
	cfg.TickPeriod = time.Millisecond

	engine := NewEngine(cfg, DefaultSettings(), nil, Collaborators{
		Assets:  NewMemAssets(),
		Sink:    sink,
		Sensor:  in,
		Button:  in,
		Battery: in,
	}, testLogger)

	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 4)
	pub := newFakePublisher()

	gw := &Gateway{Telemetry: pub}
	subscribeC := gw.Start(engine, testLogger, errorC, quitC)

	changeC := make(chan model.ModeChange, 8)
	subscribeC <- changeC
	time.Sleep(50 * time.Millisecond)

	in.Click(1)

	deadline := time.After(2 * time.Second)
	for seen := map[string]bool{}; !seen["idle"]; {
		select {
		case change := <-changeC:
			if change.Session != engine.Session() {
				t.Fatal("events carry the engine session")
			}
			seen[change.To] = true
		case <-deadline:
			t.Fatal("the blade never ignited")
		}
	}

	select {
	case sent := <-pub.sent:
		if sent.topic != ModeTopic("saber", engine.Session()) {
			t.Fatalf("unexpected topic %s", sent.topic)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry should have published the ignition")
	}

	close(quitC)
	select {
	case <-pub.closed:
	case <-time.After(time.Second):
		t.Fatal("telemetry should stop on quit")
	}
}
