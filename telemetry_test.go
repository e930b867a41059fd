package saber

import (
	"testing"
	"time"

	"github.com/karlmutch/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/TeamNorCal/saber/model"
)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	sent   chan published
	fail   bool
	closed chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		sent:   make(chan published, 16),
		closed: make(chan struct{}),
	}
}

func (pub *fakePublisher) Publish(topic string, payload []byte) errors.Error {
	if pub.fail {
		return errors.New("broker gone").With("topic", topic)
	}
	pub.sent <- published{topic: topic, payload: payload}
	return nil
}

func (pub *fakePublisher) Close() {
	close(pub.closed)
}

func TestModeTopic(t *testing.T) {
	if topic := ModeTopic("saber", "abc"); topic != "saber/abc/mode" {
		t.Fatalf("unexpected topic %s", topic)
	}
}

func TestRunTelemetry(t *testing.T) {
	quitC := make(chan struct{})
	errorC := make(chan errors.Error, 4)
	inC, subC := StartFanOut(testLogger, quitC)

	pub := newFakePublisher()
	go RunTelemetry(pub, "saber", subC, errorC, quitC)

	change := model.ModeChange{Session: "s1", Seq: 3, From: "off", To: "startup", Pack: "scan", At: epoch}

	var got published
	for received := false; !received; {
		inC <- change
		select {
		case got = <-pub.sent:
			received = true
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got.topic != "saber/s1/mode" {
		t.Fatalf("unexpected topic %s", got.topic)
	}
	decoded := model.ModeChange{}
	if errGo := msgpack.Unmarshal(got.payload, &decoded); errGo != nil {
		t.Fatal(errGo)
	}
	if decoded.Session != "s1" || decoded.Seq != 3 || decoded.To != "startup" || decoded.Pack != "scan" || !decoded.At.Equal(epoch) {
		t.Fatalf("unexpected event %+v", decoded)
	}

	close(quitC)
	select {
	case <-pub.closed:
	case <-time.After(time.Second):
		t.Fatal("the publisher should be closed on quit")
	}
}

func TestRunTelemetryReportsFailures(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)
	errorC := make(chan errors.Error, 4)
	inC, subC := StartFanOut(testLogger, quitC)

	pub := newFakePublisher()
	pub.fail = true
	go RunTelemetry(pub, "saber", subC, errorC, quitC)

	for i := 0; i < 100; i++ {
		inC <- model.ModeChange{Session: "s1"}
		select {
		case err := <-errorC:
			if err == nil {
				t.Fatal("expected a publish failure")
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("publish failures should be reported")
}
