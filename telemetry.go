package saber

// This module publishes mode change events to an MQTT broker so the blade
// can be watched remotely.  Events are msgpack encoded and published under
// <prefix>/<session>/mode, publishing happens on its own goroutine fed by the
// fanout and never holds up the control loop

import (
	"fmt"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

// Publisher sends one encoded event to a topic
type Publisher interface {
	Publish(topic string, payload []byte) errors.Error
}

type mqttPublisher struct {
	broker string
	client mqtt.Client
}

// NewMQTTPublisher connects to broker, a url such as tcp://localhost:1883
func NewMQTTPublisher(broker string, clientID string, logger logxi.Logger) (pub Publisher, err errors.Error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnectionLost = func(c mqtt.Client, errGo error) {
		if logger != nil {
			logger.Warn("telemetry connection lost", "broker", broker, "error", errGo.Error())
		}
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, errors.New("telemetry connection timeout").With("broker", broker).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo := token.Error(); errGo != nil {
		return nil, errors.Wrap(errGo).With("broker", broker).With("stack", stack.Trace().TrimRuntime())
	}
	return &mqttPublisher{broker: broker, client: client}, nil
}

func (pub *mqttPublisher) Publish(topic string, payload []byte) errors.Error {
	token := pub.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return errors.New("telemetry publish timeout").With("broker", pub.broker).With("topic", topic).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo := token.Error(); errGo != nil {
		return errors.Wrap(errGo).With("broker", pub.broker).With("topic", topic).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

func (pub *mqttPublisher) Close() {
	pub.client.Disconnect(250)
}

// ModeTopic is the topic mode changes of a session are published on
func ModeTopic(prefix string, session string) string {
	return fmt.Sprintf("%s/%s/mode", prefix, session)
}

// EncodeModeChange packs an event for the wire
func EncodeModeChange(change model.ModeChange) (payload []byte, err errors.Error) {
	payload, errGo := msgpack.Marshal(&change)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	return payload, nil
}

// RunTelemetry subscribes to mode changes and publishes each one until quitC
// is closed
func RunTelemetry(pub Publisher, prefix string, subscribeC chan chan model.ModeChange, errorC chan<- errors.Error, quitC <-chan struct{}) {

	changeC := make(chan model.ModeChange, 8)
	subscribeC <- changeC

	defer func() {
		if closer, ok := pub.(interface{ Close() }); ok {
			closer.Close()
		}
	}()

	for {
		select {
		case change := <-changeC:
			payload, err := EncodeModeChange(change)
			if err == nil {
				err = pub.Publish(ModeTopic(prefix, change.Session), payload)
			}
			if err != nil {
				select {
				case errorC <- err:
				case <-time.After(20 * time.Millisecond):
				}
			}
		case <-quitC:
			return
		}
	}
}
