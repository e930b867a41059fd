package saber

// This module joins the engine to its observers.  Mode changes flow from the
// engine into a fanout that the telemetry publisher, and anything else that
// subscribes, listens to

import (
	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

type Gateway struct {
	Telemetry Publisher // optional
	Prefix    string    // telemetry topic prefix
	Clock     Clock     // defaults to the wall clock
}

// Start runs engine until quitC is closed and returns the channel used to
// subscribe to its mode changes
func (gw *Gateway) Start(engine *Engine, logger logxi.Logger, errorC chan<- errors.Error, quitC <-chan struct{}) (subscribeC chan chan model.ModeChange) {

	changeC, subscribeC := StartFanOut(logger, quitC)

	engine.Subscribe(changeC)
	engine.ReportErrors(errorC)

	// Telemetry is just another subscriber of the broadcast
	if gw.Telemetry != nil {
		prefix := gw.Prefix
		if len(prefix) == 0 {
			prefix = "saber"
		}
		go RunTelemetry(gw.Telemetry, prefix, subscribeC, errorC, quitC)
	}

	go engine.Run(gw.Clock, quitC)

	return subscribeC
}
