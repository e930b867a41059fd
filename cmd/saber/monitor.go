package main

import (
	"github.com/TeamNorCal/saber/model"
)

// This file implements a monitor that subscribes to and displays
// the mode changes of the blade using event subscription

func runMonitoring(subscribeC chan chan model.ModeChange, quitC <-chan struct{}) {

	changeC := make(chan model.ModeChange, 1)
	subscribeC <- changeC

	for {
		select {
		case change := <-changeC:
			logger.Info("mode", "from", change.From, "to", change.To, "pack", change.Pack, "seq", change.Seq)
		case <-quitC:
			return
		}
	}
}
