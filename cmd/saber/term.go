package main

import (
	"fmt"
	"os"

	"github.com/karlmutch/errors"
)

var (
	msgV = os.Stdout
	errV = os.Stderr
)

func runTUI(msgC chan string, errC chan errors.Error, quitC <-chan struct{}) {
	msgWatch(msgC, errC, quitC)
}

// msgWatch prints messages and the errors reported by background goroutines
// until quitC is closed
func msgWatch(msgsC <-chan string, errorC <-chan errors.Error, quitC <-chan struct{}) {
	for {
		select {
		case msg := <-msgsC:
			if msgV != nil {
				fmt.Fprintln(msgV, msg)
			}
		case err := <-errorC:
			if errV != nil && err != nil {
				fmt.Fprintln(errV, err.Error())
			}
		case <-quitC:
			return
		}
	}
}
