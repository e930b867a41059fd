package model

import (
	"time"
)

// Mode is the single active state of the effect state machine
type Mode int

const (
	Startup Mode = iota
	Idle
	Clash
	Swing
	Blast
	Lockup
	Bleed
	ShutDown
	Off
	SettingsMenu
)

var modeNames = [...]string{
	Startup:      "startup",
	Idle:         "idle",
	Clash:        "clash",
	Swing:        "swing",
	Blast:        "blast",
	Lockup:       "lockup",
	Bleed:        "bleed",
	ShutDown:     "shutdown",
	Off:          "off",
	SettingsMenu: "settings",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// BladeLit is true for the modes in which the blade is ignited and the idle
// animation runs underneath any effect
func (m Mode) BladeLit() bool {
	switch m {
	case Idle, Clash, Swing, Blast, Lockup, Bleed:
		return true
	}
	return false
}

// ModeChange is broadcast every time the state machine commits a transition
type ModeChange struct {
	Session string    `json:"session" msgpack:"session"`
	Seq     uint64    `json:"seq" msgpack:"seq"`
	From    string    `json:"from" msgpack:"from"`
	To      string    `json:"to" msgpack:"to"`
	Pack    string    `json:"pack" msgpack:"pack"`
	At      time.Time `json:"at" msgpack:"at"`
}
