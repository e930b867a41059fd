package saber

// This file contains the input collaborators.  ManualInput is driven by
// direct calls, from a keyboard for example, ScriptInput replays a timed
// script through a Debouncer the way the physical button is read

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/google/shlex"
	"github.com/karlmutch/errors"
)

// Poller is implemented by inputs that need to see the tick time before the
// engine reads them
type Poller interface {
	Poll(now time.Time)
}

// Debouncer turns the raw button level into short press bursts and long
// presses.  A burst ends when the button stays released for longer than
// ShortGap and is reported until the next Update, or until one ShortCount
// call reads it
type Debouncer struct {
	ShortGap time.Duration
	LongHold time.Duration

	pressed    bool
	pressedAt  time.Time
	releasedAt time.Time
	burst      int
	longFired  bool

	short int
	long  bool
	sync.Mutex
}

func NewDebouncer() *Debouncer {
	return &Debouncer{
		ShortGap: 200 * time.Millisecond,
		LongHold: 1000 * time.Millisecond,
	}
}

// Update feeds the button level observed at now
func (d *Debouncer) Update(pressed bool, now time.Time) {
	d.Lock()
	defer d.Unlock()

	// an unread count is dropped rather than reported late
	d.short = 0

	switch {
	case pressed && !d.pressed:
		d.pressedAt = now
		d.longFired = false
	case !pressed && d.pressed:
		if !d.longFired {
			d.burst++
			d.releasedAt = now
		}
	}
	d.pressed = pressed

	if pressed && !d.longFired && now.Sub(d.pressedAt) >= d.LongHold {
		d.longFired = true
		d.long = true
		d.burst = 0
	}
	if !pressed && d.burst > 0 && now.Sub(d.releasedAt) > d.ShortGap {
		d.short = d.burst
		d.burst = 0
	}
}

func (d *Debouncer) ShortCount() (count int) {
	d.Lock()
	defer d.Unlock()
	count, d.short = d.short, 0
	return count
}

func (d *Debouncer) LongPress() (long bool) {
	d.Lock()
	defer d.Unlock()
	long, d.long = d.long, false
	return long
}

func (d *Debouncer) Pressed() bool {
	d.Lock()
	defer d.Unlock()
	return d.pressed
}

// ManualInput holds input state set by direct calls.  Taps, short counts and
// long presses are consumed by the first read after they were set
type ManualInput struct {
	x, y, z float64
	tapped  bool
	short   int
	long    bool
	held    bool
	volts   float64
	sync.Mutex
}

func NewManualInput() *ManualInput {
	return &ManualInput{volts: 4.0}
}

func (in *ManualInput) SetAcceleration(x float64, y float64, z float64) {
	in.Lock()
	defer in.Unlock()
	in.x, in.y, in.z = x, y, z
}

func (in *ManualInput) Tap() {
	in.Lock()
	defer in.Unlock()
	in.tapped = true
}

// Click queues a burst of n short presses
func (in *ManualInput) Click(n int) {
	in.Lock()
	defer in.Unlock()
	in.short = n
}

func (in *ManualInput) Long() {
	in.Lock()
	defer in.Unlock()
	in.long = true
}

func (in *ManualInput) SetHeld(held bool) {
	in.Lock()
	defer in.Unlock()
	in.held = held
}

func (in *ManualInput) SetVoltage(volts float64) {
	in.Lock()
	defer in.Unlock()
	in.volts = volts
}

func (in *ManualInput) Acceleration() (x float64, y float64, z float64) {
	in.Lock()
	defer in.Unlock()
	return in.x, in.y, in.z
}

func (in *ManualInput) Tapped() (tapped bool) {
	in.Lock()
	defer in.Unlock()
	tapped, in.tapped = in.tapped, false
	return tapped
}

func (in *ManualInput) ShortCount() (count int) {
	in.Lock()
	defer in.Unlock()
	count, in.short = in.short, 0
	return count
}

func (in *ManualInput) LongPress() (long bool) {
	in.Lock()
	defer in.Unlock()
	long, in.long = in.long, false
	return long
}

func (in *ManualInput) Pressed() bool {
	in.Lock()
	defer in.Unlock()
	return in.held
}

func (in *ManualInput) Voltage() float64 {
	in.Lock()
	defer in.Unlock()
	return in.volts
}

type scriptStep struct {
	at   time.Duration
	line int
	cmd  string
	args []float64
}

// ScriptInput replays a script of timed input events.  Each line holds an
// offset from the first poll, a command and its arguments, for example
//
//	0s     battery 3.9
//	100ms  click 1
//	2s     accel 0 0 -9.8
//	2.5s   tap
//	3s     press
//	4s     release
//	6s     long
//
// Sudden changes in acceleration larger than TapThreshold also register as
// taps, mimicking the accelerometer click detection
type ScriptInput struct {
	TapThreshold float64

	steps []scriptStep
	next  int
	start time.Time

	button  *Debouncer
	level   bool
	release time.Time   // pending release of a synthesized press
	clicks  []time.Time // pending synthesized press and release edges
	x, y, z float64
	tapped  bool
	volts   float64
	sync.Mutex
}

// ParseScript reads a script, blank lines and lines starting with # are
// skipped
func ParseScript(r io.Reader) (in *ScriptInput, err errors.Error) {
	in = &ScriptInput{
		button: NewDebouncer(),
		volts:  4.0,
	}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || strings.HasPrefix(text, "#") {
			continue
		}
		fields, errGo := shlex.Split(text)
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("line", lineNo).With("stack", stack.Trace().TrimRuntime())
		}
		step, err := parseStep(fields, lineNo)
		if err != nil {
			return nil, err
		}
		in.steps = append(in.steps, step)
	}
	if errGo := scanner.Err(); errGo != nil {
		return nil, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	sort.SliceStable(in.steps, func(i, j int) bool { return in.steps[i].at < in.steps[j].at })
	return in, nil
}

var scriptArity = map[string]int{
	"press":   0,
	"release": 0,
	"click":   1,
	"long":    0,
	"tap":     0,
	"accel":   3,
	"battery": 1,
}

func parseStep(fields []string, lineNo int) (step scriptStep, err errors.Error) {
	if len(fields) < 2 {
		return step, errors.New("script line needs an offset and a command").With("line", lineNo).With("stack", stack.Trace().TrimRuntime())
	}
	at, errGo := time.ParseDuration(fields[0])
	if errGo != nil {
		return step, errors.Wrap(errGo).With("line", lineNo).With("stack", stack.Trace().TrimRuntime())
	}

	cmd := strings.ToLower(fields[1])
	arity, isPresent := scriptArity[cmd]
	if !isPresent {
		return step, errors.New("unknown script command").With("line", lineNo).With("command", cmd).With("stack", stack.Trace().TrimRuntime())
	}
	if len(fields)-2 != arity {
		return step, errors.New("wrong number of arguments").With("line", lineNo).With("command", cmd).With("expected", arity).With("stack", stack.Trace().TrimRuntime())
	}

	step = scriptStep{at: at, line: lineNo, cmd: cmd}
	for _, field := range fields[2:] {
		v, errGo := strconv.ParseFloat(field, 64)
		if errGo != nil {
			return step, errors.Wrap(errGo).With("line", lineNo).With("stack", stack.Trace().TrimRuntime())
		}
		step.args = append(step.args, v)
	}
	return step, nil
}

// Done is true once every step has been applied and the button settled
func (in *ScriptInput) Done() bool {
	in.Lock()
	defer in.Unlock()
	return in.next >= len(in.steps) && len(in.clicks) == 0 && in.release.IsZero()
}

// Poll applies every step due at now and updates the button debouncer
func (in *ScriptInput) Poll(now time.Time) {
	in.Lock()
	defer in.Unlock()

	if in.start.IsZero() {
		in.start = now
	}
	elapsed := now.Sub(in.start)

	for ; in.next < len(in.steps) && in.steps[in.next].at <= elapsed; in.next++ {
		in.apply(in.steps[in.next], now)
	}

	// synthesized press and release edges alternate, starting with a press
	for len(in.clicks) != 0 && !now.Before(in.clicks[0]) {
		in.level = !in.level
		in.clicks = in.clicks[1:]
	}
	if !in.release.IsZero() && !now.Before(in.release) {
		in.level = false
		in.release = time.Time{}
	}

	in.button.Update(in.level, now)
}

func (in *ScriptInput) apply(step scriptStep, now time.Time) {
	switch step.cmd {
	case "press":
		in.level = true
	case "release":
		in.level = false
	case "click":
		at := now
		for i := 0; i < int(step.args[0]); i++ {
			in.clicks = append(in.clicks, at, at.Add(50*time.Millisecond))
			at = at.Add(150 * time.Millisecond)
		}
	case "long":
		in.level = true
		in.release = now.Add(in.button.LongHold + 50*time.Millisecond)
	case "tap":
		in.tapped = true
	case "accel":
		dx, dy, dz := step.args[0]-in.x, step.args[1]-in.y, step.args[2]-in.z
		if in.TapThreshold > 0 && math.Sqrt(dx*dx+dy*dy+dz*dz) >= in.TapThreshold {
			in.tapped = true
		}
		in.x, in.y, in.z = step.args[0], step.args[1], step.args[2]
	case "battery":
		in.volts = step.args[0]
	}
}

func (in *ScriptInput) Acceleration() (x float64, y float64, z float64) {
	in.Lock()
	defer in.Unlock()
	return in.x, in.y, in.z
}

func (in *ScriptInput) Tapped() (tapped bool) {
	in.Lock()
	defer in.Unlock()
	tapped, in.tapped = in.tapped, false
	return tapped
}

func (in *ScriptInput) ShortCount() int {
	return in.button.ShortCount()
}

func (in *ScriptInput) LongPress() bool {
	return in.button.LongPress()
}

func (in *ScriptInput) Pressed() bool {
	return in.button.Pressed()
}

func (in *ScriptInput) Voltage() float64 {
	in.Lock()
	defer in.Unlock()
	return in.volts
}
