package saber

import (
	"strings"
	"testing"
	"time"
)

func TestDebouncerBursts(t *testing.T) {
	d := NewDebouncer()

	at := func(ms int) time.Time {
		return epoch.Add(time.Duration(ms) * time.Millisecond)
	}

	d.Update(true, at(0))
	if !d.Pressed() {
		t.Fatal("the button should read pressed")
	}
	d.Update(false, at(50))
	d.Update(false, at(200))
	if d.ShortCount() != 0 {
		t.Fatal("a burst is only reported once the gap has passed")
	}
	d.Update(false, at(251))
	if count := d.ShortCount(); count != 1 {
		t.Fatalf("expected a single press, got %d", count)
	}
	if d.ShortCount() != 0 {
		t.Fatal("reading the count consumes it")
	}

	d.Update(true, at(400))
	d.Update(false, at(450))
	d.Update(false, at(651))
	d.Update(false, at(656))
	if count := d.ShortCount(); count != 0 {
		t.Fatalf("a count not read on the poll that completed it must be dropped, got %d", count)
	}

	for _, ms := range []int{1000, 1150, 1300} {
		d.Update(true, at(ms))
		d.Update(false, at(ms+50))
	}
	d.Update(false, at(1600))
	if count := d.ShortCount(); count != 3 {
		t.Fatalf("expected a burst of three, got %d", count)
	}
}

func TestDebouncerLongPress(t *testing.T) {
	d := NewDebouncer()

	d.Update(true, epoch)
	d.Update(true, epoch.Add(999*time.Millisecond))
	if d.LongPress() {
		t.Fatal("long press fired early")
	}
	d.Update(true, epoch.Add(time.Second))
	if !d.LongPress() {
		t.Fatal("a one second hold is a long press")
	}
	if d.LongPress() {
		t.Fatal("reading the long press consumes it")
	}

	d.Update(false, epoch.Add(1100*time.Millisecond))
	d.Update(false, epoch.Add(2*time.Second))
	if d.ShortCount() != 0 {
		t.Fatal("the release ending a long press is not a short press")
	}
}

func TestManualInputConsumes(t *testing.T) {
	in := NewManualInput()
	in.Tap()
	in.Click(2)
	in.Long()

	if !in.Tapped() || in.Tapped() {
		t.Fatal("a tap is read once")
	}
	if in.ShortCount() != 2 || in.ShortCount() != 0 {
		t.Fatal("clicks are read once")
	}
	if !in.LongPress() || in.LongPress() {
		t.Fatal("a long press is read once")
	}
	if in.Voltage() != 4.0 {
		t.Fatal("a manual battery starts full")
	}
}

func TestParseScriptErrors(t *testing.T) {
	for _, script := range []string{
		"1s bogus",
		"1s click",
		"soon tap",
		"1s accel 1 2",
		"1s battery high",
		"1s",
		`1s "tap`,
	} {
		if _, err := ParseScript(strings.NewReader(script)); err == nil {
			t.Fatalf("script %q should be refused", script)
		}
	}
}

func TestScriptPlayback(t *testing.T) {
	script := `
# a short session
0s      battery 3.9
0s      click 2
500ms   accel 0 0 -9.8
600ms   tap
1s      press
2500ms  release
`
	in, err := ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatal(err.Error())
	}
	in.TapThreshold = 5

	shorts := []int{}
	longs := 0
	taps := 0
	for now := epoch; now.Before(epoch.Add(3 * time.Second)); now = now.Add(5 * time.Millisecond) {
		in.Poll(now)
		if count := in.ShortCount(); count != 0 {
			shorts = append(shorts, count)
		}
		if in.LongPress() {
			longs++
		}
		if in.Tapped() {
			taps++
		}
		if now.Equal(epoch.Add(1500*time.Millisecond)) && !in.Pressed() {
			t.Fatal("the button should be held")
		}
	}

	if len(shorts) != 1 || shorts[0] != 2 {
		t.Fatalf("expected one burst of two presses, got %v", shorts)
	}
	if longs != 1 {
		t.Fatalf("expected one long press, got %d", longs)
	}
	if taps != 2 {
		t.Fatalf("expected the jolt and the explicit tap, got %d", taps)
	}
	if in.Voltage() != 3.9 {
		t.Fatal("battery not applied")
	}
	if _, _, z := in.Acceleration(); z != -9.8 {
		t.Fatal("acceleration not applied")
	}
	if !in.Done() {
		t.Fatal("the script should be exhausted")
	}
}

func TestScriptLongCommand(t *testing.T) {
	in, err := ParseScript(strings.NewReader("100ms long"))
	if err != nil {
		t.Fatal(err.Error())
	}

	longs := 0
	for now := epoch; now.Before(epoch.Add(2 * time.Second)); now = now.Add(5 * time.Millisecond) {
		in.Poll(now)
		if in.LongPress() {
			longs++
		}
	}
	if longs != 1 || in.Pressed() || in.ShortCount() != 0 {
		t.Fatal("long should hold the button past the long press time and release it")
	}
}
