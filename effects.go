package saber

// This file contains the procedural renderers.  They stand in for binary
// animations when assets are missing or animation is disabled, and implement
// the built in ignition packs that predate pack files

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/TeamNorCal/saber/model"
)

func toColorful(c model.Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) model.Color {
	r, g, b := c.Clamped().RGB255()
	return model.Color{R: r, G: g, B: b}
}

// Lerp blends a toward b, t is clamped to [0, 1]
func Lerp(a model.Color, b model.Color, t float64) model.Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return fromColorful(toColorful(a).BlendRgb(toColorful(b), t))
}

// stepsSince counts whole steps elapsed since start, a zero step is always
// complete
func stepsSince(start time.Time, now time.Time, step time.Duration) int {
	if step <= 0 {
		return int(^uint(0) >> 1)
	}
	return int(now.Sub(start) / step)
}

// Fill paints a solid color forever
type Fill struct {
	Color model.Color
}

func (f *Fill) AdvanceInto(buf model.Buffer, now time.Time) bool {
	buf.Fill(f.Color)
	return true
}

// Chase runs lit segments of Size pixels separated by Spacing dark pixels
// along the strip, moving one pixel every Speed
type Chase struct {
	Color   model.Color
	Size    int
	Spacing int
	Speed   time.Duration

	offset int
	last   time.Time
}

func NewChase(color model.Color) *Chase {
	return &Chase{
		Color:   color,
		Size:    3,
		Spacing: 1,
		Speed:   10 * time.Millisecond,
	}
}

func (c *Chase) SetColor(color model.Color) {
	c.Color = color
}

func (c *Chase) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if c.last.IsZero() {
		c.last = now
	} else if now.Sub(c.last) >= c.Speed {
		c.offset++
		c.last = now
	}

	period := c.Size + c.Spacing
	if period <= 0 {
		buf.Fill(c.Color)
		return true
	}
	for i := range buf {
		if (i+period-c.offset%period)%period < c.Size {
			buf[i] = c.Color
		} else {
			buf[i] = model.Black
		}
	}
	return true
}

// Scan ignites the blade with a bright photon running from the hilt to the
// tip, the blade color filling in ten pixels behind it
type Scan struct {
	Color model.Color
	Step  time.Duration
	// Keep leaves pixels ahead of the photon untouched instead of dark
	Keep bool

	start time.Time
}

const scanTrail = 10

func NewScan(color model.Color) *Scan {
	return &Scan{
		Color: color,
		Step:  time.Millisecond,
	}
}

// ExplosionColor is the blade color pulled halfway to white
func ExplosionColor(c model.Color) model.Color {
	return Lerp(c, model.White, 0.5)
}

func (s *Scan) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if s.start.IsZero() {
		s.start = now
	}
	pos := stepsSince(s.start, now, s.Step)
	if pos >= len(buf) {
		buf.Fill(s.Color)
		return false
	}

	photon := ExplosionColor(s.Color)
	for i := range buf {
		switch {
		case i <= pos-scanTrail:
			buf[i] = s.Color
		case i <= pos:
			buf[i] = photon
		case !s.Keep:
			buf[i] = model.Black
		}
	}
	return true
}

// PhotonScan fires photons from the hilt at a scan head that recedes from the
// tip two pixels at a time, then finishes with a Scan over the result
type PhotonScan struct {
	Color model.Color
	Step  time.Duration

	start   time.Time
	steps   int
	head    int
	photon  int
	primed  bool
	cleared bool
	final   *Scan
}

func NewPhotonScan(color model.Color) *PhotonScan {
	return &PhotonScan{
		Color: color,
		Step:  250 * time.Microsecond,
	}
}

func (p *PhotonScan) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if p.final != nil {
		return p.final.AdvanceInto(buf, now)
	}
	if !p.primed {
		p.start = now
		p.head = len(buf) - 1
		p.primed = true
	}
	if !p.cleared {
		buf.Clear()
		p.cleared = true
	}

	photon := ExplosionColor(p.Color)
	due := stepsSince(p.start, now, p.Step)
	for ; p.steps < due; p.steps++ {
		if p.head < 0 {
			break
		}
		if p.photon >= p.head {
			p.head -= 2
			p.photon = 0
			continue
		}
		if p.photon-2 >= 0 && p.photon-2 < len(buf) {
			buf[p.photon-2] = model.Black
		}
		if p.photon < len(buf) {
			buf[p.photon] = photon
		}
		p.photon += 2
	}

	if p.head < 0 {
		p.final = &Scan{Color: p.Color, Step: time.Millisecond, Keep: true}
		return p.final.AdvanceInto(buf, now)
	}
	return true
}

// Retract darkens the blade one pixel per Step from the tip to the hilt
type Retract struct {
	Color model.Color
	Step  time.Duration

	start time.Time
}

func NewRetract(color model.Color) *Retract {
	return &Retract{
		Color: color,
		Step:  10 * time.Millisecond,
	}
}

func (r *Retract) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if r.start.IsZero() {
		r.start = now
	}
	dark := stepsSince(r.start, now, r.Step)
	for i := range buf {
		if i >= len(buf)-dark {
			buf[i] = model.Black
		} else {
			buf[i] = r.Color
		}
	}
	return dark < len(buf)
}

// Blink flashes the whole strip Count times
type Blink struct {
	Color model.Color
	On    time.Duration
	Off   time.Duration
	Count int

	start time.Time
}

func (b *Blink) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if b.start.IsZero() {
		b.start = now
	}
	period := b.On + b.Off
	if period <= 0 {
		buf.Clear()
		return false
	}
	elapsed := now.Sub(b.start)
	if int(elapsed/period) >= b.Count {
		buf.Clear()
		return false
	}
	if elapsed%period < b.On {
		buf.Fill(b.Color)
	} else {
		buf.Clear()
	}
	return true
}

// Gauge shows a fraction of the strip lit along a red, yellow, green, blue
// gradient for Hold
type Gauge struct {
	Fraction float64
	Hold     time.Duration
	Dim      float64

	start time.Time
}

var (
	gaugeRed    = colorful.Color{R: 1, G: 0, B: 0}
	gaugeYellow = colorful.Color{R: 1, G: 1, B: 0}
	gaugeGreen  = colorful.Color{R: 0, G: 1, B: 0}
	gaugeBlue   = colorful.Color{R: 0, G: 0, B: 1}
)

// gaugeColor returns the gradient color at t along the strip
func gaugeColor(t float64) colorful.Color {
	switch {
	case t < 0.10:
		return gaugeRed
	case t < 0.25:
		return gaugeRed.BlendRgb(gaugeYellow, (t-0.10)/0.15)
	case t < 0.5:
		return gaugeYellow.BlendRgb(gaugeGreen, (t-0.25)/0.25)
	case t < 0.9:
		return gaugeGreen
	}
	return gaugeGreen.BlendRgb(gaugeBlue, (t-0.9)/0.1)
}

func (g *Gauge) AdvanceInto(buf model.Buffer, now time.Time) bool {
	if g.start.IsZero() {
		g.start = now
	}
	if now.Sub(g.start) >= g.Hold {
		buf.Clear()
		return false
	}

	frac := g.Fraction
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	lit := int(frac * float64(len(buf)))
	for i := range buf {
		if i >= lit {
			buf[i] = model.Black
			continue
		}
		t := 0.0
		if len(buf) > 1 {
			t = float64(i) / float64(len(buf)-1)
		}
		buf[i] = fromColorful(gaugeColor(t)).Scale(g.Dim)
	}
	return true
}
