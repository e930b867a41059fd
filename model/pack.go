package model

// This module defines the effect pack descriptor, a per pack pack.json file
// naming the binary animation and paired sound for each phase of the blade
// life cycle.  The loosely typed JSON is validated once into Phase records

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

type PhaseName string

const (
	Preon    PhaseName = "preon"
	PowerOn  PhaseName = "poweron"
	PowerOff PhaseName = "poweroff"
	PostOff  PhaseName = "pstoff"
	Leds     PhaseName = "leds"
)

// DefaultFrameTime is used when a phase omits frame_time
const DefaultFrameTime = 25 * time.Millisecond

// phaseDesc is one pack.json entry as authored
type phaseDesc struct {
	Bin       string   `json:"bin"`
	Wav       string   `json:"wav"`
	FrameTime *float64 `json:"frame_time"` // milliseconds
	Tinting   *bool    `json:"tinting"`
}

// Phase is a validated pack entry, paths are already joined with the pack
// directory.  Asset or Sound may be empty but not both
type Phase struct {
	Asset    string
	Sound    string
	Interval time.Duration
	Tinting  bool
}

// Pack is one selectable visual theme.  Builtin packs have no descriptor and
// are rendered procedurally
type Pack struct {
	Name    string
	Dir     string
	Builtin bool

	Preon    *Phase
	PowerOn  *Phase
	PowerOff *Phase
	PostOff  *Phase
	Leds     *Phase
}

// Phase returns the named phase, nil when the pack does not define it
func (p *Pack) Phase(name PhaseName) *Phase {
	if p == nil {
		return nil
	}
	switch name {
	case Preon:
		return p.Preon
	case PowerOn:
		return p.PowerOn
	case PowerOff:
		return p.PowerOff
	case PostOff:
		return p.PostOff
	case Leds:
		return p.Leds
	}
	return nil
}

// FontSound is the short preview sound played when the pack is selected
func (p *Pack) FontSound() string {
	if p == nil || p.Builtin || p.Dir == "" {
		return ""
	}
	return filepath.Join(p.Dir, "font.wav")
}

// ParsePack validates a pack.json document.  Problems are reported but never
// prevent a pack from being returned, absent or broken phases are simply left
// nil so that the engine skips them
func ParsePack(name string, dir string, data []byte) (pack *Pack, problems []string) {
	pack = &Pack{
		Name: name,
		Dir:  dir,
	}

	raw := map[string]json.RawMessage{}
	if errGo := json.Unmarshal(data, &raw); errGo != nil {
		return pack, []string{fmt.Sprintf("descriptor unreadable: %s", errGo.Error())}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var slot **Phase
		switch PhaseName(key) {
		case Preon:
			slot = &pack.Preon
		case PowerOn:
			slot = &pack.PowerOn
		case PowerOff:
			slot = &pack.PowerOff
		case PostOff:
			slot = &pack.PostOff
		case Leds:
			slot = &pack.Leds
		default:
			problems = append(problems, fmt.Sprintf("unknown phase %q ignored", key))
			continue
		}

		desc := phaseDesc{}
		if errGo := json.Unmarshal(raw[key], &desc); errGo != nil {
			problems = append(problems, fmt.Sprintf("phase %q unreadable: %s", key, errGo.Error()))
			continue
		}
		phase, problem := desc.validate(dir)
		if len(problem) != 0 {
			problems = append(problems, fmt.Sprintf("phase %q %s", key, problem))
		}
		*slot = phase
	}
	return pack, problems
}

func (desc *phaseDesc) validate(dir string) (phase *Phase, problem string) {
	if desc.Bin == "" && desc.Wav == "" {
		return nil, "has neither bin nor wav"
	}

	phase = &Phase{
		Interval: DefaultFrameTime,
		Tinting:  true,
	}
	if desc.Bin != "" {
		phase.Asset = filepath.Join(dir, desc.Bin)
	}
	if desc.Wav != "" {
		phase.Sound = filepath.Join(dir, desc.Wav)
	}
	if desc.Tinting != nil {
		phase.Tinting = *desc.Tinting
	}
	if desc.FrameTime != nil {
		if *desc.FrameTime < 0 {
			problem = "has a negative frame_time, default used"
		} else {
			phase.Interval = time.Duration(*desc.FrameTime * float64(time.Millisecond))
		}
	}
	return phase, problem
}
