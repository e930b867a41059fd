package saber

// This file contains the user settings, small indices into fixed tables that
// survive between runs, and their translation into an engine Config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"github.com/lucasb-eyer/go-colorful"

	"gopkg.in/yaml.v3"

	"github.com/TeamNorCal/saber/model"
)

// NamedColor is one entry of the blade color palette
type NamedColor struct {
	Name  string
	Color model.Color
}

var (
	// Palette holds the selectable blade colors in settings order
	Palette = mustPalette([][2]string{
		{"red", "#FF0000"},
		{"orange", "#FF2800"},
		{"amber", "#FF6400"},
		{"aqua", "#32FFFF"},
		{"jade", "#00FF28"},
		{"magenta", "#FF0014"},
		{"teal", "#00FF78"},
		{"gold", "#FFDE1E"},
		{"yellow", "#FF9600"},
		{"green", "#00FF00"},
		{"cyan", "#00FFFF"},
		{"blue", "#0000FF"},
		{"purple", "#B400FF"},
		{"white", "#FFFFFF"},
	})

	brightnessLevels = []float64{0.1, 0.4, 0.8}
	volumeLevels     = []float64{0, 0.1, 0.5, 1.0}
	swingThresholds  = []float64{260, 130, 65}
	clashThresholds  = []float64{127, 100, 60}
)

func mustPalette(entries [][2]string) (palette []NamedColor) {
	palette = make([]NamedColor, 0, len(entries))
	for _, entry := range entries {
		c, errGo := colorful.Hex(entry[1])
		if errGo != nil {
			panic(fmt.Sprintf("palette entry %s has a bad hex value %s", entry[0], entry[1]))
		}
		palette = append(palette, NamedColor{Name: entry[0], Color: fromColorful(c)})
	}
	return palette
}

// PaletteColor looks up a palette color by name
func PaletteColor(name string) (color model.Color, isPresent bool) {
	for _, entry := range Palette {
		if strings.EqualFold(entry.Name, name) {
			return entry.Color, true
		}
	}
	return model.Color{}, false
}

// Settings are indices into the palette and level tables, the field names
// follow the settings file written by the device
type Settings struct {
	Color      int `json:"COR" yaml:"COR"`
	Brightness int `json:"Brilho" yaml:"Brilho"`
	Volume     int `json:"Volume" yaml:"Volume"`
	Swing      int `json:"Swing" yaml:"Swing"`
	Clash      int `json:"Clash" yaml:"Clash"`
	Anim       int `json:"Anim" yaml:"Anim"` // 0 on, 1 off
}

func DefaultSettings() Settings {
	return Settings{
		Color:      3,
		Brightness: 2,
		Volume:     2,
		Swing:      1,
		Clash:      1,
		Anim:       0,
	}
}

func clampIndex(idx int, size int) int {
	if idx < 0 {
		return 0
	}
	if idx >= size {
		return size - 1
	}
	return idx
}

// Clamped returns the settings with every index forced into its table
func (s Settings) Clamped() Settings {
	return Settings{
		Color:      clampIndex(s.Color, len(Palette)),
		Brightness: clampIndex(s.Brightness, len(brightnessLevels)),
		Volume:     clampIndex(s.Volume, len(volumeLevels)),
		Swing:      clampIndex(s.Swing, len(swingThresholds)),
		Clash:      clampIndex(s.Clash, len(clashThresholds)),
		Anim:       clampIndex(s.Anim, 2),
	}
}

// ClashThreshold is the tap sensitivity handed to the accelerometer
func (s Settings) ClashThreshold() float64 {
	return clashThresholds[clampIndex(s.Clash, len(clashThresholds))]
}

// Apply copies the values the settings select into cfg
func (s Settings) Apply(cfg *Config) {
	s = s.Clamped()
	cfg.Color = Palette[s.Color].Color
	cfg.SinkBrightness = brightnessLevels[s.Brightness]
	cfg.Volume = volumeLevels[s.Volume]
	cfg.SwingThreshold = swingThresholds[s.Swing]
	cfg.UseAnimation = s.Anim == 0
}

func (s Settings) String() string {
	s = s.Clamped()
	return fmt.Sprintf("color=%s brightness=%.1f volume=%.1f swing=%.0f clash=%.0f anim=%t",
		Palette[s.Color].Name, brightnessLevels[s.Brightness], volumeLevels[s.Volume],
		swingThresholds[s.Swing], clashThresholds[s.Clash], s.Anim == 0)
}

// LoadSettings reads a JSON or YAML settings file, chosen by extension.  The
// defaults are returned along with the error when the file cannot be used
func LoadSettings(path string) (settings Settings, err errors.Error) {
	settings = DefaultSettings()
	if len(path) == 0 {
		return settings, nil
	}

	data, errGo := os.ReadFile(path)
	if errGo != nil {
		return settings, errors.Wrap(errGo).With("kind", kindMalformedDescriptor).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	loaded := DefaultSettings()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		errGo = yaml.Unmarshal(data, &loaded)
	default:
		errGo = json.Unmarshal(data, &loaded)
	}
	if errGo != nil {
		return settings, errors.Wrap(errGo).With("kind", kindMalformedDescriptor).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	return loaded.Clamped(), nil
}
