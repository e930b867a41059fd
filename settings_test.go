package saber

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TeamNorCal/saber/model"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	fp := filepath.Join(dir, name)
	if errGo := os.MkdirAll(filepath.Dir(fp), 0o755); errGo != nil {
		t.Fatal(errGo)
	}
	if errGo := os.WriteFile(fp, []byte(content), 0o644); errGo != nil {
		t.Fatal(errGo)
	}
	return fp
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	settings, err := LoadSettings("")
	if err != nil || settings != DefaultSettings() {
		t.Fatal("no file means the defaults")
	}

	settings, err = LoadSettings(writeFile(t, dir, "settings.json", `{"COR": 5, "Brilho": 0, "Volume": 9}`))
	if err != nil {
		t.Fatal(err.Error())
	}
	want := DefaultSettings()
	want.Color = 5
	want.Brightness = 0
	want.Volume = len(volumeLevels) - 1
	if settings != want {
		t.Fatalf("expected %+v, got %+v", want, settings)
	}

	settings, err = LoadSettings(writeFile(t, dir, "settings.yaml", "COR: 13\nAnim: 1\n"))
	if err != nil {
		t.Fatal(err.Error())
	}
	if settings.Color != 13 || settings.Anim != 1 || settings.Swing != DefaultSettings().Swing {
		t.Fatalf("yaml settings not loaded, got %+v", settings)
	}

	for _, path := range []string{
		filepath.Join(dir, "missing.json"),
		writeFile(t, dir, "broken.json", `{"COR": `),
	} {
		settings, err = LoadSettings(path)
		if err == nil {
			t.Fatalf("%s should fail to load", path)
		}
		if settings != DefaultSettings() {
			t.Fatal("a failed load returns the defaults")
		}
	}
}

func TestSettingsApply(t *testing.T) {
	s := Settings{Color: 0, Brightness: 0, Volume: 3, Swing: 2, Clash: 0, Anim: 1}
	cfg := DefaultConfig()
	s.Apply(&cfg)

	if cfg.Color != model.Red {
		t.Fatalf("expected red, got %+v", cfg.Color)
	}
	if cfg.SinkBrightness != 0.1 || cfg.Volume != 1.0 || cfg.SwingThreshold != 65 || cfg.UseAnimation {
		t.Fatalf("levels not applied, got %+v", cfg)
	}
	if s.ClashThreshold() != 127 {
		t.Fatal("unexpected clash threshold")
	}

	wild := Settings{Color: -4, Brightness: 99, Volume: -1, Swing: 7, Clash: 7, Anim: 5}.Clamped()
	if wild != (Settings{Color: 0, Brightness: 2, Volume: 0, Swing: 2, Clash: 2, Anim: 1}) {
		t.Fatalf("settings not clamped, got %+v", wild)
	}
}

func TestPalette(t *testing.T) {
	aqua, isPresent := PaletteColor("AQUA")
	if !isPresent || aqua != (model.Color{R: 50, G: 255, B: 255}) {
		t.Fatalf("unexpected aqua %+v", aqua)
	}
	if _, isPresent := PaletteColor("plaid"); isPresent {
		t.Fatal("unknown colors are not in the palette")
	}
	if !strings.Contains(DefaultSettings().String(), "color=aqua") {
		t.Fatal("the default blade is aqua")
	}
	if DefaultConfig().Color != aqua {
		t.Fatal("the default config uses the default palette color")
	}
}
