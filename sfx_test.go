package saber

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverSounds(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 26; i++ {
		writeFile(t, dir, fmt.Sprintf("%02d.wav", i), "")
	}
	writeFile(t, dir, "blst2.wav", "")
	writeFile(t, dir, "BLST1.WAV", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "._00.wav", "")
	writeFile(t, dir, ".hidden.wav", "")
	writeFile(t, dir, "._blst3.wav", "")
	if errGo := os.Mkdir(filepath.Join(dir, "extra.wav"), 0o755); errGo != nil {
		t.Fatal(errGo)
	}

	bank, err := DiscoverSounds(dir)
	if err != nil {
		t.Fatal(err.Error())
	}

	name := func(path string) string {
		return filepath.Base(path)
	}
	if name(bank.On) != "00.wav" || name(bank.Idle) != "01.wav" || name(bank.Off) != "02.wav" {
		t.Fatalf("power sounds misassigned %+v", bank)
	}
	if name(bank.Lockup) != "15.wav" || name(bank.Boot) != "24.wav" || name(bank.LowBattery) != "25.wav" {
		t.Fatalf("event sounds misassigned %+v", bank)
	}
	if len(bank.Hits) != 8 || name(bank.Hits[0]) != "07.wav" || name(bank.Hits[7]) != "14.wav" {
		t.Fatalf("hits misassigned %v", bank.Hits)
	}
	if len(bank.Swings) != 8 || name(bank.Swings[0]) != "16.wav" || name(bank.Swings[7]) != "23.wav" {
		t.Fatalf("swings misassigned %v", bank.Swings)
	}
	if len(bank.Blasts) != 2 || name(bank.Blasts[0]) != "BLST1.WAV" {
		t.Fatalf("blasts misassigned %v", bank.Blasts)
	}
	if bank.Count() != 24 {
		t.Fatalf("expected 24 sounds in use, got %d", bank.Count())
	}

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		if hit := name(bank.Hit(rnd)); hit < "07.wav" || hit > "14.wav" {
			t.Fatalf("%s is not a hit sound", hit)
		}
	}
}

func TestDiscoverSoundsSparse(t *testing.T) {
	bank, err := DiscoverSounds("")
	if err != nil || bank.Count() != 0 {
		t.Fatal("no directory means no sounds")
	}
	if bank.Hit(rand.New(rand.NewSource(1))) != "" {
		t.Fatal("an empty bank plays nothing")
	}

	if _, err := DiscoverSounds(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("a missing directory should be reported")
	}

	dir := t.TempDir()
	writeFile(t, dir, "on.wav", "")
	writeFile(t, dir, "hum.wav", "")
	bank, err = DiscoverSounds(dir)
	if err != nil {
		t.Fatal(err.Error())
	}
	if filepath.Base(bank.On) != "hum.wav" || filepath.Base(bank.Idle) != "on.wav" || bank.Off != "" || len(bank.Hits) != 0 {
		t.Fatalf("a short directory fills the leading events, got %+v", bank)
	}
}
