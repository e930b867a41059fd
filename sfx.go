package saber

// This module maps blade events onto the sound files of a sounds directory.
// Files are taken in name order and assigned to events by position, the
// blaster deflection sounds are kept apart by their blst prefix

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// Positions of the event sounds within the sorted sounds directory
const (
	soundOn         = 0
	soundIdle       = 1
	soundOff        = 2
	soundHitFirst   = 7
	soundHitLast    = 14
	soundLockup     = 15
	soundSwingFirst = 16
	soundSwingLast  = 23
	soundBoot       = 24
	soundLowBattery = 25
)

// SoundBank holds the path of the sound for each blade event, an empty path
// plays nothing
type SoundBank struct {
	On         string
	Idle       string
	Off        string
	Lockup     string
	Boot       string
	LowBattery string

	Hits   []string
	Swings []string
	Blasts []string
}

// DiscoverSounds builds a bank from the wav files found in dir
func DiscoverSounds(dir string) (bank *SoundBank, err errors.Error) {
	bank = &SoundBank{}
	if len(dir) == 0 {
		return bank, nil
	}

	entries, errGo := os.ReadDir(dir)
	if errGo != nil {
		return bank, errors.Wrap(errGo).With("kind", kindSoundUnavailable).With("path", dir).With("stack", stack.Trace().TrimRuntime())
	}

	indexed := []string{}
	for _, entry := range entries {
		name := entry.Name()
		// dot files include the ._ resource forks macOS leaves on the drive
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), "blst") {
			bank.Blasts = append(bank.Blasts, filepath.Join(dir, name))
			continue
		}
		indexed = append(indexed, filepath.Join(dir, name))
	}
	sort.Strings(indexed)
	sort.Strings(bank.Blasts)

	at := func(idx int) string {
		if idx < len(indexed) {
			return indexed[idx]
		}
		return ""
	}
	span := func(first int, last int) (paths []string) {
		for i := first; i <= last && i < len(indexed); i++ {
			paths = append(paths, indexed[i])
		}
		return paths
	}

	bank.On = at(soundOn)
	bank.Idle = at(soundIdle)
	bank.Off = at(soundOff)
	bank.Lockup = at(soundLockup)
	bank.Boot = at(soundBoot)
	bank.LowBattery = at(soundLowBattery)
	bank.Hits = span(soundHitFirst, soundHitLast)
	bank.Swings = span(soundSwingFirst, soundSwingLast)

	return bank, nil
}

func pick(rnd *rand.Rand, paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[rnd.Intn(len(paths))]
}

// Hit picks a clash sound
func (bank *SoundBank) Hit(rnd *rand.Rand) string {
	return pick(rnd, bank.Hits)
}

func (bank *SoundBank) Swing(rnd *rand.Rand) string {
	return pick(rnd, bank.Swings)
}

func (bank *SoundBank) Blast(rnd *rand.Rand) string {
	return pick(rnd, bank.Blasts)
}

// Count is the number of distinct files the bank refers to
func (bank *SoundBank) Count() int {
	seen := map[string]struct{}{}
	add := func(paths ...string) {
		for _, path := range paths {
			if len(path) != 0 {
				seen[path] = struct{}{}
			}
		}
	}
	add(bank.On, bank.Idle, bank.Off, bank.Lockup, bank.Boot, bank.LowBattery)
	add(bank.Hits...)
	add(bank.Swings...)
	add(bank.Blasts...)
	return len(seen)
}
