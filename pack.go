package saber

// This file contains effect pack discovery.  A pack is a directory holding a
// pack.json descriptor next to its animations and sounds, and two packs are
// built in and rendered procedurally

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/saber/model"
)

const (
	ScanPack       = "scan"
	PhotonScanPack = "reverse_scan_with_photons"
	packDescriptor = "pack.json"
)

// BuiltinPacks returns fresh copies of the procedural packs
func BuiltinPacks() []*model.Pack {
	return []*model.Pack{
		{Name: ScanPack, Builtin: true},
		{Name: PhotonScanPack, Builtin: true},
	}
}

func builtinIgnition(name string, color model.Color) Renderer {
	if name == PhotonScanPack {
		return NewPhotonScan(color)
	}
	return NewScan(color)
}

// LoadPack reads the descriptor of the pack in dir.  A missing or broken
// descriptor yields a pack with no phases along with the error, problems with
// individual phases are logged and those phases dropped
func LoadPack(dir string, logger logxi.Logger) (pack *model.Pack, err errors.Error) {
	name := filepath.Base(dir)

	data, errGo := os.ReadFile(filepath.Join(dir, packDescriptor))
	if errGo != nil {
		return &model.Pack{Name: name, Dir: dir}, errors.Wrap(errGo).With("kind", kindMalformedDescriptor).With("pack", name).With("stack", stack.Trace().TrimRuntime())
	}

	pack, problems := model.ParsePack(name, dir, data)
	if logger != nil {
		for _, problem := range problems {
			logger.Warn("pack descriptor", "pack", name, "problem", problem)
		}
	}
	return pack, nil
}

// DiscoverPacks returns the built in packs followed by one pack for every
// sub directory of gfxDir, sorted by name
func DiscoverPacks(gfxDir string, logger logxi.Logger) (packs []*model.Pack, err errors.Error) {
	packs = BuiltinPacks()
	if len(gfxDir) == 0 {
		return packs, nil
	}

	entries, errGo := os.ReadDir(gfxDir)
	if errGo != nil {
		return packs, errors.Wrap(errGo).With("kind", kindAssetUnavailable).With("path", gfxDir).With("stack", stack.Trace().TrimRuntime())
	}

	dirs := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		pack, err := LoadPack(filepath.Join(gfxDir, dir), logger)
		if err != nil && logger != nil {
			logger.Warn("pack has no usable descriptor", "pack", dir, "error", err.Error())
		}
		packs = append(packs, pack)
	}
	return packs, nil
}
