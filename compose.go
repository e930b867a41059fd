package saber

import (
	"github.com/TeamNorCal/saber/model"
)

// Compose merges an overlay onto a base buffer into out.  Overlay black is
// transparent, any other overlay pixel replaces the base pixel
func Compose(out model.Buffer, base model.Buffer, overlay model.Buffer) {
	ComposeDimmed(out, base, overlay, 1.0)
}

// ComposeDimmed is Compose with the base scaled by dim so the overlay reads
// brighter than the blade underneath it
func ComposeDimmed(out model.Buffer, base model.Buffer, overlay model.Buffer, dim float64) {
	for i := range out {
		if i < len(overlay) && !overlay[i].IsBlack() {
			out[i] = overlay[i]
			continue
		}
		if i >= len(base) {
			out[i] = model.Black
			continue
		}
		if dim == 1.0 {
			out[i] = base[i]
		} else {
			out[i] = base[i].Scale(dim)
		}
	}
}
