// Package recognition holds the screen-region math shared by the OCR
// adapter and the ingestion worker.
package recognition

import (
	"image"
	"image/draw"
	"sort"

	"contractbot/internal/domain"
)

// Named regions read by the ingestion cycle.
const (
	RegionMarker      = "contracts_marker"
	RegionSystem      = "system"
	RegionPlayerName  = "player_name"
	RegionGameTime    = "game_time"
	RegionComposition = "composition_table"
)

// Regions maps region names to configured boxes.
type Regions map[string]domain.Box

// RegionsFromConfig converts raw coordinate lists. Entries without exactly
// four values are left out.
func RegionsFromConfig(raw map[string][]int) Regions {
	out := make(Regions, len(raw))
	for name, v := range raw {
		if len(v) != 4 {
			continue
		}
		out[name] = domain.Box{v[0], v[1], v[2], v[3]}
	}
	return out
}

// Normalize orders the box per axis and clamps it to bounds. ok is false when
// the result has no area.
func Normalize(box domain.Box, bounds image.Rectangle) (image.Rectangle, bool) {
	xs := []int{box[0], box[2]}
	ys := []int{box[1], box[3]}
	sort.Ints(xs)
	sort.Ints(ys)
	r := image.Rect(xs[0], ys[0], xs[1], ys[1]).Intersect(bounds)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return image.Rectangle{}, false
	}
	return r, true
}

// Crop copies the normalized box out of img. The copy starts at the origin.
func Crop(img image.Image, box domain.Box) (image.Image, bool) {
	if img == nil {
		return nil, false
	}
	r, ok := Normalize(box, img.Bounds())
	if !ok {
		return nil, false
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, true
}
