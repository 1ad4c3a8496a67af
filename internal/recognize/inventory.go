package recognize

import (
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"pricer/pkg/geometry"
)

// InventoryMatch is one detected item occurrence inside an inventory frame.
type InventoryMatch struct {
	Item  string
	Score float64
	Rect  geometry.RectInt
}

// ScanInventory finds every occurrence of every known inventory template in
// the grayscale frame. Per item it extracts up to MaxPerItem correlation peaks
// greedily, zeroing each peak's footprint so the same spot is not reported
// twice; overlapping hits across items are then suppressed keeping the higher
// score. Results are sorted by score, strongest first.
func (d *Detector) ScanInventory(gray gocv.Mat) []InventoryMatch {
	var candidates []InventoryMatch
	for _, item := range d.store.Items() {
		variants := d.store.InventoryVariants(item)
		if len(variants) == 0 {
			continue
		}
		candidates = append(candidates, d.scanItem(gray, item, variants)...)
	}
	result := suppressOverlapping(candidates, d.params.InventorySuppressIoU)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	return result
}

// scanItem pulls up to MaxPerItem peaks for one item. Each variant gets its
// own correlation surface; peaks below the threshold end extraction for that
// surface since MinMaxLoc always returns the global maximum.
func (d *Detector) scanItem(gray gocv.Mat, item string, variants []gocv.Mat) []InventoryMatch {
	var hits []InventoryMatch
	for _, v := range variants {
		if v.Empty() || v.Cols() > gray.Cols() || v.Rows() > gray.Rows() {
			continue
		}
		res := gocv.NewMat()
		mask := gocv.NewMat()
		gocv.MatchTemplate(gray, v, &res, gocv.TmCcoeffNormed, mask)
		mask.Close()
		for n := 0; n < d.params.InventoryMaxPerItem; n++ {
			_, maxVal, _, maxLoc := gocv.MinMaxLoc(res)
			if float64(maxVal) < d.params.InventoryThreshold {
				break
			}
			hits = append(hits, InventoryMatch{
				Item:  item,
				Score: float64(maxVal),
				Rect:  geometry.NewRectInt(maxLoc.X, maxLoc.Y, maxLoc.X+v.Cols(), maxLoc.Y+v.Rows()),
			})
			// Erase the peak's footprint on the correlation surface so
			// the next iteration finds the next-strongest occurrence.
			gocv.Rectangle(&res,
				image.Rect(maxLoc.X-v.Cols()/2, maxLoc.Y-v.Rows()/2,
					maxLoc.X+v.Cols()/2+1, maxLoc.Y+v.Rows()/2+1),
				color.RGBA{}, -1)
		}
		res.Close()
	}
	if len(hits) <= d.params.InventoryMaxPerItem {
		return hits
	}
	// Multiple scale variants can each contribute peaks; keep only the
	// strongest MaxPerItem for the item overall.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits[:d.params.InventoryMaxPerItem]
}

// suppressOverlapping greedily keeps the highest-scoring candidates, dropping
// any later candidate whose IoU with an already kept one exceeds maxIoU.
func suppressOverlapping(candidates []InventoryMatch, maxIoU float64) []InventoryMatch {
	sorted := make([]InventoryMatch, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var kept []InventoryMatch
	for _, c := range sorted {
		overlaps := false
		for _, k := range kept {
			if c.Rect.IoU(k.Rect) > maxIoU {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}
