package recognize

import (
	"image"

	"gocv.io/x/gocv"
)

// matchHit is the best correlation found for one template variant.
type matchHit struct {
	score float64
	loc   image.Point
	size  image.Point // width/height of the variant that produced the score
}

// bestMatch runs normalized cross-correlation of every variant against the
// grayscale region and returns the single strongest hit. Variants larger than
// the region in either dimension are skipped. ok is false when no variant fit.
func bestMatch(gray gocv.Mat, variants []gocv.Mat) (matchHit, bool) {
	best := matchHit{score: -1}
	found := false
	for _, v := range variants {
		if v.Empty() || v.Cols() > gray.Cols() || v.Rows() > gray.Rows() {
			continue
		}
		res := gocv.NewMat()
		mask := gocv.NewMat()
		gocv.MatchTemplate(gray, v, &res, gocv.TmCcoeffNormed, mask)
		mask.Close()
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(res)
		res.Close()
		if float64(maxVal) > best.score {
			best = matchHit{
				score: float64(maxVal),
				loc:   maxLoc,
				size:  image.Point{X: v.Cols(), Y: v.Rows()},
			}
			found = true
		}
	}
	return best, found
}

// bestScore is bestMatch without location bookkeeping, for classifiers that
// only care how well a template family correlates.
func bestScore(gray gocv.Mat, variants []gocv.Mat) (float64, bool) {
	hit, ok := bestMatch(gray, variants)
	if !ok {
		return 0, false
	}
	return hit.score, true
}
