// Package template loads, validates, and caches grayscale reference images
// used for normalized cross-correlation matching, and produces multi-scale
// pyramids on demand.
package template

import (
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// MinDimension is the smallest usable template edge in pixels. Files below
// this are skipped at load time and scaled variants never shrink past it.
const MinDimension = 6

// DefaultScales is the default pyramid scale set. Overridable via Store options.
var DefaultScales = []float64{0.75, 0.85, 0.95, 1.0, 1.1, 1.25}

// Template is one grayscale reference image together with its source identity
// and the derived multi-scale pyramid.
type Template struct {
	Path    string
	ModTime time.Time

	base   gocv.Mat
	scaled []gocv.Mat // one per non-unit scale factor
}

// newTemplate builds a template and its pyramid from an already-loaded mat.
// Ownership of base transfers to the template.
func newTemplate(path string, modTime time.Time, base gocv.Mat, scales []float64) *Template {
	t := &Template{Path: path, ModTime: modTime, base: base}
	for _, s := range scales {
		if math.Abs(s-1.0) < 1e-3 {
			continue // the unscaled mat stands in for factor 1.0
		}
		w := max(MinDimension, int(math.Round(float64(base.Cols())*s)))
		h := max(MinDimension, int(math.Round(float64(base.Rows())*s)))
		interp := gocv.InterpolationCubic
		if s < 1.0 {
			interp = gocv.InterpolationArea
		}
		dst := gocv.NewMat()
		gocv.Resize(base, &dst, image.Point{X: w, Y: h}, 0, 0, interp)
		t.scaled = append(t.scaled, dst)
	}
	return t
}

// Variants returns every pyramid level including the unscaled base.
// The returned mats are owned by the template; callers must not close them.
func (t *Template) Variants() []gocv.Mat {
	out := make([]gocv.Mat, 0, len(t.scaled)+1)
	out = append(out, t.base)
	out = append(out, t.scaled...)
	return out
}

// Close releases the base mat and every scaled variant.
func (t *Template) Close() {
	t.base.Close()
	for i := range t.scaled {
		t.scaled[i].Close()
	}
	t.scaled = nil
}

func closeTemplates(ts []*Template) {
	for _, t := range ts {
		t.Close()
	}
}

// variantsOf flattens the pyramids of a template set into one mat list.
func variantsOf(ts []*Template) []gocv.Mat {
	var out []gocv.Mat
	for _, t := range ts {
		out = append(out, t.Variants()...)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
