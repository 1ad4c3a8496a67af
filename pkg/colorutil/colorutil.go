// Package colorutil provides the overlay colors used when rendering debug
// annotations over captured frames.
package colorutil

import "image/color"

// Annotation colors for debug renders.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// ScoreColor grades a match score for annotation: green for confident hits,
// yellow for borderline ones, red below that.
func ScoreColor(score, threshold float64) color.RGBA {
	switch {
	case score >= threshold:
		return Green
	case score >= threshold-0.1:
		return Yellow
	default:
		return Red
	}
}
