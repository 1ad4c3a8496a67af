// Package capture grabs screen pixels and hands them to the recognition
// pipeline as OpenCV matrices.
package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"gocv.io/x/gocv"

	"pricer/internal/imutil"
	"pricer/pkg/geometry"
)

// ScreenGeometry returns the bounds of the primary display.
func ScreenGeometry() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// GrabRect captures the given screen region as a BGR mat. The caller owns
// the returned mat.
func GrabRect(bounds image.Rectangle) (gocv.Mat, error) {
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("capturing %v: %w", bounds, err)
	}
	mat, err := imutil.FromImage(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("converting capture: %w", err)
	}
	return mat, nil
}

// GrabFullScreen captures the whole primary display.
func GrabFullScreen() (gocv.Mat, image.Rectangle, error) {
	bounds, err := ScreenGeometry()
	if err != nil {
		return gocv.Mat{}, image.Rectangle{}, err
	}
	mat, err := GrabRect(bounds)
	return mat, bounds, err
}

// InventoryQuadrant returns the bottom-right quarter of the display, where
// the game draws the inventory grid.
func InventoryQuadrant() (image.Rectangle, error) {
	bounds, err := ScreenGeometry()
	if err != nil {
		return image.Rectangle{}, err
	}
	r := geometry.NewRectInt(
		bounds.Min.X+bounds.Dx()/2,
		bounds.Min.Y+bounds.Dy()/2,
		bounds.Max.X,
		bounds.Max.Y,
	)
	return image.Rect(r.X, r.Y, r.MaxX(), r.MaxY()), nil
}
