package ocr

import (
	"image"

	"gocv.io/x/gocv"

	"pricer/internal/imutil"
)

// preprocessForOCR turns a tooltip ROI into high-contrast binary glyphs.
// Contrast is stretched and locally equalized, noise from screen compression
// is smoothed away, then an adaptive threshold separates strokes from the
// glowing tooltip background. Tesseract prefers dark text on light ground,
// hence the final inversion.
func preprocessForOCR(img gocv.Mat) gocv.Mat {
	gray := imutil.ToGray(img)
	defer gray.Close()

	norm := gocv.NewMat()
	gocv.Normalize(gray, &norm, 0, 255, gocv.NormMinMax)

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	eq := gocv.NewMat()
	clahe.Apply(norm, &eq)
	clahe.Close()
	norm.Close()

	denoised := gocv.NewMat()
	gocv.FastNlMeansDenoisingWithParams(eq, &denoised, 18, 7, 21)
	eq.Close()

	thresh := gocv.NewMat()
	gocv.AdaptiveThreshold(denoised, &thresh, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 31, 9)
	denoised.Close()

	inverted := gocv.NewMat()
	gocv.BitwiseNot(thresh, &inverted)
	thresh.Close()
	return inverted
}
