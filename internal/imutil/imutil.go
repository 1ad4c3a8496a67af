// Package imutil provides shared gocv helpers for image IO and ROI preparation.
package imutil

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// ReadGrayscale reads an image file as a single-channel grayscale Mat.
//
// On some OpenCV builds IMRead fails to open files whose paths contain
// non-ASCII characters (common for Cyrillic item names), so when the direct
// read comes back empty we fall back to decoding the raw bytes via IMDecode.
func ReadGrayscale(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if !img.Empty() {
		return img, nil
	}
	img.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("read template %s: %w", path, err)
	}
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("read template %s: empty file", path)
	}
	decoded, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode template %s: %w", path, err)
	}
	if decoded.Empty() {
		decoded.Close()
		return gocv.NewMat(), fmt.Errorf("decode template %s: unsupported format", path)
	}
	return decoded, nil
}

// ToGray converts a BGR or RGBA frame to grayscale. Single-channel input is
// cloned unchanged.
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	gray := gocv.NewMat()
	if src.Channels() == 4 {
		gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)
	} else {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}
	return gray
}

// PrepareGrayROI converts a frame to grayscale and applies local contrast
// normalization (CLAHE) plus a light blur to suppress UI glow artifacts.
// This is the shared preprocessing in front of every template match.
func PrepareGrayROI(src gocv.Mat) gocv.Mat {
	gray := ToGray(src)

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	equalized := gocv.NewMat()
	clahe.Apply(gray, &equalized)
	clahe.Close()
	gray.Close()

	blurred := gocv.NewMat()
	gocv.GaussianBlur(equalized, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)
	equalized.Close()

	return blurred
}

// FromImage converts a decoded image.Image into a BGR Mat.
func FromImage(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image: %w", err)
	}
	return mat, nil
}

// CloseAll closes every Mat in the slice. Convenience for pyramid teardown.
func CloseAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
