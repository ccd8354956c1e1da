package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// enhance runs a contrast (CLAHE on luminance) and unsharp-mask pass over a
// zoomed capture. Small, low-contrast UI text benefits from both before OCR
// and matching.
func enhance(img *image.RGBA) (*image.RGBA, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer mat.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(mat, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(channels[0], &equalized)
	equalized.CopyTo(&channels[0])

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	contrasted := gocv.NewMat()
	defer contrasted.Close()
	gocv.CvtColor(merged, &contrasted, gocv.ColorLabToBGR)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(contrasted, &blurred, image.Pt(0, 0), 3, 3, gocv.BorderDefault)

	sharpened := gocv.NewMat()
	defer sharpened.Close()
	gocv.AddWeighted(contrasted, 1.5, blurred, -0.5, 0, &sharpened)

	out, err := sharpened.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat to image: %w", err)
	}
	return toRGBA(out), nil
}
