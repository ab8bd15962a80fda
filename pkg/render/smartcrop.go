package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/util/log"
	"github.com/muesli/smartcrop"
)

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// SuggestCrop finds the most interesting region of img with the given
// aspect ratio and returns it normalized. A non-positive ratio returns the
// full frame.
func SuggestCrop(ctx context.Context, img image.Image, ratio float64) (crop.Rect, error) {
	return SuggestCropWithFaces(ctx, img, ratio, nil)
}

// SuggestCropWithFaces is SuggestCrop with the window pulled over any faces
// faces finds. A nil detector, or one that finds nothing, leaves the
// smartcrop choice unchanged.
func SuggestCropWithFaces(ctx context.Context, img image.Image, ratio float64, faces *FaceDetector) (crop.Rect, error) {
	if err := checkContext(ctx); err != nil {
		return crop.Rect{}, err
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return crop.Full, nil
	}

	b := img.Bounds()
	if b.Empty() {
		return crop.Rect{}, &GeometryError{Rect: crop.Full, Err: crop.ErrDegenerate}
	}
	fit := crop.FitWithinBounds(crop.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, ratio)
	w := max(1, int(math.Round(fit.Width)))
	h := max(1, int(math.Round(fit.Height)))

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: imaging.Lanczos})

	// Use a goroutine and channel to make FindBestCrop context-aware.
	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		best, err := analyzer.FindBestCrop(img, w, h)
		resultChan <- cropResult{crop: best, err: err}
	}()

	select {
	case <-ctx.Done():
		return crop.Rect{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return crop.Rect{}, fmt.Errorf("finding best crop: %w", result.err)
		}
		best := result.crop
		found, err := faces.Detect(ctx, img)
		if err != nil {
			return crop.Rect{}, err
		}
		if len(found) > 0 {
			log.Debugf("Face boost: %d faces, best %v (Q %.1f)", len(found), found[0].Rect, found[0].Quality)
			best = pullToFaces(best, found, b)
		}
		px := best.Sub(b.Min)
		r := crop.Rect{
			X: float64(px.Min.X) / float64(b.Dx()),
			Y: float64(px.Min.Y) / float64(b.Dy()),
			W: float64(px.Dx()) / float64(b.Dx()),
			H: float64(px.Dy()) / float64(b.Dy()),
		}
		return crop.Clamp(r, crop.DefaultMinSize), nil
	}
}
