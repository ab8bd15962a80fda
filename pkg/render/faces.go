package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
)

// FaceOptions tunes the pigo cascade run.
type FaceOptions struct {
	MinQuality   float32 // Default: 10.0 (detections below are dropped)
	IoUThreshold float64 // Default: 0.2 (clustering)
	ScaleFactor  float64 // Default: 1.1
	ShiftFactor  float64 // Default: 0.1 (stride)
	MinSizePct   int     // Default: 1 (percent of the short side)
	MaxDimension int     // Default: 1024 (images are downscaled before detection)
}

// DefaultFaceOptions returns the detection defaults.
func DefaultFaceOptions() FaceOptions {
	return FaceOptions{
		MinQuality:   10.0,
		IoUThreshold: 0.2,
		ScaleFactor:  1.1,
		ShiftFactor:  0.1,
		MinSizePct:   1,
		MaxDimension: 1024,
	}
}

// Face is one detected face in source pixels.
type Face struct {
	Rect    image.Rectangle
	Quality float32
}

// FaceDetector finds faces with a pigo cascade. A nil *FaceDetector is
// valid and finds nothing.
type FaceDetector struct {
	classifier *pigo.Pigo
	opts       FaceOptions
}

// LoadFaceDetector reads a pigo cascade file from path.
func LoadFaceDetector(path string, opts FaceOptions) (*FaceDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFaceDetector(data, opts)
}

// NewFaceDetector unpacks a pigo cascade. Zero option fields take their
// defaults.
func NewFaceDetector(model []byte, opts FaceOptions) (*FaceDetector, error) {
	classifier, err := unpackCascade(model)
	if err != nil {
		return nil, err
	}

	d := DefaultFaceOptions()
	if opts.MinQuality > 0 {
		d.MinQuality = opts.MinQuality
	}
	if opts.IoUThreshold > 0 {
		d.IoUThreshold = opts.IoUThreshold
	}
	if opts.ScaleFactor > 1 {
		d.ScaleFactor = opts.ScaleFactor
	}
	if opts.ShiftFactor > 0 {
		d.ShiftFactor = opts.ShiftFactor
	}
	if opts.MinSizePct > 0 {
		d.MinSizePct = opts.MinSizePct
	}
	if opts.MaxDimension > 0 {
		d.MaxDimension = opts.MaxDimension
	}
	return &FaceDetector{classifier: classifier, opts: d}, nil
}

// unpackCascade turns a panic from Unpack on a truncated model into an
// error.
func unpackCascade(model []byte) (classifier *pigo.Pigo, err error) {
	defer func() {
		if r := recover(); r != nil {
			classifier, err = nil, fmt.Errorf("unpack face model: corrupt cascade (%v)", r)
		}
	}()
	classifier, err = pigo.NewPigo().Unpack(model)
	if err != nil {
		return nil, fmt.Errorf("unpack face model: %w", err)
	}
	return classifier, nil
}

// Detect returns the faces in img, best first. It returns ctx.Err() once
// ctx is done; the cascade itself keeps running to completion.
func (d *FaceDetector) Detect(ctx context.Context, img image.Image) ([]Face, error) {
	if d == nil {
		return nil, checkContext(ctx)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}

	resultChan := make(chan []Face, 1)
	go func() {
		resultChan <- d.detect(img)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case faces := <-resultChan:
		return faces, nil
	}
}

func (d *FaceDetector) detect(img image.Image) []Face {
	b := img.Bounds()
	scale := 1.0
	small := imaging.Clone(img)
	if long := max(b.Dx(), b.Dy()); long > d.opts.MaxDimension {
		small = imaging.Fit(img, d.opts.MaxDimension, d.opts.MaxDimension, imaging.Linear)
		scale = float64(long) / float64(max(small.Bounds().Dx(), small.Bounds().Dy()))
	}

	cols, rows := small.Bounds().Dx(), small.Bounds().Dy()
	short := min(cols, rows)
	params := pigo.CascadeParams{
		MinSize:     max(20, short*d.opts.MinSizePct/100),
		MaxSize:     max(20, short),
		ShiftFactor: d.opts.ShiftFactor,
		ScaleFactor: d.opts.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(small),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0)
	dets = d.classifier.ClusterDetections(dets, d.opts.IoUThreshold)

	var faces []Face
	for _, det := range dets {
		if det.Q < d.opts.MinQuality {
			continue
		}
		half := float64(det.Scale) / 2
		r := image.Rect(
			int((float64(det.Col)-half)*scale),
			int((float64(det.Row)-half)*scale),
			int((float64(det.Col)+half)*scale),
			int((float64(det.Row)+half)*scale),
		).Add(b.Min).Intersect(b)
		if r.Empty() {
			continue
		}
		faces = append(faces, Face{Rect: r, Quality: det.Q})
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].Quality > faces[j].Quality })
	return faces
}

// pullToFaces moves window, keeping its size, so it covers the faces. All
// faces are kept when their union fits; otherwise only the best face is.
// A face larger than the window gets the window centered on it. The
// result stays inside bounds.
func pullToFaces(window image.Rectangle, faces []Face, bounds image.Rectangle) image.Rectangle {
	if len(faces) == 0 {
		return window
	}
	target := faces[0].Rect
	for _, f := range faces[1:] {
		target = target.Union(f.Rect)
	}
	if target.Dx() > window.Dx() || target.Dy() > window.Dy() {
		target = faces[0].Rect
	}

	w, h := window.Dx(), window.Dy()
	x := cover(window.Min.X, w, target.Min.X, target.Max.X)
	y := cover(window.Min.Y, h, target.Min.Y, target.Max.Y)
	x = min(max(x, bounds.Min.X), bounds.Max.X-w)
	y = min(max(y, bounds.Min.Y), bounds.Max.Y-h)
	return image.Rect(x, y, x+w, y+h)
}

// cover returns the start of a span of length n nearest to start that
// contains [lo, hi), or the span centered on it when it is too long.
func cover(start, n, lo, hi int) int {
	if hi-lo > n {
		return (lo+hi)/2 - n/2
	}
	return min(max(start, hi-n), lo)
}
