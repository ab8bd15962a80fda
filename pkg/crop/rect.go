// Package crop is the normalized crop-rectangle model and the fit geometry
// used to size the editing canvas.
package crop

import (
	"errors"
	"image"
	"math"
)

// DefaultMinSize is the smallest normalized width or height a crop may have.
const DefaultMinSize = 0.05

// FullscreenEpsilon is the tolerance for treating a rect as uncropped.
const FullscreenEpsilon = 1e-4

// ErrDegenerate is returned when a crop resolves to zero area.
var ErrDegenerate = errors.New("degenerate crop region")

// Rect is a crop region in normalized image coordinates, origin top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Full is the uncropped rect.
var Full = Rect{X: 0, Y: 0, W: 1, H: 1}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Normalize resolves negative sizes by moving the origin.
func Normalize(r Rect) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Clamp normalizes r and keeps it inside the unit square. Sizes are limited
// to [minSize, 1]; overflow is fixed by shifting the origin, never by
// shrinking further.
func Clamp(r Rect, minSize float64) Rect {
	r = Normalize(r)
	minSize = math.Min(1, math.Max(minSize, 0))

	r.W = math.Max(minSize, math.Min(1, nanTo(r.W, 1)))
	r.H = math.Max(minSize, math.Min(1, nanTo(r.H, 1)))
	r.X = clamp01(nanTo(r.X, 0))
	r.Y = clamp01(nanTo(r.Y, 0))

	if r.X+r.W > 1 {
		r.X = math.Max(0, 1-r.W)
	}
	if r.Y+r.H > 1 {
		r.Y = math.Max(0, 1-r.H)
	}
	return r
}

func nanTo(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

// IsFullscreen reports whether r covers the whole image within epsilon.
func IsFullscreen(r Rect, epsilon float64) bool {
	return math.Abs(r.X) < epsilon &&
		math.Abs(r.Y) < epsilon &&
		math.Abs(r.W-1) < epsilon &&
		math.Abs(r.H-1) < epsilon
}

// IsFull is IsFullscreen with the default epsilon.
func IsFull(r Rect) bool {
	return IsFullscreen(r, FullscreenEpsilon)
}

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// PixelRect maps r onto a width x height image. Each of x, y, width and
// height is rounded on its own, then the rectangle is clipped to the image.
func PixelRect(r Rect, width, height int) (image.Rectangle, error) {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, ErrDegenerate
	}
	x := int(math.Round(r.X * float64(width)))
	y := int(math.Round(r.Y * float64(height)))
	w := int(math.Round(r.W * float64(width)))
	h := int(math.Round(r.H * float64(height)))

	px := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, width, height))
	if px.Empty() {
		return image.Rectangle{}, ErrDegenerate
	}
	return px, nil
}
