package crop

// Size is a width and height in any unit (display points or pixels).
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width / height, or 0 for an empty size.
func (s Size) Aspect() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width / s.Height
}

// FitWithinBounds returns the largest size with the given aspect ratio that
// fits inside container. Non-positive input yields the zero size.
func FitWithinBounds(container Size, aspect float64) Size {
	if container.Width <= 0 || container.Height <= 0 || aspect <= 0 {
		return Size{}
	}
	if container.Width/container.Height > aspect {
		return Size{Width: container.Height * aspect, Height: container.Height}
	}
	return Size{Width: container.Width, Height: container.Width / aspect}
}

// ForRatio reshapes prev to ratio around its own center. The side that is
// too long for the ratio shrinks; the other keeps its length. A ratio of 0
// or less (free or original mode) resets to the full frame.
//
// The ratio is taken in normalized units, matching how the editor stores
// crop presets.
func ForRatio(prev Rect, ratio float64) Rect {
	if ratio <= 0 {
		return Full
	}
	prev = Normalize(prev)
	if prev.W <= 0 || prev.H <= 0 {
		prev = Full
	}
	w, h := prev.W, prev.H
	if w/h > ratio {
		w = h * ratio
	} else {
		h = w / ratio
	}
	cx, cy := prev.Center()
	return Clamp(Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}, DefaultMinSize)
}

// CroppedAspect is the pixel aspect of the region r cuts from an image
// whose own aspect is imageAspect.
func CroppedAspect(imageAspect float64, r Rect) float64 {
	if r.H <= 0 {
		return imageAspect
	}
	return imageAspect * (r.W / r.H)
}

// TargetAspect picks the canvas aspect: an explicit ratio wins, otherwise
// the image aspect when uncropped or the cropped aspect when not.
func TargetAspect(imageAspect float64, r Rect, ratio *float64) float64 {
	if ratio != nil && *ratio > 0 {
		return *ratio
	}
	if IsFull(r) {
		return imageAspect
	}
	return CroppedAspect(imageAspect, r)
}

// DisplayClip maps r onto a fitted canvas, returning the visible region in
// canvas units. ok is false when r is the full frame and nothing is clipped.
func DisplayClip(r Rect, fitted Size) (clip Rect, ok bool) {
	if IsFull(r) {
		return Rect{}, false
	}
	return Rect{
		X: r.X * fitted.Width,
		Y: r.Y * fitted.Height,
		W: r.W * fitted.Width,
		H: r.H * fitted.Height,
	}, true
}
