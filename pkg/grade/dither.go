package grade

import (
	"math"

	cm "github.com/dixieflatline76/halook/pkg/colormodel"
)

// hash12 is the classic sine hash of a 2D point into [0, 1).
func hash12(x, y float64) float64 {
	return cm.Fract(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// Dither returns the offset for source pixel (x, y), in
// [-amplitude/2, +amplitude/2). The hash is taken at the pixel center so
// the pattern is tied to the source image, not to the output buffer.
func (s *Shader) Dither(x, y int) float64 {
	return (hash12(float64(x)+0.5, float64(y)+0.5) - 0.5) * s.tuning.DitherAmplitude
}

// Finish adds the dither offset to every channel and clamps to [0, 1].
func Finish(c cm.RGB, offset float64) cm.RGB {
	return c.Add(cm.Gray(offset)).Clamp01()
}

// Quantize maps a [0, 1] channel to 8 bits with round-half-up.
func Quantize(v float64) uint8 {
	return uint8(cm.Clamp(v, 0, 1)*255 + 0.5)
}
