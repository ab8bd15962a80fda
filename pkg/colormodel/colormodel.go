// Package colormodel holds the stateless color math shared by every grading
// stage: sRGB transfer functions, luminance, HSL conversion and the small
// shader-style helpers (smoothstep, mix, fract).
//
// All values are float64 in nominal [0, 1]. Intermediate results may leave
// that range; callers clamp only where a stage says so.
package colormodel

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a color triple. Alpha travels separately and is never touched here.
type RGB struct {
	R, G, B float64
}

// Gray returns an achromatic triple.
func Gray(v float64) RGB {
	return RGB{v, v, v}
}

// Scale multiplies every channel by k.
func (c RGB) Scale(k float64) RGB {
	return RGB{c.R * k, c.G * k, c.B * k}
}

// Add returns c + o.
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns c - o.
func (c RGB) Sub(o RGB) RGB {
	return RGB{c.R - o.R, c.G - o.G, c.B - o.B}
}

// Length is the Euclidean norm of the triple.
func (c RGB) Length() float64 {
	return math.Sqrt(c.R*c.R + c.G*c.G + c.B*c.B)
}

// Clamp01 clamps every channel to [0, 1].
func (c RGB) Clamp01() RGB {
	return RGB{Clamp(c.R, 0, 1), Clamp(c.G, 0, 1), Clamp(c.B, 0, 1)}
}

// BT.709 luma weights.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Luminance returns the BT.709 weighted sum used by every tonal mask.
func Luminance(c RGB) float64 {
	return LumaR*c.R + LumaG*c.G + LumaB*c.B
}

// SrgbToLinear decodes one sRGB-encoded channel to linear light.
func SrgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSrgb encodes one linear channel. Negative input encodes to 0.
func LinearToSrgb(v float64) float64 {
	if v <= 0.0031308 {
		if v < 0 {
			return 0
		}
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// ToLinear decodes an sRGB triple.
func ToLinear(c RGB) RGB {
	return RGB{SrgbToLinear(c.R), SrgbToLinear(c.G), SrgbToLinear(c.B)}
}

// ToSrgb encodes a linear triple.
func ToSrgb(c RGB) RGB {
	return RGB{LinearToSrgb(c.R), LinearToSrgb(c.G), LinearToSrgb(c.B)}
}

// HSL is hue (fraction of a turn, [0,1)), saturation and lightness.
type HSL struct {
	H, S, L float64
}

// achromaticEpsilon is the chroma below which a color has no defined hue.
const achromaticEpsilon = 1e-5

// RGBToHSL converts an sRGB-encoded triple to HSL.
func RGBToHSL(c RGB) HSL {
	maxC := math.Max(math.Max(c.R, c.G), c.B)
	minC := math.Min(math.Min(c.R, c.G), c.B)
	if maxC-minC <= achromaticEpsilon {
		return HSL{H: 0, S: 0, L: 0.5 * (maxC + minC)}
	}
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return HSL{H: Fract(h / 360), S: s, L: l}
}

// HSLToRGB converts back to an sRGB-encoded triple. Hue wraps; saturation
// and lightness are clamped to [0, 1].
func HSLToRGB(v HSL) RGB {
	s := Clamp(v.S, 0, 1)
	l := Clamp(v.L, 0, 1)
	if s < achromaticEpsilon {
		return Gray(l)
	}
	c := colorful.Hsl(Fract(v.H)*360, s, l)
	return RGB{c.R, c.G, c.B}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smoothstep is the Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix linearly interpolates between a and b.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MixRGB interpolates each channel.
func MixRGB(a, b RGB, t float64) RGB {
	return RGB{Mix(a.R, b.R, t), Mix(a.G, b.G, t), Mix(a.B, b.B, t)}
}

// Fract returns the fractional part of v, always in [0, 1).
func Fract(v float64) float64 {
	f := v - math.Floor(v)
	if f >= 1 {
		return 0
	}
	return f
}
