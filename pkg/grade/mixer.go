package grade

import (
	"math"

	cm "github.com/dixieflatline76/halook/pkg/colormodel"
	"github.com/dixieflatline76/halook/pkg/look"
)

// ChannelCenters are the hue bucket centers in turns, red first.
var ChannelCenters = [look.NumChannels]float64{
	0.0,   // red
	0.083, // orange
	0.167, // yellow
	0.333, // green
	0.5,   // aqua
	0.667, // blue
	0.792, // purple
	0.917, // magenta
}

// hueDistance is the circular distance between two hues, at most 0.5.
func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, 1-d)
}

// channelInfluence is a Gaussian-like falloff around a bucket center.
func channelInfluence(hue, center, width, sharpness float64) float64 {
	n := hueDistance(hue, center) / math.Max(width, 0.0001)
	return math.Exp(-n * n * sharpness)
}

// globalMix shifts hue, scales saturation and offsets lightness for every
// pixel alike. Input and output are sRGB-encoded.
func globalMix(c cm.RGB, hue, sat, lum float64) cm.RGB {
	hsl := cm.RGBToHSL(c)
	hsl.H = cm.Fract(hsl.H + hue)
	hsl.S = cm.Clamp(hsl.S*(1+sat), 0, 1)
	hsl.L = cm.Clamp(hsl.L+lum, 0, 1)
	return cm.HSLToRGB(hsl)
}

// channelMix accumulates the weighted deltas of all eight buckets and
// applies them once.
func channelMix(c cm.RGB, mix *look.ColorMix, t Tuning) cm.RGB {
	hsl := cm.RGBToHSL(c)
	hueShift, satFactor, lumOffset := 0.0, 1.0, 0.0
	for i, center := range ChannelCenters {
		w := channelInfluence(hsl.H, center, t.ChannelWidth, t.ChannelSharpness)
		hueShift += mix.Hue[i] * w
		satFactor *= 1 + mix.Saturation[i]*w
		lumOffset += mix.Luminance[i] * w
	}
	hsl.H = cm.Fract(hsl.H + hueShift)
	hsl.S = cm.Clamp(hsl.S*satFactor, 0, 1)
	hsl.L = cm.Clamp(hsl.L+lumOffset, 0, 1)
	return cm.HSLToRGB(hsl)
}
