package grade

import (
	"math"

	cm "github.com/dixieflatline76/halook/pkg/colormodel"
)

// The tone stages below run in linear light, in the order Shader.Tone calls
// them. Each one is the identity at its neutral amount.

func exposure(c cm.RGB, ev float64) cm.RGB {
	return c.Scale(math.Exp2(ev))
}

func contrast(c cm.RGB, k, pivot float64) cm.RGB {
	p := cm.Gray(pivot)
	return c.Sub(p).Scale(k).Add(p)
}

func highlights(c cm.RGB, amount, lo, hi float64) cm.RGB {
	mask := cm.Smoothstep(lo, hi, cm.Luminance(c))
	return cm.MixRGB(c, c.Scale(math.Exp2(amount)), mask)
}

func shadows(c cm.RGB, amount, lo, hi float64) cm.RGB {
	mask := 1 - cm.Smoothstep(lo, hi, cm.Luminance(c))
	return cm.MixRGB(c, c.Scale(math.Exp2(amount)), mask)
}

func saturation(c cm.RGB, s float64) cm.RGB {
	return cm.MixRGB(cm.Gray(cm.Luminance(c)), c, s)
}

// vibrance boosts chroma more where there is little of it.
func vibrance(c cm.RGB, amount, lo, hi float64) cm.RGB {
	grey := cm.Gray(cm.Luminance(c))
	delta := c.Sub(grey)
	influence := 1 - cm.Smoothstep(lo, hi, delta.Length())
	return grey.Add(delta.Scale(1 + amount*influence))
}

func temperatureTint(c cm.RGB, temp, tint float64, t Tuning) cm.RGB {
	temp = cm.Clamp(temp, -2, 2)
	tint = cm.Clamp(tint, -2, 2)
	c.R += temp * t.TemperatureGain
	c.B -= temp * t.TemperatureGain
	c.G += tint * t.TintGreenGain
	c.R -= tint * t.TintRedBlueGain
	c.B -= tint * t.TintRedBlueGain
	return c
}

// splitTone adds a uniform bias per luminance band.
func splitTone(c cm.RGB, sh, mid, hl float64, t Tuning) cm.RGB {
	l := cm.Luminance(c)
	shadowMask := 1 - cm.Smoothstep(t.GradeShadowLow, t.GradeShadowHigh, l)
	highlightMask := cm.Smoothstep(t.GradeHighlightLow, t.GradeHighlightHigh, l)
	midMask := cm.Clamp(1-math.Abs(2*(l-0.5)), 0, 1)
	bias := sh*shadowMask + mid*midMask + hl*highlightMask
	return c.Add(cm.Gray(bias))
}

// rollOff soft-clips blown highlights with a Reinhard shoulder.
func rollOff(c cm.RGB, lo, hi float64) cm.RGB {
	mask := cm.Smoothstep(lo, hi, cm.Luminance(c))
	if mask == 0 {
		return c
	}
	mapped := cm.RGB{
		R: c.R / (1 + c.R/2),
		G: c.G / (1 + c.G/2),
		B: c.B / (1 + c.B/2),
	}
	return cm.MixRGB(c, mapped, mask)
}
