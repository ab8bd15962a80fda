// Package grade is the per-pixel color transform: the tonal stage in linear
// light followed by the HSL color mixer in sRGB space, plus the ordered
// dither applied before quantization.
//
// A Shader is immutable once built and safe for concurrent use, so render
// workers share one per request.
package grade

import (
	cm "github.com/dixieflatline76/halook/pkg/colormodel"
	"github.com/dixieflatline76/halook/pkg/look"
)

// Shader evaluates one look for any number of pixels.
type Shader struct {
	adj     look.Adjustments
	mix     look.ColorMix
	tuning  Tuning
	neutral bool
}

// NewShader clamps the look and binds it to tuning.
func NewShader(l look.Look, tuning Tuning) *Shader {
	l = l.Normalize()
	return &Shader{
		adj:     l.Adjustments,
		mix:     l.ColorMix,
		tuning:  tuning,
		neutral: l.Adjustments.IsNeutral() && l.ColorMix.IsNeutral(),
	}
}

// Identity reports whether the shader leaves every pixel unchanged. The
// neutral look skips the highlight roll-off so an unedited image is
// reproduced exactly.
func (s *Shader) Identity() bool {
	return s.neutral
}

// Tuning returns the constants the shader was built with.
func (s *Shader) Tuning() Tuning {
	return s.tuning
}

// Tone runs the linear-light stages in their fixed order.
func (s *Shader) Tone(c cm.RGB) cm.RGB {
	a, t := &s.adj, &s.tuning
	c = exposure(c, a.Exposure)
	c = contrast(c, a.Contrast, t.ContrastPivot)
	c = highlights(c, a.Highlights, t.HighlightsLow, t.HighlightsHigh)
	c = shadows(c, a.Shadows, t.ShadowsLow, t.ShadowsHigh)
	c = saturation(c, a.Saturation)
	c = vibrance(c, a.Vibrance, t.VibranceLow, t.VibranceHigh)
	c = temperatureTint(c, a.Temperature, a.Tint, *t)
	c = splitTone(c, a.GradingShadows, a.GradingMidtones, a.GradingHighlights, *t)
	return rollOff(c, t.RollOffLow, t.RollOffHigh)
}

// Mix runs the global mixer and then the per-channel mixer on an
// sRGB-encoded color.
func (s *Shader) Mix(c cm.RGB) cm.RGB {
	c = globalMix(c, s.adj.MixerHue, s.adj.MixerSaturation, s.adj.MixerLuminance)
	return channelMix(c, &s.mix, s.tuning)
}

// Pixel transforms one sRGB-encoded color. The result is neither dithered
// nor clamped.
func (s *Shader) Pixel(c cm.RGB) cm.RGB {
	if s.neutral {
		return c
	}
	lin := s.Tone(cm.ToLinear(c))
	return s.Mix(cm.ToSrgb(lin))
}
