package look

import (
	"encoding/json"
	"math"
)

// Reserved carries preset fields the engine does not render yet. They are
// kept so a look survives a round trip through the engine unchanged.
type Reserved struct {
	Grain float64 `json:"grain,omitempty"`
	Noise float64 `json:"noise,omitempty"`
}

// Look is a complete grade: scalar adjustments plus the color mix.
type Look struct {
	Adjustments Adjustments `json:"adjustments"`
	ColorMix    ColorMix    `json:"colorMix"`
	Reserved    Reserved    `json:"reserved,omitempty"`
}

// NeutralLook returns the identity look.
func NeutralLook() Look {
	return Look{Adjustments: Neutral()}
}

// UnmarshalJSON starts from the neutral look, so a missing adjustments
// object leaves the adjustments neutral.
func (l *Look) UnmarshalJSON(data []byte) error {
	type plain Look
	v := plain(NeutralLook())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Look(v)
	return nil
}

// Normalize clamps both parts of the look.
func (l Look) Normalize() Look {
	l.Adjustments = l.Adjustments.Normalize()
	l.ColorMix = l.ColorMix.Normalize()
	return l
}

// At returns the look blended toward neutral by intensity.
func (l Look) At(intensity float64) Look {
	return Look{
		Adjustments: ApplyIntensity(l.Adjustments, intensity),
		ColorMix:    ApplyColorMixIntensity(l.ColorMix, intensity),
		Reserved:    l.Reserved,
	}
}

// ClampIntensity limits t to [0, 1]. Non-finite input means full strength.
func ClampIntensity(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 1
	}
	return math.Min(1, math.Max(0, t))
}

// lerp is written as a weighted sum so both endpoints are reproduced
// exactly: t=0 gives base and t=1 gives target bit for bit.
func lerp(base, target, t float64) float64 {
	return base*(1-t) + target*t
}

// ApplyIntensity interpolates every adjustment between neutral and adj.
func ApplyIntensity(adj Adjustments, intensity float64) Adjustments {
	t := ClampIntensity(intensity)
	target := adj.Normalize()
	var out Adjustments
	for _, k := range Keys {
		n := ranges[k].Neutral
		*out.field(k) = Clamp(k, lerp(n, target.Get(k), t))
	}
	return out
}

// ApplyColorMixIntensity interpolates every channel toward the all-zero mix.
func ApplyColorMixIntensity(mix ColorMix, intensity float64) ColorMix {
	t := ClampIntensity(intensity)
	target := mix.Normalize()
	var out ColorMix
	for i := 0; i < NumChannels; i++ {
		out.Hue[i] = lerp(0, target.Hue[i], t)
		out.Saturation[i] = lerp(0, target.Saturation[i], t)
		out.Luminance[i] = lerp(0, target.Luminance[i], t)
	}
	return out
}
