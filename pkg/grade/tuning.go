package grade

import (
	"encoding/json"
	"fmt"
)

// Tuning holds the thresholds and gains of the per-pixel transform. They are
// presentation constants, not invariants; DefaultTuning is what the editor
// ships with and config files may override any of them.
type Tuning struct {
	// Tone (linear light)
	ContrastPivot  float64 `json:"contrast_pivot"`  // Default: 0.18 (mid grey)
	HighlightsLow  float64 `json:"highlights_low"`  // Default: 0.4
	HighlightsHigh float64 `json:"highlights_high"` // Default: 1.0
	ShadowsLow     float64 `json:"shadows_low"`     // Default: 0.0
	ShadowsHigh    float64 `json:"shadows_high"`    // Default: 0.5
	VibranceLow    float64 `json:"vibrance_low"`    // Default: 0.0 (chroma length)
	VibranceHigh   float64 `json:"vibrance_high"`   // Default: 1.0

	// White balance
	TemperatureGain float64 `json:"temperature_gain"` // Default: 0.08 (R up, B down)
	TintGreenGain   float64 `json:"tint_green_gain"`  // Default: 0.06
	TintRedBlueGain float64 `json:"tint_rb_gain"`     // Default: 0.03

	// Split toning
	GradeShadowLow     float64 `json:"grade_shadow_low"`     // Default: 0.2
	GradeShadowHigh    float64 `json:"grade_shadow_high"`    // Default: 0.5
	GradeHighlightLow  float64 `json:"grade_highlight_low"`  // Default: 0.6
	GradeHighlightHigh float64 `json:"grade_highlight_high"` // Default: 0.9

	// Highlight roll-off
	RollOffLow  float64 `json:"rolloff_low"`  // Default: 0.8
	RollOffHigh float64 `json:"rolloff_high"` // Default: 1.6

	// Color mixer
	ChannelWidth     float64 `json:"channel_width"`     // Default: 0.18 turns
	ChannelSharpness float64 `json:"channel_sharpness"` // Default: 4.5

	// Output
	DitherAmplitude float64 `json:"dither_amplitude"` // Default: 1/255
}

// DefaultTuning returns the constants of the current shader revision.
func DefaultTuning() Tuning {
	return Tuning{
		ContrastPivot:      0.18,
		HighlightsLow:      0.4,
		HighlightsHigh:     1.0,
		ShadowsLow:         0.0,
		ShadowsHigh:        0.5,
		VibranceLow:        0.0,
		VibranceHigh:       1.0,
		TemperatureGain:    0.08,
		TintGreenGain:      0.06,
		TintRedBlueGain:    0.03,
		GradeShadowLow:     0.2,
		GradeShadowHigh:    0.5,
		GradeHighlightLow:  0.6,
		GradeHighlightHigh: 0.9,
		RollOffLow:         0.8,
		RollOffHigh:        1.6,
		ChannelWidth:       0.18,
		ChannelSharpness:   4.5,
		DitherAmplitude:    1.0 / 255.0,
	}
}

// TuningFrom decodes overrides from raw JSON on top of DefaultTuning.
// Empty input yields the defaults.
func TuningFrom(raw []byte) (Tuning, error) {
	t := DefaultTuning()
	if len(raw) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("decode tuning: %w", err)
	}
	return t, nil
}
