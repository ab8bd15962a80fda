// Package look defines the editable parameters of a grade (the "look"):
// the fourteen scalar adjustments, the eight-channel color mix and the
// intensity blend between the neutral look and a target look.
//
// Values coming from outside are never trusted. Every accessor clamps to
// the parameter's range and non-finite input falls back to the neutral
// value, so a Look can always be rendered.
package look

import (
	"encoding/json"
	"math"

	"github.com/dixieflatline76/halook/util/log"
)

// Key names one scalar adjustment.
type Key string

// Adjustment keys, in canonical order.
const (
	KeyExposure          Key = "exposure"
	KeyContrast          Key = "contrast"
	KeyHighlights        Key = "highlights"
	KeyShadows           Key = "shadows"
	KeySaturation        Key = "saturation"
	KeyVibrance          Key = "vibrance"
	KeyTemperature       Key = "temperature"
	KeyTint              Key = "tint"
	KeyMixerHue          Key = "mixerHue"
	KeyMixerSaturation   Key = "mixerSaturation"
	KeyMixerLuminance    Key = "mixerLuminance"
	KeyGradingShadows    Key = "gradingShadows"
	KeyGradingMidtones   Key = "gradingMidtones"
	KeyGradingHighlights Key = "gradingHighlights"
)

// Keys lists every adjustment key in canonical order.
var Keys = []Key{
	KeyExposure,
	KeyContrast,
	KeyHighlights,
	KeyShadows,
	KeySaturation,
	KeyVibrance,
	KeyTemperature,
	KeyTint,
	KeyMixerHue,
	KeyMixerSaturation,
	KeyMixerLuminance,
	KeyGradingShadows,
	KeyGradingMidtones,
	KeyGradingHighlights,
}

// Range describes the valid domain of one adjustment. Step is the slider
// granularity used by editing shells.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Neutral float64 `json:"neutral"`
}

var ranges = map[Key]Range{
	KeyExposure:          {Min: -2, Max: 2, Step: 0.1, Neutral: 0},
	KeyContrast:          {Min: 0.5, Max: 2, Step: 0.05, Neutral: 1},
	KeyHighlights:        {Min: -1, Max: 1, Step: 0.05, Neutral: 0},
	KeyShadows:           {Min: -1, Max: 1, Step: 0.05, Neutral: 0},
	KeySaturation:        {Min: 0.2, Max: 2, Step: 0.05, Neutral: 1},
	KeyVibrance:          {Min: -1, Max: 1, Step: 0.05, Neutral: 0},
	KeyTemperature:       {Min: -2, Max: 2, Step: 0.05, Neutral: 0},
	KeyTint:              {Min: -2, Max: 2, Step: 0.05, Neutral: 0},
	KeyMixerHue:          {Min: -0.5, Max: 0.5, Step: 0.01, Neutral: 0},
	KeyMixerSaturation:   {Min: -1, Max: 1, Step: 0.05, Neutral: 0},
	KeyMixerLuminance:    {Min: -0.5, Max: 0.5, Step: 0.02, Neutral: 0},
	KeyGradingShadows:    {Min: -0.5, Max: 0.5, Step: 0.02, Neutral: 0},
	KeyGradingMidtones:   {Min: -0.5, Max: 0.5, Step: 0.02, Neutral: 0},
	KeyGradingHighlights: {Min: -0.5, Max: 0.5, Step: 0.02, Neutral: 0},
}

// RangeOf returns the range for key.
func RangeOf(key Key) (Range, bool) {
	r, ok := ranges[key]
	return r, ok
}

// Clamp limits v to the key's range. NaN and infinities yield the neutral
// value. Unknown keys pass finite values through unchanged and map
// non-finite ones to 0.
func Clamp(key Key, v float64) float64 {
	r, ok := ranges[key]
	if !ok {
		if !isFinite(v) {
			return 0
		}
		return v
	}
	if !isFinite(v) {
		return r.Neutral
	}
	return math.Min(r.Max, math.Max(r.Min, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Adjustments is the record of scalar tone and color parameters.
type Adjustments struct {
	Exposure          float64 `json:"exposure"`
	Contrast          float64 `json:"contrast"`
	Highlights        float64 `json:"highlights"`
	Shadows           float64 `json:"shadows"`
	Saturation        float64 `json:"saturation"`
	Vibrance          float64 `json:"vibrance"`
	Temperature       float64 `json:"temperature"`
	Tint              float64 `json:"tint"`
	MixerHue          float64 `json:"mixerHue"`
	MixerSaturation   float64 `json:"mixerSaturation"`
	MixerLuminance    float64 `json:"mixerLuminance"`
	GradingShadows    float64 `json:"gradingShadows"`
	GradingMidtones   float64 `json:"gradingMidtones"`
	GradingHighlights float64 `json:"gradingHighlights"`
}

// Neutral returns the identity adjustments.
func Neutral() Adjustments {
	var a Adjustments
	for _, k := range Keys {
		*a.field(k) = ranges[k].Neutral
	}
	return a
}

func (a *Adjustments) field(key Key) *float64 {
	switch key {
	case KeyExposure:
		return &a.Exposure
	case KeyContrast:
		return &a.Contrast
	case KeyHighlights:
		return &a.Highlights
	case KeyShadows:
		return &a.Shadows
	case KeySaturation:
		return &a.Saturation
	case KeyVibrance:
		return &a.Vibrance
	case KeyTemperature:
		return &a.Temperature
	case KeyTint:
		return &a.Tint
	case KeyMixerHue:
		return &a.MixerHue
	case KeyMixerSaturation:
		return &a.MixerSaturation
	case KeyMixerLuminance:
		return &a.MixerLuminance
	case KeyGradingShadows:
		return &a.GradingShadows
	case KeyGradingMidtones:
		return &a.GradingMidtones
	case KeyGradingHighlights:
		return &a.GradingHighlights
	}
	return nil
}

// Get returns the raw value stored for key, or 0 for unknown keys.
func (a Adjustments) Get(key Key) float64 {
	if p := a.field(key); p != nil {
		return *p
	}
	return 0
}

// Set stores the clamped value for key. It reports false for unknown keys.
func (a *Adjustments) Set(key Key, v float64) bool {
	p := a.field(key)
	if p == nil {
		return false
	}
	*p = Clamp(key, v)
	return true
}

// Normalize returns a copy with every field clamped to its range.
func (a Adjustments) Normalize() Adjustments {
	out := a
	for _, k := range Keys {
		p := out.field(k)
		v := Clamp(k, *p)
		if v != *p {
			log.Debugf("look: %s %v out of range, using %v", k, *p, v)
		}
		*p = v
	}
	return out
}

// IsNeutral reports whether a equals the identity adjustments.
func (a Adjustments) IsNeutral() bool {
	return a == Neutral()
}

// UnmarshalJSON fills absent fields with their neutral values.
func (a *Adjustments) UnmarshalJSON(data []byte) error {
	type plain Adjustments
	v := plain(Neutral())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Adjustments(v)
	return nil
}
