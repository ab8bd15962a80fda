package preset

import (
	"math"
	"strconv"
	"strings"

	"github.com/dixieflatline76/halook/pkg/look"
)

// XMPSettings holds the Lightroom develop sliders the engine understands.
// Basic sliders use Lightroom units: exposure in EV, the rest in
// [-100, 100]. Missing sliders are zero.
type XMPSettings struct {
	Exposure2012   float64
	Contrast2012   float64
	Highlights2012 float64
	Shadows2012    float64
	Saturation     float64
	Vibrance       float64

	// HSL panel, indexed by look.Channel.
	Hue       [look.NumChannels]float64
	Sat       [look.NumChannels]float64
	Luminance [look.NumChannels]float64
}

type xmpField func(s *XMPSettings, v float64)

// xmpFields maps lowercased local names (without the crs: prefix) to the
// slider they set.
var xmpFields = map[string]xmpField{}

func init() {
	basic := []struct {
		names []string
		set   xmpField
	}{
		{[]string{"exposure2012", "exposure"}, func(s *XMPSettings, v float64) { s.Exposure2012 = v }},
		{[]string{"contrast2012", "contrast"}, func(s *XMPSettings, v float64) { s.Contrast2012 = v }},
		{[]string{"highlights2012", "highlights"}, func(s *XMPSettings, v float64) { s.Highlights2012 = v }},
		{[]string{"shadows2012", "shadows"}, func(s *XMPSettings, v float64) { s.Shadows2012 = v }},
		{[]string{"saturation"}, func(s *XMPSettings, v float64) { s.Saturation = v }},
		{[]string{"vibrance"}, func(s *XMPSettings, v float64) { s.Vibrance = v }},
	}
	for _, b := range basic {
		for _, n := range b.names {
			xmpFields[n] = b.set
		}
	}

	for _, c := range look.Channels {
		c := c
		name := c.String()
		xmpFields["hueadjustment"+name] = func(s *XMPSettings, v float64) { s.Hue[c] = v }
		xmpFields["saturationadjustment"+name] = func(s *XMPSettings, v float64) { s.Sat[c] = v }
		xmpFields["luminanceadjustment"+name] = func(s *XMPSettings, v float64) { s.Luminance[c] = v }
	}
}

// localName lowercases key and strips any namespace prefix.
func localName(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// settingsBuilder collects slider values and counts how many were set.
type settingsBuilder struct {
	s XMPSettings
	n int
}

// set applies raw to key if key is a known slider and raw is a finite
// number. Quotes and a trailing '>' are ignored.
func (b *settingsBuilder) set(key, raw string) bool {
	field, ok := xmpFields[localName(key)]
	if !ok {
		return false
	}
	raw = strings.Trim(strings.TrimSpace(raw), `"'>`)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	field(&b.s, v)
	b.n++
	return true
}

// MapXMP converts Lightroom sliders to a clamped look. Exposure is taken
// as EV; contrast and saturation become 1 + v/100; highlights, shadows and
// vibrance become v/100. HSL hue and luminance are divided by 200 and HSL
// saturation by 100.
func MapXMP(s XMPSettings) look.Look {
	l := look.NeutralLook()
	a := &l.Adjustments
	a.Set(look.KeyExposure, s.Exposure2012)
	a.Set(look.KeyContrast, 1+s.Contrast2012/100)
	a.Set(look.KeyHighlights, s.Highlights2012/100)
	a.Set(look.KeyShadows, s.Shadows2012/100)
	a.Set(look.KeySaturation, 1+s.Saturation/100)
	a.Set(look.KeyVibrance, s.Vibrance/100)

	for _, c := range look.Channels {
		l.ColorMix.Set(look.FieldHue, c, s.Hue[c]/200)
		l.ColorMix.Set(look.FieldSaturation, c, s.Sat[c]/100)
		l.ColorMix.Set(look.FieldLuminance, c, s.Luminance[c]/200)
	}
	return l
}
