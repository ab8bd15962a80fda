package look

import (
	"encoding/json"
	"math"
)

// Channel is one of the eight hue buckets of the color mixer.
type Channel int

// Hue buckets, ordered by hue starting at red.
const (
	Red Channel = iota
	Orange
	Yellow
	Green
	Aqua
	Blue
	Purple
	Magenta

	NumChannels = 8
)

var channelNames = [NumChannels]string{
	"red", "orange", "yellow", "green", "aqua", "blue", "purple", "magenta",
}

// Channels lists the buckets in order.
var Channels = [NumChannels]Channel{Red, Orange, Yellow, Green, Aqua, Blue, Purple, Magenta}

func (c Channel) String() string {
	if !c.valid() {
		return "unknown"
	}
	return channelNames[c]
}

// ParseChannel maps a lowercase channel name to its Channel.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// MixField selects the hue, saturation or luminance row of a ColorMix.
type MixField int

const (
	FieldHue MixField = iota
	FieldSaturation
	FieldLuminance
)

// Per-channel ranges share the limits of the global mixer sliders.
func (f MixField) key() Key {
	switch f {
	case FieldSaturation:
		return KeyMixerSaturation
	case FieldLuminance:
		return KeyMixerLuminance
	default:
		return KeyMixerHue
	}
}

// ClampMix clamps a per-channel value. Non-finite input yields 0.
func ClampMix(field MixField, v float64) float64 {
	r := ranges[field.key()]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Min(r.Max, math.Max(r.Min, v))
}

// ColorMix holds per-channel hue, saturation and luminance deltas. The fixed
// arrays guarantee all eight channels are present; the zero value is the
// neutral mix.
type ColorMix struct {
	Hue        [NumChannels]float64
	Saturation [NumChannels]float64
	Luminance  [NumChannels]float64
}

func (m *ColorMix) row(field MixField) *[NumChannels]float64 {
	switch field {
	case FieldSaturation:
		return &m.Saturation
	case FieldLuminance:
		return &m.Luminance
	default:
		return &m.Hue
	}
}

func (c Channel) valid() bool {
	return c >= 0 && int(c) < NumChannels
}

// Get returns the value of one channel in one row, or 0 for an unknown
// channel.
func (m ColorMix) Get(field MixField, c Channel) float64 {
	if !c.valid() {
		return 0
	}
	return m.row(field)[c]
}

// Set stores the clamped value of one channel in one row. It reports false
// for an unknown channel.
func (m *ColorMix) Set(field MixField, c Channel, v float64) bool {
	if !c.valid() {
		return false
	}
	m.row(field)[c] = ClampMix(field, v)
	return true
}

// Normalize returns a copy with every entry clamped.
func (m ColorMix) Normalize() ColorMix {
	var out ColorMix
	for _, f := range []MixField{FieldHue, FieldSaturation, FieldLuminance} {
		src, dst := m.row(f), out.row(f)
		for i := range src {
			dst[i] = ClampMix(f, src[i])
		}
	}
	return out
}

// IsNeutral reports whether every entry is zero.
func (m ColorMix) IsNeutral() bool {
	return m == ColorMix{}
}

type colorMixJSON struct {
	Hue        map[string]float64 `json:"hue"`
	Saturation map[string]float64 `json:"saturation"`
	Luminance  map[string]float64 `json:"luminance"`
}

func rowToMap(row [NumChannels]float64) map[string]float64 {
	out := make(map[string]float64, NumChannels)
	for i, v := range row {
		out[channelNames[i]] = v
	}
	return out
}

func mapToRow(in map[string]float64) [NumChannels]float64 {
	var row [NumChannels]float64
	for name, v := range in {
		if c, ok := ParseChannel(name); ok {
			row[c] = v
		}
	}
	return row
}

// MarshalJSON writes the mix as three maps keyed by channel name.
func (m ColorMix) MarshalJSON() ([]byte, error) {
	return json.Marshal(colorMixJSON{
		Hue:        rowToMap(m.Hue),
		Saturation: rowToMap(m.Saturation),
		Luminance:  rowToMap(m.Luminance),
	})
}

// UnmarshalJSON reads three channel-keyed maps. Missing channels are 0 and
// unknown names are ignored.
func (m *ColorMix) UnmarshalJSON(data []byte) error {
	var raw colorMixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Hue = mapToRow(raw.Hue)
	m.Saturation = mapToRow(raw.Saturation)
	m.Luminance = mapToRow(raw.Luminance)
	return nil
}
