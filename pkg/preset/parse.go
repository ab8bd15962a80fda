package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/dixieflatline76/halook/util/log"
	"golang.org/x/net/html"
)

// ParsePayload turns a preset file into a look. It tries, in order: JSON in
// the engine's own shape, JSON keyed by Lightroom slider names, XMP markup
// (slider attributes or elements), and "key = value" lines. When nothing
// matches, the look is derived from seed.
func ParsePayload(payload []byte, seed string) look.Look {
	if l, ok := parseJSON(payload); ok {
		return l
	}
	if l, ok := parseMarkup(payload); ok {
		return l
	}
	if l, ok := parseLines(payload); ok {
		return l
	}
	log.Debugf("preset: no recognised settings, deriving look from seed %q", seed)
	return FromSeed(seed)
}

func parseJSON(payload []byte) (look.Look, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return look.Look{}, false
	}

	if _, ok := fields["adjustments"]; ok {
		var l look.Look
		if err := json.Unmarshal(payload, &l); err != nil {
			log.Debugf("preset: malformed adjustments: %v", err)
			return look.Look{}, false
		}
		return l.Normalize(), true
	}

	var b settingsBuilder
	for k, raw := range fields {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		switch v := v.(type) {
		case float64, string:
			b.set(k, fmt.Sprint(v))
		}
	}
	if b.n == 0 {
		return look.Look{}, false
	}
	return MapXMP(b.s), true
}

// parseMarkup reads slider values from XMP. Both the attribute form
// (crs:Exposure2012="+0.50") and the element form
// (<crs:Exposure2012>+0.50</crs:Exposure2012>) are accepted.
func parseMarkup(payload []byte) (look.Look, bool) {
	if !bytes.ContainsRune(payload, '<') {
		return look.Look{}, false
	}

	var b settingsBuilder
	var pending string
	z := html.NewTokenizer(bytes.NewReader(payload))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if b.n == 0 {
				return look.Look{}, false
			}
			return MapXMP(b.s), true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			pending = string(name)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				b.set(string(key), string(val))
			}
		case html.TextToken:
			if pending != "" {
				b.set(pending, string(z.Text()))
			}
			pending = ""
		case html.EndTagToken:
			pending = ""
		}
	}
}

func parseLines(payload []byte) (look.Look, bool) {
	var b settingsBuilder
	for _, line := range strings.Split(string(payload), "\n") {
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		b.set(key, val)
	}
	if b.n == 0 {
		return look.Look{}, false
	}
	return MapXMP(b.s), true
}

var seedOffsets = []struct {
	key    look.Key
	offset float64
}{
	{look.KeyExposure, 0.13},
	{look.KeyContrast, 0.35},
	{look.KeyHighlights, 0.57},
	{look.KeyShadows, 0.79},
	{look.KeySaturation, 0.91},
	{look.KeyVibrance, 1.11},
}

// FromSeed derives a stable look from a string, used for presets without
// usable settings. Only the six basic tone adjustments are set.
func FromSeed(seed string) look.Look {
	hash := 0
	for _, u := range utf16.Encode([]rune(seed)) {
		hash = (hash*31 + int(u)) % 100000
	}

	l := look.NeutralLook()
	for _, so := range seedOffsets {
		r, _ := look.RangeOf(so.key)
		t := (math.Sin(float64(hash)+so.offset) + 1) / 2
		l.Adjustments.Set(so.key, r.Min+t*(r.Max-r.Min))
	}
	return l
}
