package crop

// Option is one entry of the crop-ratio picker. A zero Ratio means the
// crop is unconstrained.
type Option struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Ratio float64 `json:"ratio,omitempty"`
}

// Options lists the crop presets offered by the editor.
var Options = []Option{
	{ID: "original", Label: "Original"},
	{ID: "free", Label: "Free"},
	{ID: "square", Label: "1:1", Ratio: 1},
	{ID: "four-five", Label: "4:5", Ratio: 4.0 / 5.0},
	{ID: "sixteen-nine", Label: "16:9", Ratio: 16.0 / 9.0},
	{ID: "nine-sixteen", Label: "9:16", Ratio: 9.0 / 16.0},
}

// OptionByRatio finds the preset for ratio, falling back to "original".
func OptionByRatio(ratio float64) Option {
	if ratio > 0 {
		for _, o := range Options {
			if o.Ratio == ratio {
				return o
			}
		}
	}
	return Options[0]
}

// OptionByID looks a preset up by its identifier.
func OptionByID(id string) (Option, bool) {
	for _, o := range Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Anchor names the handle being dragged.
type Anchor string

// Drag handles: corners, edges and the whole rect.
const (
	AnchorTopLeft     Anchor = "tl"
	AnchorTopRight    Anchor = "tr"
	AnchorBottomLeft  Anchor = "bl"
	AnchorBottomRight Anchor = "br"
	AnchorLeft        Anchor = "l"
	AnchorRight       Anchor = "r"
	AnchorTop         Anchor = "t"
	AnchorBottom      Anchor = "b"
	AnchorMove        Anchor = "move"
)

// ApplyDelta moves the edges attached to anchor by (dx, dy), in normalized
// units, and clamps the result. Unknown anchors leave r unchanged apart from
// clamping.
func ApplyDelta(r Rect, dx, dy float64, anchor Anchor, minSize float64) Rect {
	next := r
	switch anchor {
	case AnchorMove:
		next.X += dx
		next.Y += dy
	case AnchorLeft:
		next.X += dx
		next.W -= dx
	case AnchorRight:
		next.W += dx
	case AnchorTop:
		next.Y += dy
		next.H -= dy
	case AnchorBottom:
		next.H += dy
	case AnchorTopLeft:
		next = Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - dx, H: r.H - dy}
	case AnchorTopRight:
		next = Rect{X: r.X, Y: r.Y + dy, W: r.W + dx, H: r.H - dy}
	case AnchorBottomLeft:
		next = Rect{X: r.X + dx, Y: r.Y, W: r.W - dx, H: r.H + dy}
	case AnchorBottomRight:
		next.W += dx
		next.H += dy
	}
	return Clamp(next, minSize)
}
