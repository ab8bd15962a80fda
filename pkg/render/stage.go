package render

// Stage is a step of the render pipeline.
type Stage int

// Pipeline stages in the order a render passes through them.
const (
	StageIdle Stage = iota
	StageDecoding
	StageCropping
	StageShading
	StageDithering
	StageEncoding
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:      "idle",
	StageDecoding:  "decoding",
	StageCropping:  "cropping",
	StageShading:   "shading",
	StageDithering: "dithering",
	StageEncoding:  "encoding",
	StageDone:      "done",
	StageFailed:    "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// StageFunc observes stage transitions. It is called on the rendering
// goroutine and must not block.
type StageFunc func(Stage)
