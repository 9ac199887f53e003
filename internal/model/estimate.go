package model

// Estimate is a (label, confidence) pair produced by a modality classifier
// or by fusion. Confidence is in [0, 1].
type Estimate struct {
	Label      Emotion `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NoSignal is what a modality reports when it has nothing to say: no text,
// no face in frame, or a classifier failure.
var NoSignal = Estimate{Label: Neutral, Confidence: 0}

// IsNoSignal reports whether e is the NoSignal sentinel.
func (e Estimate) IsNoSignal() bool {
	return e == NoSignal
}

// ClampConfidence limits c to [0, 1]. NaN becomes 0.
func ClampConfidence(c float64) float64 {
	switch {
	case c != c:
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// Recommendation is the task suggestion derived from a fused estimate.
type Recommendation struct {
	Emotion    Emotion  `json:"emotion"`
	Confidence float64  `json:"confidence"`
	Level      Level    `json:"recommendation_level"`
	Tasks      []string `json:"tasks"`
}
