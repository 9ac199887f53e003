package attune

import "time"

// Estimate is one emotion label with a confidence in [0, 1].
type Estimate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Recommendation is the task advice for a fused estimate.
type Recommendation struct {
	Emotion    string   `json:"emotion"`
	Confidence float64  `json:"confidence"`
	Level      string   `json:"recommendation_level"` // soft, low, moderate or high
	Tasks      []string `json:"tasks"`
}

// Analysis is the result of one Analyze call.
type Analysis struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Text           Estimate       `json:"text"`
	Face           Estimate       `json:"face"`
	Final          Estimate       `json:"final"`
	FusionRule     string         `json:"fusion_rule"`
	Recommendation Recommendation `json:"recommendation"`
	UsedFace       bool           `json:"used_face"`
	FaceNote       string         `json:"face_note,omitempty"`
}

// Face is a face signal produced outside attune. Set Dominant and Scores
// from a face emotion model (scores on a 0-100 scale), or Cues from facial
// measurements.
type Face struct {
	Dominant string
	Scores   map[string]float64
	Cues     *Cues
	Image    []byte // forwarded to remote face services
}

// Cues are facial measurements taken on a cropped face.
type Cues struct {
	Smiles            int
	SmileStrength     float64
	Eyes              int
	EyeBrightness     float64
	Brightness        float64
	Contrast          float64
	EdgeDensity       float64
	GradientIntensity float64
}
