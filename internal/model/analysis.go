package model

import "time"

// Request is one analysis input. Either field may be empty.
type Request struct {
	Text    string `json:"text"`
	UseFace bool   `json:"use_face"`
	Face    *Frame `json:"face,omitempty"`
}

// Frame is the face signal handed over by the capture side. Exactly one of
// Scores or Cues is normally set. A nil *Frame means no face was detected.
type Frame struct {
	// Dominant is the native label picked by an upstream face model,
	// with Scores holding per-label scores on a 0-100 scale.
	Dominant string             `json:"dominant_emotion,omitempty"`
	Scores   map[string]float64 `json:"emotion,omitempty"`

	// Cues are facial statistics measured on the cropped face.
	Cues *Cues `json:"cues,omitempty"`

	// Image is an encoded face crop forwarded to remote analyzers.
	Image []byte `json:"image,omitempty"`
}

// Cues holds the measurements the cue classifier works from.
type Cues struct {
	Smiles            int     `json:"smiles"`
	SmileStrength     float64 `json:"smile_strength"`
	Eyes              int     `json:"eyes"`
	EyeBrightness     float64 `json:"eye_brightness"`
	Brightness        float64 `json:"brightness"`
	Contrast          float64 `json:"contrast"`
	EdgeDensity       float64 `json:"edge_density"`
	GradientIntensity float64 `json:"gradient_intensity"`
}

// Analysis is the full result of one request: inputs per modality, the fused
// estimate, and the recommendation built from it.
type Analysis struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Text           Estimate       `json:"text,omitzero"`
	Face           Estimate       `json:"face,omitzero"`
	Final          Estimate       `json:"final"`
	Rule           string         `json:"fusion_rule,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	UsedFace       bool           `json:"used_face"`
	FaceNote       string         `json:"face_note,omitempty"`
}
