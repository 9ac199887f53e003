package face

import (
	"context"

	"github.com/crimson-sun/attune/internal/model"
)

// CueClassifier applies fixed thresholds to facial measurements. It reads
// tension (edge density, vertical gradient), smiles, eye brightness and
// overall lighting, and always produces a specific label when cues are
// present.
type CueClassifier struct{}

// NewCues creates a CueClassifier.
func NewCues() *CueClassifier { return &CueClassifier{} }

// Classify implements Classifier.
func (CueClassifier) Classify(_ context.Context, f *model.Frame) (model.Estimate, error) {
	if f == nil || f.Cues == nil {
		return model.NoSignal, nil
	}
	return classifyCues(*f.Cues), nil
}

func classifyCues(c model.Cues) model.Estimate {
	smiling := c.Smiles > 0
	switch {
	case c.EdgeDensity > 0.15 && c.GradientIntensity > 15:
		if c.Contrast > 60 {
			return model.Estimate{Label: model.Angry, Confidence: 0.70}
		}
		return model.Estimate{Label: model.Stressed, Confidence: 0.68}

	case c.SmileStrength > 0.4 && c.EdgeDensity < 0.15:
		return model.Estimate{Label: model.Happy, Confidence: min(0.75+c.SmileStrength/8, 0.92)}

	case c.SmileStrength > 0.15 && c.EyeBrightness > 100 && c.EdgeDensity < 0.12:
		return model.Estimate{Label: model.Happy, Confidence: 0.68}

	case c.EdgeDensity > 0.12 && c.Brightness < 100 && !smiling:
		return model.Estimate{Label: model.Angry, Confidence: 0.65}

	case c.EdgeDensity > 0.13 && c.Brightness > 100:
		return model.Estimate{Label: model.Stressed, Confidence: 0.62}

	case c.Brightness < 95 && c.Contrast < 50 && c.EdgeDensity < 0.10:
		return model.Estimate{Label: model.Sad, Confidence: 0.60}

	case c.SmileStrength > 0.05 && c.Brightness > 135 && c.EdgeDensity < 0.10:
		return model.Estimate{Label: model.Happy, Confidence: 0.62}
	}
	return model.Estimate{Label: model.Neutral, Confidence: 0.55}
}
