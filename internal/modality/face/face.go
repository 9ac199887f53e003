// Package face turns face signals into emotion estimates. Capturing frames
// and measuring them happens upstream; this package only interprets what it
// is handed.
package face

import (
	"context"

	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

// Classifier estimates emotion from a face frame. A nil frame yields
// model.NoSignal.
type Classifier interface {
	Classify(ctx context.Context, f *model.Frame) (model.Estimate, error)
}

// Pinger is implemented by classifiers that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScoreClassifier reads the dominant label and its 0-100 score from an
// upstream expression model.
type ScoreClassifier struct {
	mapping taxonomy.Mapping
}

// NewScore creates a ScoreClassifier using the facial expression mapping.
func NewScore() *ScoreClassifier {
	return &ScoreClassifier{mapping: taxonomy.FaceToFinal}
}

// Classify implements Classifier. Frames without a dominant label carry no
// signal.
func (s *ScoreClassifier) Classify(_ context.Context, f *model.Frame) (model.Estimate, error) {
	if f == nil || f.Dominant == "" {
		return model.NoSignal, nil
	}
	return fromScores(f.Dominant, f.Scores, s.mapping), nil
}

func fromScores(dominant string, scores map[string]float64, m taxonomy.Mapping) model.Estimate {
	return model.Estimate{
		Label:      taxonomy.MapToFinal(dominant, m),
		Confidence: model.ClampConfidence(scores[dominant] / 100),
	}
}
