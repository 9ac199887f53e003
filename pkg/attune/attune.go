package attune

import (
	"context"
	"fmt"

	"github.com/crimson-sun/attune/internal/engine"
	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/modality/face"
	"github.com/crimson-sun/attune/internal/modality/text"
	"github.com/crimson-sun/attune/internal/model"
)

// Attune is an emotion analysis engine. Safe for concurrent use.
type Attune struct {
	engine *engine.Engine
	text   text.Classifier
}

// New creates an Attune instance. Loading the ONNX text model is expensive;
// create once and reuse.
func New(opts ...Option) (*Attune, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var tc text.Classifier
	if o.staticText {
		tc = text.NewLexicon(nil)
	} else {
		c, err := text.NewONNX(text.PathsIn(o.modelDir), o.poolSize)
		if err != nil {
			return nil, fmt.Errorf("attune: %w", err)
		}
		tc = c
	}

	var fc face.Classifier = customFace{o.face}
	if o.face == nil {
		var err error
		fc, err = face.New(o.faceBackend, face.Settings{Endpoint: o.faceEndpoint, Token: o.faceToken})
		if err != nil {
			tc.Close()
			return nil, fmt.Errorf("attune: %w", err)
		}
	}
	return &Attune{engine: engine.New(tc, fc), text: tc}, nil
}

// Analyze estimates emotion from text and an optional face. A nil face
// means the face was not used.
func (a *Attune) Analyze(text string, f *Face) (Analysis, error) {
	return a.AnalyzeContext(context.Background(), text, f)
}

// AnalyzeContext is Analyze with a context for cancellation and remote calls.
func (a *Attune) AnalyzeContext(ctx context.Context, text string, f *Face) (Analysis, error) {
	req := model.Request{Text: text}
	if f != nil {
		req.UseFace = true
		req.Face = toFrame(f)
	}
	res, err := a.engine.Analyze(ctx, req)
	if err != nil {
		return Analysis{}, err
	}
	return analysisFromModel(res), nil
}

// Fuse combines a text and a face estimate and reports the deciding rule.
// Labels are matched case-insensitively; unknown labels count as neutral.
func (a *Attune) Fuse(text, face Estimate) (Estimate, string) {
	fused, rule := a.engine.Fuse(toEstimate(text), toEstimate(face))
	return fromEstimate(fused), string(rule)
}

// Recommend returns the task recommendation for an emotion and confidence.
// Unknown emotions are treated as neutral.
func (a *Attune) Recommend(emotion string, confidence float64) Recommendation {
	est := toEstimate(Estimate{Label: emotion, Confidence: confidence})
	return fromRecommendation(a.engine.Recommend(est.Label, est.Confidence))
}

// Close releases model resources.
func (a *Attune) Close() error {
	return a.text.Close()
}

// customFace adapts a public FaceClassifier to the engine.
type customFace struct{ fc FaceClassifier }

func (c customFace) Classify(ctx context.Context, fr *model.Frame) (model.Estimate, error) {
	if fr == nil {
		return model.NoSignal, nil
	}
	est, err := c.fc.ClassifyFace(ctx, fromFrame(fr))
	if err != nil {
		return model.NoSignal, err
	}
	return toEstimate(est), nil
}

func toEstimate(e Estimate) model.Estimate {
	return model.Estimate{
		Label:      taxonomy.MapToFinal(e.Label, taxonomy.Identity),
		Confidence: model.ClampConfidence(e.Confidence),
	}
}

func fromEstimate(e model.Estimate) Estimate {
	return Estimate{Label: string(e.Label), Confidence: e.Confidence}
}

func fromRecommendation(r model.Recommendation) Recommendation {
	return Recommendation{
		Emotion:    string(r.Emotion),
		Confidence: r.Confidence,
		Level:      string(r.Level),
		Tasks:      r.Tasks,
	}
}

func analysisFromModel(a model.Analysis) Analysis {
	return Analysis{
		ID:             a.ID,
		Timestamp:      a.Timestamp,
		Text:           fromEstimate(a.Text),
		Face:           fromEstimate(a.Face),
		Final:          fromEstimate(a.Final),
		FusionRule:     a.Rule,
		Recommendation: fromRecommendation(a.Recommendation),
		UsedFace:       a.UsedFace,
		FaceNote:       a.FaceNote,
	}
}

func toFrame(f *Face) *model.Frame {
	fr := &model.Frame{Dominant: f.Dominant, Scores: f.Scores, Image: f.Image}
	if f.Cues != nil {
		c := model.Cues(*f.Cues)
		fr.Cues = &c
	}
	return fr
}

func fromFrame(fr *model.Frame) Face {
	f := Face{Dominant: fr.Dominant, Scores: fr.Scores, Image: fr.Image}
	if fr.Cues != nil {
		c := Cues(*fr.Cues)
		f.Cues = &c
	}
	return f
}
