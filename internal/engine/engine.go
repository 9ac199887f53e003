package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/attune/internal/engine/fusion"
	"github.com/crimson-sun/attune/internal/engine/recommend"
	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/modality/face"
	"github.com/crimson-sun/attune/internal/modality/text"
)

// Engine orchestrates classify → fuse → recommend for one request.
// Safe for concurrent use if its classifiers are.
type Engine struct {
	text        text.Classifier
	face        face.Classifier
	recommender *recommend.Recommender
	now         func() time.Time
	newID       func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecommender replaces the default-catalog recommender.
func WithRecommender(r *recommend.Recommender) Option {
	return func(e *Engine) { e.recommender = r }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs sets the analysis ID generator.
func WithIDs(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New creates an Engine. Either classifier may be nil, in which case that
// modality always reports model.NoSignal.
func New(tc text.Classifier, fc face.Classifier, opts ...Option) *Engine {
	e := &Engine{
		text:        tc,
		face:        fc,
		recommender: recommend.New(recommend.DefaultCatalog()),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze classifies both modalities concurrently, fuses the results and
// builds a recommendation. Classifier failures degrade to model.NoSignal;
// only context cancellation is returned as an error.
func (e *Engine) Analyze(ctx context.Context, req model.Request) (model.Analysis, error) {
	var (
		textEst  = model.NoSignal
		faceEst  = model.NoSignal
		faceNote string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		textEst = e.classifyText(gctx, req.Text)
		return nil
	})
	if req.UseFace {
		g.Go(func() error {
			faceEst, faceNote = e.classifyFace(gctx, req.Face)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return model.Analysis{}, err
	}

	final, rule := fusion.FuseExplain(textEst, faceEst)
	rec := e.recommender.Recommend(final.Label, final.Confidence)

	slog.Debug("analysis fused",
		"text", textEst.Label, "text_confidence", textEst.Confidence,
		"face", faceEst.Label, "face_confidence", faceEst.Confidence,
		"final", final.Label, "confidence", final.Confidence, "rule", rule)

	return model.Analysis{
		ID:             e.newID(),
		Timestamp:      e.now(),
		Text:           textEst,
		Face:           faceEst,
		Final:          final,
		Rule:           string(rule),
		Recommendation: rec,
		UsedFace:       req.UseFace,
		FaceNote:       faceNote,
	}, nil
}

// AnalyzeBatch analyzes requests in order, stopping at the first error.
func (e *Engine) AnalyzeBatch(ctx context.Context, reqs []model.Request) ([]model.Analysis, error) {
	out := make([]model.Analysis, 0, len(reqs))
	for _, req := range reqs {
		a, err := e.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Fuse exposes fusion for callers that bring their own estimates.
func (e *Engine) Fuse(textEst, faceEst model.Estimate) (model.Estimate, fusion.Rule) {
	return fusion.FuseExplain(textEst, faceEst)
}

// Recommend exposes the engine's recommender.
func (e *Engine) Recommend(label model.Emotion, confidence float64) model.Recommendation {
	return e.recommender.Recommend(label, confidence)
}

// Ready checks the classifiers that depend on external services. Local
// classifiers are always ready.
func (e *Engine) Ready(ctx context.Context) error {
	if p, ok := e.face.(face.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (e *Engine) classifyText(ctx context.Context, s string) model.Estimate {
	if e.text == nil || strings.TrimSpace(s) == "" {
		return model.NoSignal
	}
	est, err := e.text.Classify(ctx, s)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("text classification failed", "error", err)
		}
		return model.NoSignal
	}
	return sanitize(est)
}

func (e *Engine) classifyFace(ctx context.Context, f *model.Frame) (model.Estimate, string) {
	if e.face == nil {
		return model.NoSignal, "Face analysis unavailable"
	}
	if f == nil {
		return model.NoSignal, "No face detected in camera frame"
	}
	est, err := e.face.Classify(ctx, f)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("face classification failed", "error", err)
		}
		return model.NoSignal, fmt.Sprintf("Face analysis failed: %v", err)
	}
	est = sanitize(est)
	if est.IsNoSignal() {
		return est, "No face detected in camera frame"
	}
	return est, fmt.Sprintf("Face detected and analyzed: %s (%.1f%% confidence)", est.Label, est.Confidence*100)
}

// sanitize keeps collaborator output inside the taxonomy and [0, 1].
func sanitize(est model.Estimate) model.Estimate {
	if !est.Label.Valid() {
		est.Label = model.ParseEmotion(string(est.Label))
	}
	est.Confidence = model.ClampConfidence(est.Confidence)
	return est
}
