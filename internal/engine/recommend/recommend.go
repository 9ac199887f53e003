// Package recommend turns a fused estimate into a tiered task suggestion.
package recommend

import "github.com/crimson-sun/attune/internal/model"

const (
	// StressSoft is the lower bound of the soft-stress band.
	StressSoft = 0.35
	// ModerateConf is the boundary between low and moderate recommendations.
	ModerateConf = 0.6
	// HighConf is the boundary between moderate and high recommendations,
	// and the upper bound of the soft-stress band.
	HighConf = 0.8
)

var softStressTasks = []string{
	"Reduce workload temporarily",
	"Focus on low-pressure tasks",
	"Take short breaks if needed",
}

// Recommender picks tasks from a Catalog.
type Recommender struct {
	catalog Catalog
}

// New creates a Recommender over catalog.
func New(catalog Catalog) *Recommender {
	return &Recommender{catalog: catalog}
}

// Recommend uses the default catalog.
func Recommend(e model.Emotion, confidence float64) model.Recommendation {
	return defaultRecommender.Recommend(e, confidence)
}

var defaultRecommender = New(DefaultCatalog())

// Recommend builds the recommendation for e at confidence. The returned
// Emotion and Confidence are always the inputs, unchanged.
func (r *Recommender) Recommend(e model.Emotion, confidence float64) model.Recommendation {
	rec := model.Recommendation{Emotion: e, Confidence: confidence}

	switch {
	case e == model.Stressed && confidence >= StressSoft && confidence <= HighConf:
		rec.Level = model.LevelSoft
		rec.Tasks = append([]string(nil), softStressTasks...)

	case confidence < ModerateConf:
		// Weak signals get neutral-safe tasks but keep the detected label.
		rec.Level = model.LevelLow
		rec.Tasks = r.catalog.Tasks(model.Neutral, model.TierModerate)

	default:
		tier := TierFor(confidence)
		rec.Level = model.Level(tier)
		rec.Tasks = r.catalog.Tasks(e, tier)
	}
	return rec
}

// TierFor returns the catalog tier for a confidence at or above ModerateConf.
func TierFor(confidence float64) model.Tier {
	if confidence < HighConf {
		return model.TierModerate
	}
	return model.TierHigh
}
