package taxonomy

import "github.com/crimson-sun/attune/internal/model"

// TextToFinal covers the label set of the text emotion model.
// "ammusement" is kept alongside the correct spelling because the training
// data ships with it.
var TextToFinal = NewMapping("text", map[string]model.Emotion{
	"joy":        model.Happy,
	"ammusement": model.Happy,
	"amusement":  model.Happy,
	"love":       model.Happy,
	"excitement": model.Happy,
	"pride":      model.Happy,
	"gratitude":  model.Happy,
	"relief":     model.Happy,

	"neutral":     model.Neutral,
	"realization": model.Neutral,
	"confusion":   model.Neutral,
	"curiosity":   model.Neutral,
	"surprise":    model.Neutral,

	"sadness":        model.Sad,
	"disappointment": model.Sad,
	"grief":          model.Sad,
	"remorse":        model.Sad,
	"embarrassment":  model.Sad,

	"anger":       model.Angry,
	"annoyance":   model.Angry,
	"disapproval": model.Angry,

	"stress":      model.Stressed,
	"nervousness": model.Stressed,
	"fear":        model.Stressed,
	"anxiety":     model.Stressed,
})

// FaceToFinal covers the seven-class facial expression vocabulary.
var FaceToFinal = NewMapping("face", map[string]model.Emotion{
	"happy":    model.Happy,
	"neutral":  model.Neutral,
	"sad":      model.Sad,
	"angry":    model.Angry,
	"fear":     model.Stressed,
	"disgust":  model.Stressed,
	"surprise": model.Neutral,
})

// Identity maps each final label to itself, for classifiers that already
// speak the final vocabulary.
var Identity = NewMapping("identity", map[string]model.Emotion{
	"happy":    model.Happy,
	"sad":      model.Sad,
	"angry":    model.Angry,
	"stressed": model.Stressed,
	"neutral":  model.Neutral,
})

// ByName returns a built-in mapping by its name.
func ByName(name string) (Mapping, bool) {
	switch normalize(name) {
	case "text":
		return TextToFinal, true
	case "face":
		return FaceToFinal, true
	case "identity":
		return Identity, true
	}
	return Mapping{}, false
}
