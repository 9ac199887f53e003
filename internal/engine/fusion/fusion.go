// Package fusion combines the text and face estimates into one.
package fusion

import (
	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

// LowConf is the confidence below which neither modality is trusted to name
// a specific emotion.
const LowConf = 0.4

// Rule names the step of the decision chain that produced a result.
type Rule string

const (
	RuleAgreement      Rule = "agreement"
	RuleStressOverride Rule = "stress_override"
	RuleLowConfidence  Rule = "low_confidence"
	RulePriority       Rule = "priority"
	RuleConfidence     Rule = "confidence"
)

// Fuse combines a text and a face estimate into a single estimate.
func Fuse(text, face model.Estimate) model.Estimate {
	est, _ := FuseExplain(text, face)
	return est
}

// FuseExplain is Fuse, also returning the rule that decided. Rules are tried
// in order and the first match wins:
//
//  1. agreement: same label, max confidence
//  2. stress_override: either side stressed, max confidence
//  3. low_confidence: both below LowConf, neutral with max confidence
//  4. priority: the more severe label wins with its own confidence
//  5. confidence: higher confidence wins, text on a tie
func FuseExplain(text, face model.Estimate) (model.Estimate, Rule) {
	top := max(text.Confidence, face.Confidence)

	if text.Label == face.Label {
		return model.Estimate{Label: text.Label, Confidence: top}, RuleAgreement
	}

	// Stress is surfaced whenever either side sees it, however weakly.
	if text.Label == model.Stressed || face.Label == model.Stressed {
		return model.Estimate{Label: model.Stressed, Confidence: top}, RuleStressOverride
	}

	if text.Confidence < LowConf && face.Confidence < LowConf {
		return model.Estimate{Label: model.Neutral, Confidence: top}, RuleLowConfidence
	}

	textRank, textOK := taxonomy.Rank(text.Label)
	faceRank, faceOK := taxonomy.Rank(face.Label)
	if textOK && faceOK {
		switch {
		case textRank < faceRank:
			return text, RulePriority
		case faceRank < textRank:
			return face, RulePriority
		}
	}

	if face.Confidence > text.Confidence {
		return face, RuleConfidence
	}
	return text, RuleConfidence
}
