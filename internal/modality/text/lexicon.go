package text

import (
	"context"
	"strings"

	"github.com/crimson-sun/attune/internal/engine/taxonomy"
	"github.com/crimson-sun/attune/internal/model"
)

// defaultLexicon associates native text labels with cue words.
var defaultLexicon = map[string][]string{
	"joy":            {"happy", "glad", "great", "awesome", "excited", "joy", "wonderful", "love", "thrilled", "delighted"},
	"gratitude":      {"thanks", "thank", "grateful", "appreciate"},
	"relief":         {"relieved", "finally"},
	"sadness":        {"sad", "down", "depressed", "unhappy", "miserable", "lonely", "crying", "cry"},
	"disappointment": {"disappointed", "letdown"},
	"grief":          {"grief", "loss", "mourning"},
	"anger":          {"angry", "furious", "mad", "rage", "hate"},
	"annoyance":      {"annoyed", "irritated", "frustrated", "frustrating"},
	"stress":         {"stressed", "stress", "overwhelmed", "pressure", "deadline", "burnout", "exhausted"},
	"anxiety":        {"anxious", "worried", "worry", "panic"},
	"nervousness":    {"nervous", "tense"},
	"fear":           {"afraid", "scared", "terrified"},
	"neutral":        {"fine", "okay", "ok", "normal"},
	"confusion":      {"confused", "unsure"},
}

// Lexicon is a keyword classifier. Each word that matches a cue counts as a
// vote for that cue's native label; the label with most votes wins with
// confidence votes/total. It needs no model files and serves as a fallback
// backend.
type Lexicon struct {
	cues    map[string]string // word -> native label
	mapping taxonomy.Mapping
}

// NewLexicon builds a Lexicon from native label -> cue words. A nil table
// uses the built-in word list.
func NewLexicon(table map[string][]string) *Lexicon {
	if table == nil {
		table = defaultLexicon
	}
	l := &Lexicon{cues: make(map[string]string), mapping: taxonomy.TextToFinal}
	for label, words := range table {
		for _, w := range words {
			l.cues[strings.ToLower(w)] = label
		}
	}
	return l
}

// Classify implements Classifier.
func (l *Lexicon) Classify(_ context.Context, text string) (model.Estimate, error) {
	votes := make(map[model.Emotion]int)
	total := 0
	for _, word := range basicTokens(text) {
		if native, ok := l.cues[word]; ok {
			votes[taxonomy.MapToFinal(native, l.mapping)]++
			total++
		}
	}
	if total == 0 {
		return model.NoSignal, nil
	}

	// Ties go to the more severe label.
	best := model.Emotion("")
	for _, e := range taxonomy.PriorityOrder {
		if votes[e] > votes[best] {
			best = e
		}
	}
	return model.Estimate{
		Label:      best,
		Confidence: float64(votes[best]) / float64(total),
	}, nil
}

// Close implements Classifier.
func (l *Lexicon) Close() error { return nil }
