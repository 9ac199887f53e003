package taxonomy

import (
	"maps"
	"strings"

	"github.com/crimson-sun/attune/internal/model"
)

// Mapping translates an upstream classifier's native labels into the final
// emotion labels. A Mapping is immutable once built.
type Mapping struct {
	name  string
	table map[string]model.Emotion
}

// NewMapping builds a Mapping from native label → final label pairs.
// Keys are normalized (trimmed, lowercased); the input map is copied.
func NewMapping(name string, pairs map[string]model.Emotion) Mapping {
	table := make(map[string]model.Emotion, len(pairs))
	for k, v := range pairs {
		table[normalize(k)] = v
	}
	return Mapping{name: name, table: table}
}

// Name identifies the mapping in logs.
func (m Mapping) Name() string { return m.name }

// Lookup returns the final label for native and whether it was mapped.
func (m Mapping) Lookup(native string) (model.Emotion, bool) {
	e, ok := m.table[normalize(native)]
	return e, ok
}

func (m Mapping) entries() map[string]model.Emotion {
	return maps.Clone(m.table)
}

// MapToFinal returns the final label for native, or Neutral when the table
// has no entry for it.
func MapToFinal(native string, m Mapping) model.Emotion {
	if e, ok := m.Lookup(native); ok {
		return e
	}
	return model.Neutral
}

// PriorityOrder ranks the final labels, most safety-critical first.
var PriorityOrder = [...]model.Emotion{
	model.Stressed,
	model.Angry,
	model.Sad,
	model.Neutral,
	model.Happy,
}

// Rank returns e's position in PriorityOrder. Lower is more severe.
func Rank(e model.Emotion) (int, bool) {
	for i, p := range PriorityOrder {
		if p == e {
			return i, true
		}
	}
	return -1, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
