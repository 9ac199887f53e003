package recommend

import (
	"slices"

	"github.com/crimson-sun/attune/internal/model"
)

// Catalog maps an emotion and tier to an ordered task list.
// A Catalog is read-only after construction.
type Catalog struct {
	entries map[model.Emotion]map[model.Tier][]string
}

// NewCatalog copies entries into a new Catalog.
func NewCatalog(entries map[model.Emotion]map[model.Tier][]string) Catalog {
	c := Catalog{entries: make(map[model.Emotion]map[model.Tier][]string, len(entries))}
	for e, tiers := range entries {
		row := make(map[model.Tier][]string, len(tiers))
		for tier, tasks := range tiers {
			row[tier] = slices.Clone(tasks)
		}
		c.entries[e] = row
	}
	return c
}

var defaultCatalog = NewCatalog(map[model.Emotion]map[model.Tier][]string{
	model.Happy: {
		model.TierModerate: {"Routine productive tasks", "Light Collaborative work"},
		model.TierHigh:     {"Creative tasks", "Team Meetings"},
	},
	model.Neutral: {
		model.TierModerate: {"Routine Tasks"},
		model.TierHigh:     {"Regular work items", "Documentation"},
	},
	model.Sad: {
		model.TierModerate: {"Low Pressure tasks", "Supportive activities"},
		model.TierHigh:     {"Very light Individual tasks", "Supportive activities"},
	},
	model.Stressed: {
		model.TierModerate: {"Reduce Workload", "Work on low-pressure tasks"},
		model.TierHigh:     {"Take Short Break", "Reschedule demanding tasks"},
	},
	model.Angry: {
		model.TierModerate: {"Independent work"},
		model.TierHigh:     {"Cool-down break", "Avoid meetings"},
	},
})

// DefaultCatalog returns the built-in task catalog.
func DefaultCatalog() Catalog { return defaultCatalog }

// Tasks returns the task list for e at tier. An emotion without an entry
// uses the neutral row; a missing tier uses the moderate tier of the same
// row, and an empty list if that is missing too. The result is a copy and
// never nil.
func (c Catalog) Tasks(e model.Emotion, tier model.Tier) []string {
	row, ok := c.entries[e]
	if !ok {
		row = c.entries[model.Neutral]
	}
	if tasks, ok := row[tier]; ok {
		return slices.Clone(tasks)
	}
	if tasks, ok := row[model.TierModerate]; ok {
		return slices.Clone(tasks)
	}
	return []string{}
}

// Has reports whether the catalog has an explicit entry for e at tier.
func (c Catalog) Has(e model.Emotion, tier model.Tier) bool {
	_, ok := c.entries[e][tier]
	return ok
}
