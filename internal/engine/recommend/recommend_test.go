package recommend

import (
	"slices"
	"testing"

	"github.com/crimson-sun/attune/internal/model"
)

func TestRecommend_SoftStressBand(t *testing.T) {
	tests := []struct {
		conf float64
		soft bool
	}{
		{0.34, false},
		{0.35, true},
		{0.5, true},
		{0.8, true},
		{0.81, false},
		{0.95, false},
	}

	for _, tt := range tests {
		rec := Recommend(model.Stressed, tt.conf)
		if got := rec.Level == model.LevelSoft; got != tt.soft {
			t.Errorf("Recommend(stressed, %v).Level = %s, soft=%v want %v", tt.conf, rec.Level, got, tt.soft)
		}
		if tt.soft && !slices.Equal(rec.Tasks, softStressTasks) {
			t.Errorf("Recommend(stressed, %v).Tasks = %v", tt.conf, rec.Tasks)
		}
	}
}

func TestRecommend_StressedOutsideBand(t *testing.T) {
	low := Recommend(model.Stressed, 0.2)
	if low.Level != model.LevelLow || !slices.Equal(low.Tasks, []string{"Routine Tasks"}) {
		t.Errorf("stressed 0.2 = %+v", low)
	}
	if low.Emotion != model.Stressed {
		t.Errorf("emotion = %s, want stressed", low.Emotion)
	}

	high := Recommend(model.Stressed, 0.9)
	want := []string{"Take Short Break", "Reschedule demanding tasks"}
	if high.Level != model.LevelHigh || !slices.Equal(high.Tasks, want) {
		t.Errorf("stressed 0.9 = %+v", high)
	}
}

func TestRecommend_ConfidenceTiers(t *testing.T) {
	tests := []struct {
		conf  float64
		level model.Level
	}{
		{0, model.LevelLow},
		{0.59, model.LevelLow},
		{0.6, model.LevelModerate},
		{0.79, model.LevelModerate},
		{0.8, model.LevelHigh},
		{1, model.LevelHigh},
	}

	for _, tt := range tests {
		if got := Recommend(model.Happy, tt.conf).Level; got != tt.level {
			t.Errorf("Recommend(happy, %v).Level = %s, want %s", tt.conf, got, tt.level)
		}
	}
}

func TestRecommend_LowKeepsLabel(t *testing.T) {
	rec := Recommend(model.Sad, 0.45)
	if rec.Emotion != model.Sad {
		t.Errorf("emotion = %s, want sad", rec.Emotion)
	}
	if rec.Confidence != 0.45 {
		t.Errorf("confidence = %v, want 0.45", rec.Confidence)
	}
	if !slices.Equal(rec.Tasks, []string{"Routine Tasks"}) {
		t.Errorf("tasks = %v, want neutral moderate", rec.Tasks)
	}
}

func TestRecommend_CatalogLookup(t *testing.T) {
	tests := []struct {
		e     model.Emotion
		conf  float64
		tasks []string
	}{
		{model.Happy, 0.9, []string{"Creative tasks", "Team Meetings"}},
		{model.Happy, 0.7, []string{"Routine productive tasks", "Light Collaborative work"}},
		{model.Neutral, 0.85, []string{"Regular work items", "Documentation"}},
		{model.Sad, 0.65, []string{"Low Pressure tasks", "Supportive activities"}},
		{model.Angry, 0.82, []string{"Cool-down break", "Avoid meetings"}},
		{model.Angry, 0.6, []string{"Independent work"}},
	}

	for _, tt := range tests {
		if got := Recommend(tt.e, tt.conf).Tasks; !slices.Equal(got, tt.tasks) {
			t.Errorf("Recommend(%s, %v).Tasks = %v, want %v", tt.e, tt.conf, got, tt.tasks)
		}
	}
}

func TestRecommend_UnknownLabelUsesNeutral(t *testing.T) {
	rec := Recommend(model.Emotion("bored"), 0.9)
	if rec.Emotion != "bored" {
		t.Errorf("emotion = %s, want bored", rec.Emotion)
	}
	if !slices.Equal(rec.Tasks, []string{"Regular work items", "Documentation"}) {
		t.Errorf("tasks = %v", rec.Tasks)
	}
}

func TestCatalog_TierFallbacks(t *testing.T) {
	c := NewCatalog(map[model.Emotion]map[model.Tier][]string{
		model.Happy:   {model.TierModerate: {"a"}},
		model.Sad:     {},
		model.Neutral: {model.TierModerate: {"n"}, model.TierHigh: {"N"}},
	})

	if got := c.Tasks(model.Happy, model.TierHigh); !slices.Equal(got, []string{"a"}) {
		t.Errorf("missing tier: got %v, want moderate tasks", got)
	}
	got := c.Tasks(model.Sad, model.TierHigh)
	if got == nil || len(got) != 0 {
		t.Errorf("empty row: got %#v, want empty non-nil", got)
	}
	if got := c.Tasks(model.Angry, model.TierHigh); !slices.Equal(got, []string{"N"}) {
		t.Errorf("missing label: got %v, want neutral high", got)
	}

	r := New(c)
	if rec := r.Recommend(model.Sad, 0.95); rec.Tasks == nil || rec.Level != model.LevelHigh {
		t.Errorf("Recommend on empty row = %+v", rec)
	}
}

func TestCatalog_Completeness(t *testing.T) {
	c := DefaultCatalog()
	for _, e := range model.Emotions {
		for _, tier := range []model.Tier{model.TierModerate, model.TierHigh} {
			if !c.Has(e, tier) {
				t.Errorf("catalog missing %s/%s", e, tier)
			}
			if len(c.Tasks(e, tier)) == 0 {
				t.Errorf("catalog %s/%s is empty", e, tier)
			}
		}
	}
}

func TestCatalog_TasksAreCopies(t *testing.T) {
	rec := Recommend(model.Happy, 0.9)
	rec.Tasks[0] = "changed"
	if got := Recommend(model.Happy, 0.9).Tasks[0]; got != "Creative tasks" {
		t.Fatalf("catalog mutated through result: %q", got)
	}

	soft := Recommend(model.Stressed, 0.5)
	soft.Tasks[0] = "changed"
	if got := Recommend(model.Stressed, 0.5).Tasks[0]; got != "Reduce workload temporarily" {
		t.Fatalf("soft list mutated through result: %q", got)
	}
}

func TestRecommend_LevelAlwaysKnown(t *testing.T) {
	valid := map[model.Level]bool{
		model.LevelSoft: true, model.LevelLow: true,
		model.LevelModerate: true, model.LevelHigh: true,
	}
	for _, e := range model.Emotions {
		for c := 0.0; c <= 1.0; c += 0.05 {
			rec := Recommend(e, c)
			if !valid[rec.Level] {
				t.Fatalf("Recommend(%s, %v) level %q", e, c, rec.Level)
			}
			if rec.Tasks == nil {
				t.Fatalf("Recommend(%s, %v) tasks nil", e, c)
			}
			if rec.Emotion != e || rec.Confidence != c {
				t.Fatalf("Recommend(%s, %v) did not echo inputs: %+v", e, c, rec)
			}
		}
	}
}
