package taxonomy

import (
	"testing"

	"github.com/crimson-sun/attune/internal/model"
)

func TestMapToFinal_Text(t *testing.T) {
	tests := []struct {
		native string
		want   model.Emotion
	}{
		{"joy", model.Happy},
		{"ammusement", model.Happy},
		{"gratitude", model.Happy},
		{"curiosity", model.Neutral},
		{"surprise", model.Neutral},
		{"grief", model.Sad},
		{"embarrassment", model.Sad},
		{"annoyance", model.Angry},
		{"nervousness", model.Stressed},
		{"anxiety", model.Stressed},
		{"  Fear ", model.Stressed},
		{"optimism", model.Neutral},
		{"", model.Neutral},
	}

	for _, tt := range tests {
		if got := MapToFinal(tt.native, TextToFinal); got != tt.want {
			t.Errorf("MapToFinal(%q, text) = %q, want %q", tt.native, got, tt.want)
		}
	}
}

func TestMapToFinal_Face(t *testing.T) {
	tests := []struct {
		native string
		want   model.Emotion
	}{
		{"happy", model.Happy},
		{"sad", model.Sad},
		{"angry", model.Angry},
		{"fear", model.Stressed},
		{"disgust", model.Stressed},
		{"surprise", model.Neutral},
		{"neutral", model.Neutral},
		{"contempt", model.Neutral},
	}

	for _, tt := range tests {
		if got := MapToFinal(tt.native, FaceToFinal); got != tt.want {
			t.Errorf("MapToFinal(%q, face) = %q, want %q", tt.native, got, tt.want)
		}
	}
}

func TestMappingsOnlyProduceFinalLabels(t *testing.T) {
	for _, m := range []Mapping{TextToFinal, FaceToFinal, Identity} {
		for native, e := range m.entries() {
			if !e.Valid() {
				t.Errorf("%s mapping: %q -> %q is not a final label", m.Name(), native, e)
			}
		}
	}
}

func TestIdentityCoversTaxonomy(t *testing.T) {
	if n := len(Identity.entries()); n != len(model.Emotions) {
		t.Fatalf("identity has %d entries, want %d", n, len(model.Emotions))
	}
	for _, e := range model.Emotions {
		if got := MapToFinal(string(e), Identity); got != e {
			t.Errorf("identity(%q) = %q", e, got)
		}
	}
}

func TestNewMappingCopiesInput(t *testing.T) {
	pairs := map[string]model.Emotion{"Calm ": model.Neutral}
	m := NewMapping("test", pairs)
	pairs["calm"] = model.Angry
	if got := MapToFinal("calm", m); got != model.Neutral {
		t.Fatalf("mutating the input leaked into the mapping: calm -> %q", got)
	}
}

func TestPriorityOrder(t *testing.T) {
	want := []model.Emotion{model.Stressed, model.Angry, model.Sad, model.Neutral, model.Happy}
	if len(PriorityOrder) != len(want) {
		t.Fatalf("priority order has %d entries, want %d", len(PriorityOrder), len(want))
	}
	for i, e := range want {
		r, ok := Rank(e)
		if !ok || r != i {
			t.Errorf("Rank(%q) = %d, %v; want %d, true", e, r, ok, i)
		}
	}

	seen := map[model.Emotion]bool{}
	for _, e := range PriorityOrder {
		if seen[e] {
			t.Errorf("%q appears twice", e)
		}
		seen[e] = true
	}
	for _, e := range model.Emotions {
		if !seen[e] {
			t.Errorf("%q missing from priority order", e)
		}
	}
}

func TestRankUnknown(t *testing.T) {
	if r, ok := Rank(model.Emotion("bored")); ok || r != -1 {
		t.Fatalf("Rank(bored) = %d, %v; want -1, false", r, ok)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"text", "face", "identity", "FACE"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName("audio"); ok {
		t.Error("ByName(audio) should not be found")
	}
}
