package fusion

import (
	"testing"

	"github.com/crimson-sun/attune/internal/model"
)

func est(l model.Emotion, c float64) model.Estimate {
	return model.Estimate{Label: l, Confidence: c}
}

var confidences = []float64{0, 0.01, 0.2, 0.39, 0.4, 0.5, 0.75, 0.99, 1}

func TestFuse_Agreement(t *testing.T) {
	for _, l := range model.Emotions {
		for _, c1 := range confidences {
			for _, c2 := range confidences {
				got, rule := FuseExplain(est(l, c1), est(l, c2))
				want := est(l, max(c1, c2))
				if got != want || rule != RuleAgreement {
					t.Fatalf("Fuse((%s,%v),(%s,%v)) = %v/%s, want %v/agreement", l, c1, l, c2, got, rule, want)
				}
			}
		}
	}
}

func TestFuse_StressDominance(t *testing.T) {
	for _, l := range model.Emotions {
		if l == model.Stressed {
			continue
		}
		for _, c1 := range confidences {
			for _, c2 := range confidences {
				want := est(model.Stressed, max(c1, c2))

				got, rule := FuseExplain(est(model.Stressed, c1), est(l, c2))
				if got != want || rule != RuleStressOverride {
					t.Fatalf("text stressed: Fuse = %v/%s, want %v", got, rule, want)
				}
				got, rule = FuseExplain(est(l, c2), est(model.Stressed, c1))
				if got != want || rule != RuleStressOverride {
					t.Fatalf("face stressed: Fuse = %v/%s, want %v", got, rule, want)
				}
			}
		}
	}
}

func TestFuse_StressHasNoConfidenceFloor(t *testing.T) {
	got := Fuse(est(model.Happy, 0.99), est(model.Stressed, 0.01))
	if got != est(model.Stressed, 0.99) {
		t.Fatalf("got %v, want (stressed, 0.99)", got)
	}
}

func TestFuse_LowConfidenceCollapse(t *testing.T) {
	low := []float64{0, 0.1, 0.25, 0.39}
	for _, l1 := range model.Emotions {
		for _, l2 := range model.Emotions {
			if l1 == l2 || l1 == model.Stressed || l2 == model.Stressed {
				continue
			}
			for _, c1 := range low {
				for _, c2 := range low {
					got, rule := FuseExplain(est(l1, c1), est(l2, c2))
					want := est(model.Neutral, max(c1, c2))
					if got != want || rule != RuleLowConfidence {
						t.Fatalf("Fuse((%s,%v),(%s,%v)) = %v/%s, want %v", l1, c1, l2, c2, got, rule, want)
					}
				}
			}
		}
	}
}

func TestFuse_PriorityArbitration(t *testing.T) {
	tests := []struct {
		name       string
		text, face model.Estimate
		want       model.Estimate
	}{
		{"angry beats sad", est(model.Sad, 0.9), est(model.Angry, 0.5), est(model.Angry, 0.5)},
		{"angry beats happy", est(model.Angry, 0.45), est(model.Happy, 0.95), est(model.Angry, 0.45)},
		{"sad beats neutral", est(model.Neutral, 0.8), est(model.Sad, 0.6), est(model.Sad, 0.6)},
		{"neutral beats happy", est(model.Happy, 0.7), est(model.Neutral, 0.41), est(model.Neutral, 0.41)},
		{"one side above threshold", est(model.Sad, 0.1), est(model.Happy, 0.9), est(model.Sad, 0.1)},
		{"exact threshold counts", est(model.Happy, 0.4), est(model.Angry, 0.2), est(model.Angry, 0.2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := FuseExplain(tt.text, tt.face)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if rule != RulePriority {
				t.Errorf("rule = %s, want priority", rule)
			}
		})
	}
}

func TestFuse_ConfidenceFallback(t *testing.T) {
	// Labels outside the priority order skip arbitration.
	bored := model.Emotion("bored")
	tired := model.Emotion("tired")

	tests := []struct {
		name       string
		text, face model.Estimate
		want       model.Estimate
	}{
		{"face higher", est(bored, 0.5), est(tired, 0.7), est(tired, 0.7)},
		{"text higher", est(bored, 0.8), est(tired, 0.7), est(bored, 0.8)},
		{"tie prefers text", est(bored, 0.6), est(tired, 0.6), est(bored, 0.6)},
		{"one unranked", est(model.Happy, 0.5), est(tired, 0.9), est(tired, 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := FuseExplain(tt.text, tt.face)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if rule != RuleConfidence {
				t.Errorf("rule = %s, want confidence", rule)
			}
		})
	}
}

func TestFuse_NoSignalFace(t *testing.T) {
	// A missing face behaves like a neutral estimate with zero confidence.
	tests := []struct {
		text model.Estimate
		want model.Estimate
	}{
		{est(model.Happy, 0.9), est(model.Neutral, 0)},
		{est(model.Sad, 0.7), est(model.Sad, 0.7)},
		{est(model.Neutral, 0.3), est(model.Neutral, 0.3)},
		{est(model.Happy, 0.3), est(model.Neutral, 0.3)},
	}
	for _, tt := range tests {
		if got := Fuse(tt.text, model.NoSignal); got != tt.want {
			t.Errorf("Fuse(%v, NoSignal) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
