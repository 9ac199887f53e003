package attune

import "github.com/crimson-sun/attune/internal/engine/taxonomy"

// Emotions lists the final labels, most severe first. Fusion breaks
// disagreements in this order.
func Emotions() []string {
	out := make([]string, len(taxonomy.PriorityOrder))
	for i, e := range taxonomy.PriorityOrder {
		out[i] = string(e)
	}
	return out
}

// MapTextLabel maps a text classifier label (joy, grief, nervousness, ...)
// to a final label. Unknown labels map to neutral.
func MapTextLabel(native string) string {
	return string(taxonomy.MapToFinal(native, taxonomy.TextToFinal))
}

// MapFaceLabel maps a face model label (happy, fear, disgust, ...) to a
// final label. Unknown labels map to neutral.
func MapFaceLabel(native string) string {
	return string(taxonomy.MapToFinal(native, taxonomy.FaceToFinal))
}
