package output

import (
	"fmt"

	"github.com/crimson-sun/attune/internal/model"
)

// Verbosity controls how much of an analysis is written out.
type Verbosity int

const (
	// Minimal keeps the fused estimate and recommendation only.
	Minimal Verbosity = iota
	// Standard keeps everything.
	Standard
)

// ParseVerbosity maps "minimal" and "standard" to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch s {
	case "minimal":
		return Minimal, nil
	case "standard", "":
		return Standard, nil
	}
	return Standard, fmt.Errorf("unknown verbosity %q", s)
}

func (v Verbosity) String() string {
	if v == Minimal {
		return "minimal"
	}
	return "standard"
}

// Format returns a copy of a with fields dropped according to v. At Minimal
// the per-modality estimates, face note and fusion rule are cleared so they
// are omitted from JSON.
func Format(a model.Analysis, v Verbosity) model.Analysis {
	if v == Minimal {
		a.Text = model.Estimate{}
		a.Face = model.Estimate{}
		a.FaceNote = ""
		a.Rule = ""
	}
	return a
}
