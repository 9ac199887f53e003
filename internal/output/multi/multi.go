package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
)

// Multi fans out analyses to several outputs in order. A failing output
// does not stop delivery to the rest.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Len reports the number of wrapped outputs.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers a to every wrapped output and joins their errors.
func (m *Multi) Write(ctx context.Context, a model.Analysis) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every wrapped output and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
