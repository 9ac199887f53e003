package output

import (
	"context"

	"github.com/crimson-sun/attune/internal/model"
)

// Output is a destination for completed analyses.
type Output interface {
	Write(ctx context.Context, a model.Analysis) error
	Close() error
}
