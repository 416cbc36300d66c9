package driven

import (
	"context"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// RunArchive stores completed runs so past analyses can be listed and
// re-exported. The archive is a convenience layer: failures here never
// fail the analysis itself.
type RunArchive interface {
	// Save stores a completed run.
	Save(ctx context.Context, run *domain.Run) error

	// Get loads a run with all records and connections.
	// Returns domain.ErrRunNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// List returns run summaries, most recent first. Record and
	// connection lists are not populated.
	List(ctx context.Context) ([]domain.Run, error)

	// Close releases the underlying storage.
	Close() error
}
