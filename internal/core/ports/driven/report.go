package driven

import (
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// ReportWriter serialises a completed run to tabular report files.
// Each run overwrites the previous output; there are no append semantics.
type ReportWriter interface {
	// Write renders the run's records, connections and summary.
	// Fails with domain.ErrWriteFailed when the output path is not
	// writable.
	Write(run *domain.Run) error

	// Dir returns the output directory reports are written into.
	Dir() string
}
