package driving

import (
	"context"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// AnalysisRequest parametrises one pipeline run.
type AnalysisRequest struct {
	// Area is the human-readable area name for reports.
	Area string

	// BBox is the extraction region.
	BBox domain.BoundingBox

	// MaxDistanceKM is the proximity threshold; pairs at or below it
	// become connections.
	MaxDistanceKM float64

	// LikelyDistanceKM is the inner tier; pairs at or below it are
	// labelled likely instead of possible.
	LikelyDistanceKM float64

	// OutDir is the directory reports are written into.
	OutDir string

	// Archive controls whether the completed run is stored.
	Archive bool
}

// Analyzer runs the extract → link → report pipeline.
type Analyzer interface {
	// Run executes one batch pass and returns the completed run.
	Run(ctx context.Context, req AnalysisRequest) (*domain.Run, error)
}

// SubstationReport is the result of inspecting a single substation.
type SubstationReport struct {
	// Substation is the inspected record.
	Substation domain.InfrastructureRecord

	// Plants are the nearby plant records, closest first.
	Plants []domain.InfrastructureRecord

	// Distances holds the distance in km per plant key.
	Distances map[string]float64
}

// SubstationInspector analyses a single substation by OSM id.
type SubstationInspector interface {
	// Inspect fetches the substation and the plants within radiusKM.
	Inspect(ctx context.Context, id int64, radiusKM float64) (*SubstationReport, error)
}
