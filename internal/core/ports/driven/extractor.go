package driven

import (
	"context"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// Extractor fetches power infrastructure records from the external
// geographic data source for a bounding region.
type Extractor interface {
	// Extract queries the region and returns the classified record
	// lists. Fails with domain.ErrSourceUnavailable when the source
	// cannot be reached after bounded retries, and with
	// domain.ErrMalformedResponse when the response does not decode.
	Extract(ctx context.Context, bbox domain.BoundingBox) (*domain.ExtractionResult, error)

	// SubstationByID fetches a single substation element by OSM way id.
	SubstationByID(ctx context.Context, id int64) (*domain.InfrastructureRecord, error)

	// PlantsAround returns plant records within radiusMeters of a point.
	PlantsAround(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.InfrastructureRecord, error)

	// Ping performs a minimal query to verify the source is reachable.
	Ping(ctx context.Context) error
}
