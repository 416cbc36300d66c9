package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driving"
	"github.com/jcherranz/spain-power-grid-analysis/internal/logger"
)

// Ensure Inspector implements the interface.
var _ driving.SubstationInspector = (*Inspector)(nil)

// Inspector analyses a single substation: it fetches the element by id
// and lists the plants within a search radius, closest first.
type Inspector struct {
	extractor driven.Extractor
}

// NewInspector creates a substation inspector.
func NewInspector(extractor driven.Extractor) *Inspector {
	return &Inspector{extractor: extractor}
}

// Inspect fetches the substation and the plants within radiusKM.
func (i *Inspector) Inspect(ctx context.Context, id int64, radiusKM float64) (*driving.SubstationReport, error) {
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius %g km", domain.ErrInvalidThreshold, radiusKM)
	}

	sub, err := i.extractor.SubstationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch substation: %w", err)
	}
	logger.Info("inspecting %s (%s)", sub.DisplayName(), sub.Key())

	plants, err := i.extractor.PlantsAround(ctx, sub.Location, int(radiusKM*1000))
	if err != nil {
		return nil, fmt.Errorf("search plants: %w", err)
	}

	report := &driving.SubstationReport{
		Substation: *sub,
		Plants:     plants,
		Distances:  make(map[string]float64, len(plants)),
	}
	for _, plant := range plants {
		report.Distances[plant.Key()] = sub.Location.DistanceKM(plant.Location)
	}

	sort.SliceStable(report.Plants, func(a, b int) bool {
		da := report.Distances[report.Plants[a].Key()]
		db := report.Distances[report.Plants[b].Key()]
		if da != db {
			return da < db
		}
		return report.Plants[a].Key() < report.Plants[b].Key()
	})

	logger.Info("found %d plants within %g km", len(plants), radiusKM)
	return report, nil
}
