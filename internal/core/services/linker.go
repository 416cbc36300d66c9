package services

import (
	"fmt"
	"sort"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// Default distance tiers in kilometres. The outer threshold bounds the
// heuristic; the inner tier separates likely from merely possible
// connections at metropolitan scale.
const (
	DefaultMaxDistanceKM    = 25.0
	DefaultLikelyDistanceKM = 10.0
)

// Linker infers plant-to-substation connections by geographic
// proximity. The heuristic is many-to-many: every substation within the
// threshold of a plant is retained, ties included. It claims nothing
// about actual network topology.
type Linker struct {
	maxDistanceKM    float64
	likelyDistanceKM float64
}

// NewLinker creates a linker with the given distance tiers.
// Both must be positive and the likely tier must not exceed the
// threshold.
func NewLinker(maxDistanceKM, likelyDistanceKM float64) (*Linker, error) {
	if maxDistanceKM <= 0 {
		return nil, fmt.Errorf("%w: max distance %g km", domain.ErrInvalidThreshold, maxDistanceKM)
	}
	if likelyDistanceKM <= 0 || likelyDistanceKM > maxDistanceKM {
		return nil, fmt.Errorf("%w: likely distance %g km with max %g km", domain.ErrInvalidThreshold, likelyDistanceKM, maxDistanceKM)
	}
	return &Linker{maxDistanceKM: maxDistanceKM, likelyDistanceKM: likelyDistanceKM}, nil
}

// Link computes connection candidates between the two record lists.
//
// The threshold boundary is inclusive: a substation exactly at the
// threshold distance is retained. A plant with no substation in range
// contributes no connections; that is a normal outcome, not an error.
//
// The result is deterministic for a given input: ordered by plant key,
// then distance, then substation key.
func (l *Linker) Link(plants, substations []domain.InfrastructureRecord) []domain.Connection {
	connections := make([]domain.Connection, 0)

	for _, plant := range plants {
		for _, sub := range substations {
			distance := plant.Location.DistanceKM(sub.Location)
			if distance > l.maxDistanceKM {
				continue
			}

			likelihood := domain.LikelihoodPossible
			if distance <= l.likelyDistanceKM {
				likelihood = domain.LikelihoodLikely
			}

			connections = append(connections, domain.Connection{
				PlantKey:      plant.Key(),
				SubstationKey: sub.Key(),
				DistanceKM:    distance,
				Likelihood:    likelihood,
			})
		}
	}

	sort.SliceStable(connections, func(i, j int) bool {
		a, b := connections[i], connections[j]
		if a.PlantKey != b.PlantKey {
			return a.PlantKey < b.PlantKey
		}
		if a.DistanceKM != b.DistanceKM {
			return a.DistanceKM < b.DistanceKM
		}
		return a.SubstationKey < b.SubstationKey
	})

	return connections
}

// MaxDistanceKM returns the proximity threshold.
func (l *Linker) MaxDistanceKM() float64 { return l.maxDistanceKM }

// LikelyDistanceKM returns the inner likelihood tier.
func (l *Linker) LikelyDistanceKM() float64 { return l.likelyDistanceKM }
