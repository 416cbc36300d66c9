package domain

// Likelihood labels how plausible an inferred connection is.
type Likelihood string

const (
	// LikelihoodLikely marks pairs within the inner distance tier.
	LikelihoodLikely Likelihood = "likely"

	// LikelihoodPossible marks pairs beyond the inner tier but still
	// within the proximity threshold.
	LikelihoodPossible Likelihood = "possible"
)

// Connection is a proximity-inferred association between one plant and
// one substation from the same run. Created only by the linker and never
// mutated after creation. The heuristic is many-to-many: one plant may
// connect to several substations and vice versa.
type Connection struct {
	// PlantKey references the plant record (InfrastructureRecord.Key).
	PlantKey string

	// SubstationKey references the substation record.
	SubstationKey string

	// DistanceKM is the haversine distance between the two records.
	DistanceKM float64

	// Likelihood is the confidence label derived from DistanceKM.
	Likelihood Likelihood
}
