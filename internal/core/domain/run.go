package domain

import "time"

// ExtractionResult is the uniform output of the extractor: the two
// classified record lists plus reference figures about the region.
type ExtractionResult struct {
	// Plants are the extracted power plant records, in source order.
	Plants []InfrastructureRecord

	// Substations are the extracted substation records, in source order.
	Substations []InfrastructureRecord

	// PowerLines counts line/minor_line/cable ways seen in the region.
	// Reference figure only; lines are not extracted as records.
	PowerLines int

	// Skipped counts elements dropped for missing coordinates.
	Skipped int
}

// RunSummary carries the headline figures of one analysis pass.
type RunSummary struct {
	// Area is the configured area name, e.g. "Madrid_Metropolitan_Area".
	Area string

	// BBox is the bounding box the extraction queried.
	BBox BoundingBox

	// Plants is the number of plant records extracted.
	Plants int

	// Substations is the number of substation records extracted.
	Substations int

	// PowerLines is the reference power line count for the region.
	PowerLines int

	// Likely and Possible count connections per likelihood tier.
	Likely   int
	Possible int

	// StartedAt is when the run began.
	StartedAt time.Time

	// Runtime is the total wall-clock duration of the run.
	Runtime time.Duration
}

// Run is one complete, archived analysis pass.
type Run struct {
	// ID is the unique run identifier.
	ID string

	// Summary holds the run's headline figures.
	Summary RunSummary

	// Plants and Substations are the extracted records.
	Plants      []InfrastructureRecord
	Substations []InfrastructureRecord

	// Connections are the linker's inferred associations.
	Connections []Connection
}
