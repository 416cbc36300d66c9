// Package domain defines the core business entities for the power grid
// analysis pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - InfrastructureRecord: A power plant or substation extracted from OSM
//   - Connection: A proximity-inferred plant-to-substation association
//   - GeoPoint / BoundingBox: WGS 84 coordinates and query regions
//   - Run / RunSummary: One complete analysis pass and its headline figures
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
