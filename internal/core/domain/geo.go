package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKM is the mean Earth radius used for haversine distances.
const EarthRadiusKM = 6371.0

// GeoPoint is a geographic coordinate in WGS 84 decimal degrees.
type GeoPoint struct {
	// Lat is the latitude in degrees, positive north.
	Lat float64

	// Lon is the longitude in degrees, positive east.
	Lon float64
}

// DistanceKM returns the great-circle distance to another point in
// kilometres using the haversine formula. Symmetric by construction:
// p.DistanceKM(q) == q.DistanceKM(p).
func (p GeoPoint) DistanceKM(q GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dLat := (q.Lat - p.Lat) * math.Pi / 180
	dLon := (q.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// BoundingBox is a geographic rectangle in Overpass order:
// south, west, north, east.
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// ParseBoundingBox parses a "south,west,north,east" string into a
// BoundingBox. Returns ErrInvalidBoundingBox for anything that does not
// parse into four ordered coordinates.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("%w: expected 4 comma-separated values, got %d", ErrInvalidBoundingBox, len(parts))
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("%w: %q is not a number", ErrInvalidBoundingBox, part)
		}
		vals[i] = v
	}

	bbox := BoundingBox{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
	if err := bbox.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return bbox, nil
}

// Validate checks coordinate ranges and ordering.
func (b BoundingBox) Validate() error {
	if b.South < -90 || b.North > 90 || b.South >= b.North {
		return fmt.Errorf("%w: latitude range %g..%g", ErrInvalidBoundingBox, b.South, b.North)
	}
	if b.West < -180 || b.East > 180 || b.West >= b.East {
		return fmt.Errorf("%w: longitude range %g..%g", ErrInvalidBoundingBox, b.West, b.East)
	}
	return nil
}

// String renders the box in Overpass "south,west,north,east" order.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.South, b.West, b.North, b.East)
}
