package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrSourceUnavailable indicates the external geographic data source
	// could not be reached, even after bounded retries.
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrMalformedResponse indicates the data source returned something
	// that does not decode into the expected element schema.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrWriteFailed indicates the report output path is not writable.
	ErrWriteFailed = errors.New("report write failed")

	// ErrRunNotFound indicates a requested archived run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrElementNotFound indicates a requested OSM element does not
	// exist in the source dataset.
	ErrElementNotFound = errors.New("element not found")

	// ErrInvalidBoundingBox indicates a bounding box that does not parse
	// or has out-of-range or inverted coordinates.
	ErrInvalidBoundingBox = errors.New("invalid bounding box")

	// ErrInvalidThreshold indicates a non-positive or inconsistent
	// distance threshold.
	ErrInvalidThreshold = errors.New("invalid distance threshold")

	// ErrNoCoordinates indicates an element carried no usable location.
	ErrNoCoordinates = errors.New("element has no coordinates")
)
