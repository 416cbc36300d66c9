package overpass

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx Overpass API response.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("overpass: API error %d: %s (URL: %s)", e.StatusCode, e.Status, e.URL)
}

// retryable reports whether the status code is worth retrying.
// 429 (too many requests) and 5xx are transient on the public endpoint;
// 504 in particular shows up under load.
func retryable(statusCode int) bool {
	return statusCode == 429 || statusCode >= 500
}

// IsAPIError checks if the error is an Overpass API error and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
