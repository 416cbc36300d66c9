// Package overpass implements the driven.Extractor port against the
// OpenStreetMap Overpass API.
//
// The connector issues Overpass QL queries over HTTP POST, decodes the
// JSON element list into domain records, retries transient failures a
// bounded number of times, and throttles itself with a token bucket so
// multi-query commands stay polite to the public endpoint.
package overpass
