package overpass

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/logger"
)

// response is the Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

// element is one OSM element in an Overpass response. Nodes carry
// lat/lon directly; ways and relations carry a centre when the query
// used `out center`.
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// location returns the element coordinate, preferring direct lat/lon.
func (e element) location() (domain.GeoPoint, error) {
	switch {
	case e.Lat != nil && e.Lon != nil:
		return domain.GeoPoint{Lat: *e.Lat, Lon: *e.Lon}, nil
	case e.Center != nil:
		return domain.GeoPoint{Lat: e.Center.Lat, Lon: e.Center.Lon}, nil
	default:
		return domain.GeoPoint{}, domain.ErrNoCoordinates
	}
}

// decodeResponse parses raw Overpass JSON. A body that is not valid
// JSON or lacks the elements field is a malformed response: the public
// endpoint answers some overload conditions with an HTML error page and
// status 200.
func decodeResponse(body []byte) (*response, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if resp.Elements == nil {
		return nil, fmt.Errorf("%w: missing elements field", domain.ErrMalformedResponse)
	}
	return &resp, nil
}

// classify sorts decoded elements into the extraction result. Elements
// without coordinates are counted and skipped, not errors: Overpass
// omits centres for some degenerate geometries.
func classify(resp *response) *domain.ExtractionResult {
	result := &domain.ExtractionResult{}

	for _, elem := range resp.Elements {
		power := elem.Tags["power"]
		switch {
		case power == "plant":
			rec, err := recordFromElement(elem, domain.KindPlant)
			if err != nil {
				result.Skipped++
				logger.Warn("skipping %s/%d: %v", elem.Type, elem.ID, err)
				continue
			}
			result.Plants = append(result.Plants, rec)
		case power == "substation":
			rec, err := recordFromElement(elem, domain.KindSubstation)
			if err != nil {
				result.Skipped++
				logger.Warn("skipping %s/%d: %v", elem.Type, elem.ID, err)
				continue
			}
			result.Substations = append(result.Substations, rec)
		case isPowerLine(power):
			result.PowerLines++
		}
	}

	return result
}

func isPowerLine(power string) bool {
	switch power {
	case "line", "minor_line", "cable":
		return true
	}
	return false
}

// recordFromElement converts one element into a domain record.
func recordFromElement(elem element, kind domain.RecordKind) (domain.InfrastructureRecord, error) {
	loc, err := elem.location()
	if err != nil {
		return domain.InfrastructureRecord{}, err
	}

	tags := elem.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	return domain.InfrastructureRecord{
		ID:       elem.ID,
		Element:  strings.ToLower(elem.Type),
		Kind:     kind,
		Name:     tags["name"],
		Location: loc,
		Tags:     tags,
	}, nil
}
