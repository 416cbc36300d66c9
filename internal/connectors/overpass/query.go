package overpass

import (
	"fmt"
	"strings"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

// Tag filters shared by all infrastructure queries. Elements still
// proposed or under construction are not operational infrastructure.
const operationalFilter = `[!"proposed"][!"construction"]`

// infrastructureQuery builds the bbox query for plants, substations and
// reference power lines. `out center` makes ways and relations carry a
// centre coordinate alongside plain nodes.
func infrastructureQuery(bbox domain.BoundingBox, timeoutSeconds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSeconds)

	for _, power := range []string{"plant", "substation"} {
		for _, element := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s[\"power\"=%q]%s(%s);\n", element, power, operationalFilter, bbox)
		}
	}

	// Power lines for the reference count only.
	fmt.Fprintf(&b, "  way[\"power\"~\"line|minor_line|cable\"]%s(%s);\n", operationalFilter, bbox)

	b.WriteString(");\nout center;\n")
	return b.String()
}

// elementByIDQuery fetches a single element with its centre coordinate.
func elementByIDQuery(element string, id int64, timeoutSeconds int) string {
	return fmt.Sprintf("[out:json][timeout:%d];\n%s(%d);\nout center;\n", timeoutSeconds, element, id)
}

// plantsAroundQuery finds plant ways and relations within radiusMeters
// of a point. Plants mapped as bare nodes are rare at this scale but
// included for completeness.
func plantsAroundQuery(center domain.GeoPoint, radiusMeters, timeoutSeconds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSeconds)
	for _, element := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s[\"power\"=\"plant\"](around:%d,%g,%g);\n", element, radiusMeters, center.Lat, center.Lon)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

// pingQuery is a minimal count query used by the doctor command.
func pingQuery() string {
	return `[out:json][timeout:10];node["power"="plant"](40.4,-3.71,40.41,-3.70);out count;`
}
