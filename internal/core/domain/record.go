package domain

import "fmt"

// RecordKind classifies an extracted infrastructure record.
type RecordKind string

const (
	// KindPlant is a power generation site (OSM power=plant).
	KindPlant RecordKind = "plant"

	// KindSubstation is a transmission or distribution substation
	// (OSM power=substation).
	KindSubstation RecordKind = "substation"
)

// OSM element types a record can originate from.
const (
	ElementNode     = "node"
	ElementWay      = "way"
	ElementRelation = "relation"
)

// InfrastructureRecord is a power plant or substation extracted from
// OpenStreetMap. Records are immutable once extracted; the dataset is
// rebuilt from scratch on every run.
type InfrastructureRecord struct {
	// ID is the source-assigned OSM element id.
	ID int64

	// Element is the OSM element type: node, way or relation.
	Element string

	// Kind classifies the record as plant or substation.
	Kind RecordKind

	// Name is the human-readable name, empty when untagged.
	Name string

	// Location is the element coordinate. Nodes carry it directly;
	// ways and relations use the centre returned by the source.
	Location GeoPoint

	// Tags is the raw OSM tag mapping for the element.
	Tags map[string]string
}

// Key returns the run-unique identifier "element/id". OSM ids are only
// unique per element type, so the element prefix is part of identity.
func (r InfrastructureRecord) Key() string {
	return fmt.Sprintf("%s/%d", r.Element, r.ID)
}

// DisplayName returns the tagged name, or a placeholder when untagged.
func (r InfrastructureRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Kind == KindSubstation {
		return "Unnamed Substation"
	}
	return "Unnamed Plant"
}

// Operator returns the operator tag, empty when untagged.
func (r InfrastructureRecord) Operator() string {
	return r.Tags["operator"]
}

// Voltage returns the voltage tag, empty when untagged.
func (r InfrastructureRecord) Voltage() string {
	return r.Tags["voltage"]
}

// PlantSource returns the generation source for a plant
// (plant:source, falling back to generator:source).
func (r InfrastructureRecord) PlantSource() string {
	if v := r.Tags["plant:source"]; v != "" {
		return v
	}
	return r.Tags["generator:source"]
}

// PlantOutput returns the electrical output for a plant
// (plant:output:electricity, falling back to generator:output:electricity).
func (r InfrastructureRecord) PlantOutput() string {
	if v := r.Tags["plant:output:electricity"]; v != "" {
		return v
	}
	return r.Tags["generator:output:electricity"]
}

// SubstationType returns the substation tag value (e.g. "transmission"),
// empty for plants or untagged substations.
func (r InfrastructureRecord) SubstationType() string {
	return r.Tags["substation"]
}
