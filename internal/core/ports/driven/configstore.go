package driven

// Well-known configuration keys.
const (
	KeyOverpassURL     = "overpass.url"
	KeyOverpassTimeout = "overpass.timeout_seconds"
	KeyAreaName        = "area.name"
	KeyAreaBBox        = "area.bbox"
	KeyMaxDistance     = "link.max_distance_km"
	KeyLikelyDistance  = "link.likely_distance_km"
	KeyOutputDir       = "output.dir"
	KeyArchiveEnabled  = "archive.enabled"
)

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, empty when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, zero when unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, zero when unset.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, false when unset.
	GetBool(key string) bool

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Keys returns all configured keys, sorted.
	Keys() []string
}
