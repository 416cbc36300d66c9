// Package driven defines the interfaces the core services depend on.
// Adapters (Overpass connector, CSV reporter, SQLite archive, TOML
// config store) implement these; the core never imports an adapter.
package driven
