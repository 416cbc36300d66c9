// Package driving defines the interfaces the CLI drives the core
// services through.
package driving
