// Package services implements the core use cases: the proximity linker,
// the extract → link → report orchestrator, and the single-substation
// inspector. Services depend only on domain types and ports.
package services
