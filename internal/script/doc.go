// Package script owns behavior-unit lifecycle against the scene graph.
//
// Ownership boundary:
// - script hook contract and capability detection
// - per-entry lifecycle flags (pending/ready/failed, disposed)
// - graph diffing at the per-frame sync point
// - ordered hook dispatch with per-entry failure isolation
package script
