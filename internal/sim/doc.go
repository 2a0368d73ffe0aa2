// Package sim owns in-process stand-ins for the platform collaborators.
//
// Ownership boundary:
// - always-supported session provider and handle
// - counting renderer with a drivable frame callback
// - mutex-guarded scene graph, physics world, and input sources
//
// The host binary runs the real runtime against these; nothing here reaches
// outside the process.
package sim
