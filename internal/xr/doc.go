// Package xr owns the narrow contracts the runtime consumes from the platform.
//
// Ownership boundary:
// - immersive session provider and handle shapes
// - renderer binding and frame-timing registration
// - scene graph traversal surface
// - physics, perception, simulator, and input collaborator interfaces
//
// Everything here is an interface: the runtime never reaches into platform
// internals, and tests substitute fakes for every collaborator.
package xr
