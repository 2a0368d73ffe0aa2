// Package registry owns shared-service dependency bindings.
//
// Ownership boundary:
// - dependency token shape
// - token -> instance binding table
// - declaration-order resolution for script dependency sets
package registry
