package xr

// Graph is the scene graph traversal surface. The graph is owned and mutated
// by application code at arbitrary times; the runtime reads it only at its
// per-frame sync point.
type Graph interface {
	// VisitScripts enumerates every script-bearing node currently attached,
	// in a stable traversal order.
	VisitScripts(fn func(script any))

	// HasOverlayContent reports whether any attached content is flagged for
	// the overlay render pass.
	HasOverlayContent() bool
}

// MutableGraph extends Graph with attachment control for hosts that route
// script add/remove through the runtime.
type MutableGraph interface {
	Graph
	Add(script any)
	Remove(script any)
}
