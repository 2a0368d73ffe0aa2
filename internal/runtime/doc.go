// Package runtime owns the top-level frame and physics drivers.
//
// Ownership boundary:
// - per-frame cycle ordering (simulator, perception, sync, input, dispatch,
//   render, post-render capture)
// - fixed-timestep physics accumulator and its driver goroutine
// - host control surface (session control, script attach/detach, defer)
package runtime
