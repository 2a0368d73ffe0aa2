// Package input owns per-frame input state tracking.
//
// Ownership boundary:
// - polled source state retention across frames
// - select/squeeze start and end edge detection
package input
