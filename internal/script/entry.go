package script

import (
	"github.com/uGboly/xrblocks/internal/registry"
)

// taskState is the explicit init task position checked at the top of each
// sync. Only Ready entries receive dispatch.
type taskState int

const (
	taskPending taskState = iota
	taskReady
	taskFailed
)

func (s taskState) String() string {
	switch s {
	case taskPending:
		return "pending"
	case taskReady:
		return "ready"
	case taskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry tracks one attached script's lifecycle. Keyed by instance identity in
// the manager; never re-created while the script stays in the graph.
type Entry struct {
	script any
	caps   capability

	state              taskState
	physicsInitialized bool
	disposed           bool
	initErr            error

	// initDone carries an in-flight async init result; nil otherwise.
	initDone <-chan error

	// deps are the resolved bindings handed to Init; retained only until
	// init completes.
	deps map[registry.Token]any

	// Transient per-frame interaction flags, cleared each frame before
	// input propagation.
	selected bool
	squeezed bool
}

// ready reports whether the entry may receive dispatch hooks.
func (e *Entry) ready() bool {
	return e.state == taskReady && !e.disposed
}
