package script

import (
	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/xr"
)

// Scripts are opaque capability objects: any value attached to the scene
// graph may implement any subset of the hook interfaces below. Which hooks an
// instance implements is detected once, when its entry is created, and
// recorded as an immutable capability mask.

// DependencyDeclarer lists the tokens resolved and passed to Init.
type DependencyDeclarer interface {
	Dependencies() []registry.Token
}

// Initializer runs once, strictly before any per-frame hook on the same
// script. An error marks the entry failed and excludes it from dispatch.
type Initializer interface {
	Init(deps map[registry.Token]any) error
}

// AsyncInitializer is the off-loop variant of Init for scripts that await a
// remote resource. The returned channel yields at most one error; closing it
// without a value signals success. The entry stays excluded from dispatch
// until the result is collected at a later sync point.
type AsyncInitializer interface {
	InitAsync(deps map[registry.Token]any) <-chan error
}

// PhysicsInitializer runs once after Init when a physics world is present.
type PhysicsInitializer interface {
	InitPhysics(world xr.PhysicsWorld)
}

// Disposer runs exactly once when the script leaves the graph. No hook fires
// on the script afterwards.
type Disposer interface {
	Dispose()
}

type Updater interface {
	Update(frame xr.FrameContext)
}

type PhysicsStepper interface {
	PhysicsStep()
}

type SelectStartHandler interface {
	OnSelectStart(e xr.InputEvent)
}

type SelectEndHandler interface {
	OnSelectEnd(e xr.InputEvent)
}

// SelectingHandler receives the continuing-selection event every frame while
// the source keeps selecting.
type SelectingHandler interface {
	OnSelecting(e xr.InputEvent)
}

type SqueezeStartHandler interface {
	OnSqueezeStart(e xr.InputEvent)
}

type SqueezeEndHandler interface {
	OnSqueezeEnd(e xr.InputEvent)
}

type SqueezingHandler interface {
	OnSqueezing(e xr.InputEvent)
}

type SessionStartedHandler interface {
	OnSessionStarted(handle xr.SessionHandle)
}

type SessionEndedHandler interface {
	OnSessionEnded()
}

type SimulatorStartedHandler interface {
	OnSimulatorStarted()
}

type capability uint32

const (
	capInit capability = 1 << iota
	capAsyncInit
	capInitPhysics
	capDispose
	capUpdate
	capPhysicsStep
	capSelectStart
	capSelectEnd
	capSelecting
	capSqueezeStart
	capSqueezeEnd
	capSqueezing
	capSessionStarted
	capSessionEnded
	capSimulatorStarted
)

func (c capability) has(flag capability) bool {
	return c&flag != 0
}

func capabilitiesOf(script any) capability {
	var caps capability
	if _, ok := script.(Initializer); ok {
		caps |= capInit
	}
	if _, ok := script.(AsyncInitializer); ok {
		caps |= capAsyncInit
	}
	if _, ok := script.(PhysicsInitializer); ok {
		caps |= capInitPhysics
	}
	if _, ok := script.(Disposer); ok {
		caps |= capDispose
	}
	if _, ok := script.(Updater); ok {
		caps |= capUpdate
	}
	if _, ok := script.(PhysicsStepper); ok {
		caps |= capPhysicsStep
	}
	if _, ok := script.(SelectStartHandler); ok {
		caps |= capSelectStart
	}
	if _, ok := script.(SelectEndHandler); ok {
		caps |= capSelectEnd
	}
	if _, ok := script.(SelectingHandler); ok {
		caps |= capSelecting
	}
	if _, ok := script.(SqueezeStartHandler); ok {
		caps |= capSqueezeStart
	}
	if _, ok := script.(SqueezeEndHandler); ok {
		caps |= capSqueezeEnd
	}
	if _, ok := script.(SqueezingHandler); ok {
		caps |= capSqueezing
	}
	if _, ok := script.(SessionStartedHandler); ok {
		caps |= capSessionStarted
	}
	if _, ok := script.(SessionEndedHandler); ok {
		caps |= capSessionEnded
	}
	if _, ok := script.(SimulatorStartedHandler); ok {
		caps |= capSimulatorStarted
	}
	return caps
}
