package xr

import "time"

// PhysicsWorld is the physics solver boundary. One Step call performs one
// fixed-timestep integration.
type PhysicsWorld interface {
	Step(dt time.Duration)
}

// PerceptionSystem is a world-perception collaborator (depth, lighting)
// updated once per render frame with the current frame handle.
type PerceptionSystem interface {
	Name() string
	Update(frame FrameHandle) error
}

// Simulator is the secondary, non-immersive simulation mode. When active it
// is stepped before perception updates so world state is settled first.
type Simulator interface {
	Active() bool
	Step(dt time.Duration) error
}
