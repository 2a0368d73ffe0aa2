package xr

// InputSource is one tracked controller or hand.
type InputSource interface {
	ID() string
	Selecting() bool
	Squeezing() bool
}

// InputSystem polls platform input once per frame and exposes the current
// source set.
type InputSystem interface {
	Update(frame FrameHandle)
	Sources() []InputSource
}

// InputEvent carries the originating source for select/squeeze hooks.
type InputEvent struct {
	Source InputSource
}
