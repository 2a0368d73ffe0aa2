package xr

import "time"

// FrameContext is the per-cycle view handed to script update hooks. Built
// fresh by the frame driver each cycle; never retained across cycles.
type FrameContext struct {
	Time  time.Time
	Delta time.Duration

	// XRFrame is present only while an immersive session is active.
	XRFrame FrameHandle
}
