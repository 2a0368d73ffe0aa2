package xr

import (
	"context"
	"time"
)

// FrameHandle is the platform's per-frame tracking handle. Present only while
// an immersive session is active; nil otherwise.
type FrameHandle any

// Camera is the view the renderer draws from. Opaque to the runtime.
type Camera any

// FrameCallback is invoked by the host once per render frame with the frame
// wall time and the immersive frame handle when one exists.
type FrameCallback func(t time.Time, frame FrameHandle)

// Renderer is the external rendering pipeline boundary.
type Renderer interface {
	// SetFrameCallback registers the per-frame driver with the host's frame
	// timing source.
	SetFrameCallback(fn FrameCallback)

	// BindSession attaches the renderer to an active session handle. The
	// handshake is asynchronous on real platforms; callers must not treat
	// the session as active before this resolves.
	BindSession(ctx context.Context, handle SessionHandle) error

	// ReleaseSession tears down session-scoped renderer resources (layers,
	// capture streams). Safe to call when no session is bound.
	ReleaseSession() error

	Render(graph Graph, camera Camera) error

	// RenderOverlay draws the secondary pass for overlay-flagged content.
	RenderOverlay(graph Graph, camera Camera) error
}

// RenderFunc lets a host substitute the primary render call.
type RenderFunc func(graph Graph, camera Camera) error
