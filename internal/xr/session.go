package xr

import "context"

// SessionMode selects the immersive session flavor requested from the platform.
type SessionMode string

const (
	ModeImmersiveAR SessionMode = "immersive-ar"
	ModeImmersiveVR SessionMode = "immersive-vr"
)

// SessionOptions is the capability set negotiated when a session starts.
type SessionOptions struct {
	Mode             SessionMode
	RequiredFeatures []string
	OptionalFeatures []string
}

// SessionHandle is the platform's live session. Opaque beyond termination
// control: exactly one handle exists while a session is active.
type SessionHandle interface {
	// End asks the platform to terminate the session. The terminal ended
	// notification still fires unless the handler was detached first.
	End() error

	// SetEndedHandler installs the platform-side terminal notification
	// callback. A nil fn detaches synchronously; after detach the platform
	// must not invoke a previously installed handler.
	SetEndedHandler(fn func())
}

// SessionProvider is the platform entry point for capability probing and
// session negotiation.
type SessionProvider interface {
	IsSupported(ctx context.Context, mode SessionMode) (bool, error)
	RequestSession(ctx context.Context, opts SessionOptions) (SessionHandle, error)
}

// OfferingProvider is implemented by providers with an unprompted entry path
// (e.g. a browser offering the session before the page asks). When an offered
// handle is present at initialization time, the session manager adopts it.
type OfferingProvider interface {
	OfferedSession(ctx context.Context, opts SessionOptions) (SessionHandle, bool)
}
