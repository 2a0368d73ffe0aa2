package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uGboly/xrblocks/internal/xr"
)

// Handle is a simulated live session. PlatformEnd models the platform
// terminating the session from its side.
type Handle struct {
	mu      sync.Mutex
	ended   bool
	onEnded func()
}

func (h *Handle) End() error {
	h.mu.Lock()
	h.ended = true
	h.mu.Unlock()
	return nil
}

func (h *Handle) SetEndedHandler(fn func()) {
	h.mu.Lock()
	h.onEnded = fn
	h.mu.Unlock()
}

// PlatformEnd fires the terminal ended notification unless the handler was
// detached or the session already ended.
func (h *Handle) PlatformEnd() {
	h.mu.Lock()
	fn := h.onEnded
	alreadyEnded := h.ended
	h.ended = true
	h.mu.Unlock()
	if fn != nil && !alreadyEnded {
		fn()
	}
}

func (h *Handle) Ended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ended
}

// Provider grants simulated sessions for any mode.
type Provider struct{}

func (Provider) IsSupported(_ context.Context, _ xr.SessionMode) (bool, error) {
	return true, nil
}

func (Provider) RequestSession(_ context.Context, _ xr.SessionOptions) (xr.SessionHandle, error) {
	return &Handle{}, nil
}

// frameHandle is the opaque per-frame tracking value while a session is
// bound.
type frameHandle struct {
	seq uint64
}

// Renderer counts render passes and lets the host drive the registered frame
// callback at its own cadence.
type Renderer struct {
	mu      sync.Mutex
	frameCb xr.FrameCallback
	bound   xr.SessionHandle

	seq      atomic.Uint64
	renders  atomic.Uint64
	overlays atomic.Uint64
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SetFrameCallback(fn xr.FrameCallback) {
	r.mu.Lock()
	r.frameCb = fn
	r.mu.Unlock()
}

func (r *Renderer) BindSession(_ context.Context, handle xr.SessionHandle) error {
	r.mu.Lock()
	r.bound = handle
	r.mu.Unlock()
	return nil
}

func (r *Renderer) ReleaseSession() error {
	r.mu.Lock()
	r.bound = nil
	r.mu.Unlock()
	return nil
}

func (r *Renderer) Render(_ xr.Graph, _ xr.Camera) error {
	r.renders.Add(1)
	return nil
}

func (r *Renderer) RenderOverlay(_ xr.Graph, _ xr.Camera) error {
	r.overlays.Add(1)
	return nil
}

func (r *Renderer) Renders() uint64 {
	return r.renders.Load()
}

func (r *Renderer) Overlays() uint64 {
	return r.overlays.Load()
}

// DriveFrame invokes the registered frame callback once, passing a frame
// handle only while a session is bound.
func (r *Renderer) DriveFrame(t time.Time) {
	r.mu.Lock()
	cb := r.frameCb
	bound := r.bound
	r.mu.Unlock()
	if cb == nil {
		return
	}
	var frame xr.FrameHandle
	if bound != nil {
		frame = frameHandle{seq: r.seq.Add(1)}
	}
	cb(t, frame)
}
