package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/uGboly/xrblocks/internal/input"
	"github.com/uGboly/xrblocks/internal/logging"
	"github.com/uGboly/xrblocks/internal/observability"
	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/script"
	"github.com/uGboly/xrblocks/internal/session"
	"github.com/uGboly/xrblocks/internal/xr"
)

var (
	ErrMissingGraph    = errors.New("runtime: missing scene graph")
	ErrMissingRenderer = errors.New("runtime: missing renderer")
	ErrMissingProvider = errors.New("runtime: missing session provider")
	ErrSessionInit     = errors.New("runtime: session initialization failed")
)

// Options wires the external collaborators into a Core. Graph, Renderer and
// Provider are required; everything else degrades gracefully when absent.
type Options struct {
	Graph    xr.MutableGraph
	Camera   xr.Camera
	Renderer xr.Renderer
	Provider xr.SessionProvider
	Session  xr.SessionOptions

	Physics    xr.PhysicsWorld
	Input      xr.InputSystem
	Perception []xr.PerceptionSystem
	Simulator  xr.Simulator

	// Timestep is the fixed physics interval; DefaultTimestep when zero.
	Timestep time.Duration

	// Render overrides the primary render call when non-nil.
	Render xr.RenderFunc

	// PostRender runs after the render pass without blocking the next
	// cycle (e.g. off-session frame capture).
	PostRender func(frame xr.FrameContext)

	// Registry is shared with the host for service bindings; a fresh one
	// is created when nil.
	Registry *registry.Registry
}

// Core is the application context: the per-frame driver plus the fixed-rate
// physics driver, sequencing session, script, and input management.
//
// The two drivers are serialized through loopMu, preserving the run-to-
// completion guarantee each cycle has against the other.
type Core struct {
	opts Options
	log  zerolog.Logger

	registry *registry.Registry
	sessions *session.Manager
	scripts  *script.Manager
	timer    *Timer
	tracker  *input.Tracker

	loopMu    sync.Mutex
	lastFrame time.Time
	frames    atomic.Uint64

	simulatorAnnounced bool

	physicsCancel context.CancelFunc
	physicsDone   chan struct{}
}

func New(opts Options) (*Core, error) {
	if opts.Graph == nil {
		return nil, ErrMissingGraph
	}
	if opts.Renderer == nil {
		return nil, ErrMissingRenderer
	}
	if opts.Provider == nil {
		return nil, ErrMissingProvider
	}
	reg := opts.Registry
	if reg == nil {
		reg = registry.NewRegistry()
	}

	c := &Core{
		opts:     opts,
		log:      logging.Component("core"),
		registry: reg,
		sessions: session.NewManager(opts.Provider, opts.Renderer, opts.Session),
		scripts:  script.NewManager(reg, opts.Physics),
		timer:    NewTimer(opts.Timestep),
		tracker:  input.NewTracker(),
	}

	// Session broadcasts reach scripts through the deferred queue so they
	// are delivered on the frame driver, in arrival order, and only after
	// the handle is fully bound (start) or released (end).
	c.sessions.OnSessionStart(func(handle xr.SessionHandle) {
		c.scripts.Defer(func() { c.scripts.NotifySessionStarted(handle) })
	})
	c.sessions.OnSessionEnd(func() {
		c.scripts.Defer(func() { c.scripts.NotifySessionEnded() })
	})
	return c, nil
}

func (c *Core) Registry() *registry.Registry {
	return c.registry
}

func (c *Core) Session() *session.Manager {
	return c.sessions
}

// Init registers the frame driver with the renderer, runs the one-shot
// session capability probe, and starts the physics driver. A session
// initialization failure is fatal to the whole init.
func (c *Core) Init(ctx context.Context) error {
	c.opts.Renderer.SetFrameCallback(c.Frame)

	if err := c.sessions.Initialize(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInit, err)
	}

	if c.opts.Physics != nil {
		driverCtx, cancel := context.WithCancel(context.Background())
		c.physicsCancel = cancel
		c.physicsDone = make(chan struct{})
		go c.runPhysics(driverCtx)
	}

	c.log.Info().
		Dur("timestep", c.timer.Timestep()).
		Bool("physics", c.opts.Physics != nil).
		Msg("core initialized")
	return nil
}

// Teardown stops the physics driver and closes the session manager.
func (c *Core) Teardown() error {
	if c.physicsCancel != nil {
		c.physicsCancel()
		<-c.physicsDone
		c.physicsCancel = nil
	}
	return c.sessions.Close()
}

// Frame is the single per-render-frame entry point, invoked by the host's
// frame callback with the frame wall time and the immersive frame handle
// when a session is active.
func (c *Core) Frame(t time.Time, frame xr.FrameHandle) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	started := time.Now()

	var delta time.Duration
	if !c.lastFrame.IsZero() {
		delta = t.Sub(c.lastFrame)
	}
	c.lastFrame = t
	fc := xr.FrameContext{Time: t, Delta: delta, XRFrame: frame}

	// Simulator steps before perception so world state is settled first.
	if sim := c.opts.Simulator; sim != nil && sim.Active() {
		if !c.simulatorAnnounced {
			c.simulatorAnnounced = true
			c.scripts.Defer(func() { c.scripts.NotifySimulatorStarted() })
		}
		c.safeSubsystem("simulator", func() error { return sim.Step(delta) })
	}

	for _, p := range c.opts.Perception {
		c.safeSubsystem(p.Name(), func() error { return p.Update(frame) })
	}

	c.scripts.Sync(c.opts.Graph)
	c.scripts.ResetFrameState()

	var sources []xr.InputSource
	if in := c.opts.Input; in != nil {
		in.Update(frame)
		sources = in.Sources()
		edges := c.tracker.Update(sources)
		for _, ev := range edges.SelectStarts {
			c.scripts.NotifySelectStart(ev)
		}
		for _, ev := range edges.SqueezeStarts {
			c.scripts.NotifySqueezeStart(ev)
		}
		for _, ev := range edges.SelectEnds {
			c.scripts.NotifySelectEnd(ev)
		}
		for _, ev := range edges.SqueezeEnds {
			c.scripts.NotifySqueezeEnd(ev)
		}
	}

	c.scripts.PropagateInput(sources)
	c.scripts.FlushDeferred()
	c.scripts.Update(fc)

	c.render()

	if hook := c.opts.PostRender; hook != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error().Interface("panic", r).Msg("post-render hook panic")
				}
			}()
			hook(fc)
		}()
	}

	c.frames.Add(1)
	observability.RecordFrame(time.Since(started))
}

func (c *Core) render() {
	renderFn := c.opts.Render
	if renderFn == nil {
		renderFn = c.opts.Renderer.Render
	}
	c.safeSubsystem("render", func() error {
		return renderFn(c.opts.Graph, c.opts.Camera)
	})
	if c.opts.Graph.HasOverlayContent() {
		c.safeSubsystem("render_overlay", func() error {
			return c.opts.Renderer.RenderOverlay(c.opts.Graph, c.opts.Camera)
		})
	}
}

// safeSubsystem keeps a single collaborator failure from skipping the rest
// of the frame; a partial frame beats a dropped one.
func (c *Core) safeSubsystem(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("subsystem", name).Interface("panic", r).Msg("subsystem panic")
		}
	}()
	if err := fn(); err != nil {
		c.log.Error().Str("subsystem", name).Err(err).Msg("subsystem failed")
	}
}

// runPhysics drives the fixed-timestep accumulator. Each due step performs
// one physics-world integration followed by the physics hook on every ready
// entry, decoupled from the variable render cadence.
func (c *Core) runPhysics(ctx context.Context) {
	defer close(c.physicsDone)

	ticker := time.NewTicker(c.timer.Timestep())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.stepPhysics(now)
		}
	}
}

func (c *Core) stepPhysics(now time.Time) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	due := c.timer.Advance(now)
	for i := 0; i < due; i++ {
		c.opts.Physics.Step(c.timer.Timestep())
		c.scripts.PhysicsStep()
		observability.RecordPhysicsStep()
	}
}

// Host control surface.

func (c *Core) StartSession(ctx context.Context) error {
	return c.sessions.Start(ctx)
}

func (c *Core) EndSession() error {
	return c.sessions.End()
}

// AddScript attaches a script to the scene graph; it is admitted at the next
// sync point.
func (c *Core) AddScript(s any) {
	c.opts.Graph.Add(s)
}

// RemoveScript detaches a script; it is disposed at the next sync point.
func (c *Core) RemoveScript(s any) {
	c.opts.Graph.Remove(s)
}

// Defer schedules fn for the next frame's flush point.
func (c *Core) Defer(fn func()) {
	c.scripts.Defer(fn)
}

// Interacting reports whether script saw a continuing select or squeeze in
// the current frame cycle.
func (c *Core) Interacting(script any) (selecting, squeezing bool) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	return c.scripts.Interacting(script)
}

// Status is the runtime snapshot surfaced by debug endpoints.
type Status struct {
	Frames        uint64        `json:"frames"`
	PhysicsSteps  uint64        `json:"physics_steps"`
	Timestep      time.Duration `json:"timestep"`
	SessionState  string        `json:"session_state"`
	ScriptsTotal  int           `json:"scripts_total"`
	ScriptsReady  int           `json:"scripts_ready"`
	ScriptsInit   int           `json:"scripts_initializing"`
	ScriptsFailed int           `json:"scripts_failed"`
}

func (c *Core) Status() Status {
	c.loopMu.Lock()
	total, ready, pending, failed := c.scripts.Counts()
	c.loopMu.Unlock()

	return Status{
		Frames:        c.frames.Load(),
		PhysicsSteps:  c.timer.Steps(),
		Timestep:      c.timer.Timestep(),
		SessionState:  c.sessions.State().String(),
		ScriptsTotal:  total,
		ScriptsReady:  ready,
		ScriptsInit:   pending,
		ScriptsFailed: failed,
	}
}
