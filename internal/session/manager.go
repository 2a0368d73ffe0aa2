package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uGboly/xrblocks/internal/logging"
	"github.com/uGboly/xrblocks/internal/observability"
	"github.com/uGboly/xrblocks/internal/xr"
)

// Manager negotiates the immersive session lifecycle against the platform
// provider and keeps the renderer binding consistent with the state machine.
//
// State transitions:
//
//	Uninitialized --Initialize--> Unsupported | Ready
//	Ready --Start--> Starting --ok--> Active
//	Starting --rejected--> Ready
//	Active --End / platform ended--> Ready
//	any --CapabilityLost--> Unsupported
//	any --Close--> Ended
type Manager struct {
	provider xr.SessionProvider
	renderer xr.Renderer
	opts     xr.SessionOptions
	log      zerolog.Logger

	mu     sync.Mutex
	state  State
	handle xr.SessionHandle

	readyObs       []func(xr.SessionOptions)
	unsupportedObs []func()
	startObs       []func(xr.SessionHandle)
	endObs         []func()
}

func NewManager(provider xr.SessionProvider, renderer xr.Renderer, opts xr.SessionOptions) *Manager {
	return &Manager{
		provider: provider,
		renderer: renderer,
		opts:     opts,
		log:      logging.Component("session"),
		state:    Uninitialized,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Handle returns the live session handle; non-nil iff the state is Active.
func (m *Manager) Handle() xr.SessionHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

func (m *Manager) Options() xr.SessionOptions {
	return m.opts
}

// Observer registration. Callbacks run on the goroutine that drove the
// transition, after the state is settled, without the manager lock held.

func (m *Manager) OnReady(fn func(xr.SessionOptions)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyObs = append(m.readyObs, fn)
}

func (m *Manager) OnUnsupported(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsupportedObs = append(m.unsupportedObs, fn)
}

func (m *Manager) OnSessionStart(fn func(xr.SessionHandle)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startObs = append(m.startObs, fn)
}

func (m *Manager) OnSessionEnd(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endObs = append(m.endObs, fn)
}

// Initialize probes platform capability exactly once. A probe error degrades
// to Unsupported rather than failing. When the provider offers an unprompted
// entry path with a session already granted, the manager adopts it.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Uninitialized {
		state := m.state
		m.mu.Unlock()
		return &InvalidStateError{Op: "initialize", State: state, Reason: "already initialized"}
	}
	m.mu.Unlock()

	supported, err := m.provider.IsSupported(ctx, m.opts.Mode)
	if err != nil {
		m.log.Warn().Err(err).Str("mode", string(m.opts.Mode)).Msg("capability probe failed")
		supported = false
	}
	if !supported {
		m.transition(Uninitialized, Unsupported)
		for _, fn := range m.snapshotUnsupported() {
			fn()
		}
		return nil
	}

	m.transition(Uninitialized, Ready)
	for _, fn := range m.snapshotReady() {
		fn(m.opts)
	}

	if offering, ok := m.provider.(xr.OfferingProvider); ok {
		if handle, ok := offering.OfferedSession(ctx, m.opts); ok {
			if err := m.adopt(ctx, handle); err != nil {
				m.log.Warn().Err(err).Msg("offered session adoption failed")
			}
		}
	}
	return nil
}

// Start negotiates a new session. Only valid from Ready; each forbidden state
// is reported with its own reason, and a start racing an in-flight start is
// rejected rather than queued.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case Uninitialized:
		m.mu.Unlock()
		return &InvalidStateError{Op: "start", State: Uninitialized, Reason: "not initialized"}
	case Unsupported:
		m.mu.Unlock()
		return &InvalidStateError{Op: "start", State: Unsupported, Reason: "platform unsupported"}
	case Starting:
		m.mu.Unlock()
		return &InvalidStateError{Op: "start", State: Starting, Reason: "start already in flight"}
	case Active:
		m.mu.Unlock()
		return &InvalidStateError{Op: "start", State: Active, Reason: "session already active"}
	case Ended:
		m.mu.Unlock()
		return &InvalidStateError{Op: "start", State: Ended, Reason: "manager closed"}
	}
	m.state = Starting
	m.mu.Unlock()
	observability.RecordSessionTransition(Ready.String(), Starting.String())

	handle, err := m.provider.RequestSession(ctx, m.opts)
	if err != nil {
		m.revertStart()
		return fmt.Errorf("%w: %v", ErrStartRejected, err)
	}
	return m.bind(ctx, handle)
}

// adopt routes an offered session through the same binding path as Start.
func (m *Manager) adopt(ctx context.Context, handle xr.SessionHandle) error {
	m.mu.Lock()
	if m.state != Ready {
		state := m.state
		m.mu.Unlock()
		return &InvalidStateError{Op: "adopt", State: state, Reason: "not ready"}
	}
	m.state = Starting
	m.mu.Unlock()
	observability.RecordSessionTransition(Ready.String(), Starting.String())

	return m.bind(ctx, handle)
}

// bind completes Starting -> Active. The sessionstart observers fire only
// after the renderer is bound to the handle. The commit re-checks that the
// machine is still Starting: a capability loss or close that landed while
// the platform negotiation was in flight wins, and the granted handle is
// discarded.
func (m *Manager) bind(ctx context.Context, handle xr.SessionHandle) error {
	if err := m.renderer.BindSession(ctx, handle); err != nil {
		_ = handle.End()
		m.revertStart()
		return fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	handle.SetEndedHandler(m.onPlatformEnded)

	m.mu.Lock()
	if m.state != Starting {
		state := m.state
		m.mu.Unlock()
		handle.SetEndedHandler(nil)
		_ = handle.End()
		if err := m.renderer.ReleaseSession(); err != nil {
			m.log.Error().Err(err).Msg("renderer session release failed")
		}
		m.log.Warn().Str("state", state.String()).Msg("session start preempted")
		return &InvalidStateError{Op: "start", State: state, Reason: "state changed during start"}
	}
	m.handle = handle
	m.state = Active
	obs := slices.Clone(m.startObs)
	m.mu.Unlock()
	observability.RecordSessionTransition(Starting.String(), Active.String())
	m.log.Info().Str("mode", string(m.opts.Mode)).Msg("session active")

	for _, fn := range obs {
		fn(handle)
	}
	return nil
}

// End terminates the active session from the application side. The platform
// ended-notification is detached before the handle is released so exactly one
// sessionend fires no matter who initiated the end.
func (m *Manager) End() error {
	m.mu.Lock()
	if m.state != Active || m.handle == nil {
		state := m.state
		m.mu.Unlock()
		return &InvalidStateError{Op: "end", State: state, Reason: "no active session"}
	}
	handle := m.handle
	m.mu.Unlock()

	handle.SetEndedHandler(nil)
	endErr := handle.End()
	m.teardown(handle)
	if endErr != nil {
		return fmt.Errorf("session: handle end: %w", endErr)
	}
	return nil
}

// onPlatformEnded handles the platform-initiated terminal notification.
func (m *Manager) onPlatformEnded() {
	m.mu.Lock()
	if m.state != Active || m.handle == nil {
		m.mu.Unlock()
		return
	}
	handle := m.handle
	m.mu.Unlock()

	m.log.Info().Msg("session ended by platform")
	handle.SetEndedHandler(nil)
	m.teardown(handle)
}

// teardown releases session-scoped resources and fires sessionend. Renderer
// release happens before observers so no listener observes a stale handle.
func (m *Manager) teardown(handle xr.SessionHandle) {
	if err := m.renderer.ReleaseSession(); err != nil {
		m.log.Error().Err(err).Msg("renderer session release failed")
	}

	m.mu.Lock()
	if m.handle != handle {
		// Lost the race against a concurrent teardown; the other caller
		// already fired sessionend.
		m.mu.Unlock()
		return
	}
	m.handle = nil
	m.state = Ready
	obs := slices.Clone(m.endObs)
	m.mu.Unlock()
	observability.RecordSessionTransition(Active.String(), Ready.String())

	for _, fn := range obs {
		fn()
	}
}

// CapabilityLost transitions to Unsupported from any state, ending an active
// session first. Terminal for session start, not for application teardown.
func (m *Manager) CapabilityLost() {
	if m.State() == Active {
		if err := m.End(); err != nil {
			m.log.Error().Err(err).Msg("end during capability loss failed")
		}
	}

	m.mu.Lock()
	from := m.state
	if from == Unsupported {
		m.mu.Unlock()
		return
	}
	m.state = Unsupported
	obs := slices.Clone(m.unsupportedObs)
	m.mu.Unlock()
	observability.RecordSessionTransition(from.String(), Unsupported.String())

	for _, fn := range obs {
		fn()
	}
}

// Close moves the manager to its terminal state for application teardown.
func (m *Manager) Close() error {
	if m.State() == Active {
		if err := m.End(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	from := m.state
	m.state = Ended
	m.mu.Unlock()
	if from != Ended {
		observability.RecordSessionTransition(from.String(), Ended.String())
	}
	return nil
}

// revertStart returns a failed start to Ready unless the state already moved
// on (capability loss, close) while the negotiation was in flight.
func (m *Manager) revertStart() {
	m.mu.Lock()
	if m.state != Starting {
		m.mu.Unlock()
		return
	}
	m.state = Ready
	m.mu.Unlock()
	observability.RecordSessionTransition(Starting.String(), Ready.String())
}

func (m *Manager) transition(from, to State) {
	m.mu.Lock()
	m.state = to
	m.mu.Unlock()
	observability.RecordSessionTransition(from.String(), to.String())
	m.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("transition")
}

func (m *Manager) snapshotReady() []func(xr.SessionOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.readyObs)
}

func (m *Manager) snapshotUnsupported() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.unsupportedObs)
}
