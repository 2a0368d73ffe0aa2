package script

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uGboly/xrblocks/internal/logging"
	"github.com/uGboly/xrblocks/internal/observability"
	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/xr"
)

// Manager converges the tracked entry set to the script-bearing nodes present
// in the scene graph and routes hooks to ready, non-disposed entries only.
//
// All dispatch methods run on the frame driver goroutine; Defer is the one
// surface other goroutines may touch.
type Manager struct {
	registry *registry.Registry
	physics  xr.PhysicsWorld
	log      zerolog.Logger

	entries map[any]*Entry
	order   []*Entry

	deferredMu sync.Mutex
	deferred   []func()
}

// NewManager creates a manager resolving dependencies against reg. A nil
// physics world disables InitPhysics and PhysicsStep delivery entirely.
func NewManager(reg *registry.Registry, physics xr.PhysicsWorld) *Manager {
	return &Manager{
		registry: reg,
		physics:  physics,
		log:      logging.Component("script"),
		entries:  make(map[any]*Entry),
	}
}

// Sync diffs the tracked entries against the graph. Newly attached scripts
// are admitted (dependency resolution, init, physics init); detached scripts
// are disposed exactly once and dropped. In-flight async init results are
// collected first, so completion ordering is observed at sync points only.
func (m *Manager) Sync(graph xr.Graph) {
	m.collectInitResults()

	seen := make(map[any]struct{}, len(m.entries))
	order := make([]*Entry, 0, len(m.entries))
	graph.VisitScripts(func(s any) {
		if s == nil {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		entry, ok := m.entries[s]
		if !ok {
			entry = m.admit(s)
			m.entries[s] = entry
		}
		order = append(order, entry)
	})

	for s, entry := range m.entries {
		if _, ok := seen[s]; !ok {
			m.retire(entry)
			delete(m.entries, s)
		}
	}
	m.order = order
}

// collectInitResults polls every pending async init non-blockingly and
// settles entries whose result arrived.
func (m *Manager) collectInitResults() {
	for _, entry := range m.entries {
		if entry.state != taskPending || entry.initDone == nil {
			continue
		}
		select {
		case err, ok := <-entry.initDone:
			if !ok {
				err = nil
			}
			m.settleInit(entry, err)
		default:
		}
	}
}

func (m *Manager) admit(s any) *Entry {
	entry := &Entry{script: s, caps: capabilitiesOf(s), state: taskPending}

	var deps map[registry.Token]any
	if declarer, ok := s.(DependencyDeclarer); ok {
		resolved, err := m.registry.Resolve(declarer.Dependencies())
		if err != nil {
			entry.state = taskFailed
			entry.initErr = err
			m.log.Error().Err(err).Type("script", s).Msg("dependency resolution failed")
			observability.RecordScriptInit("failed")
			return entry
		}
		deps = resolved
	}

	switch {
	case entry.caps.has(capAsyncInit):
		entry.deps = deps
		entry.initDone = s.(AsyncInitializer).InitAsync(deps)
	case entry.caps.has(capInit):
		m.settleInit(entry, m.runInit(entry, deps))
	default:
		m.settleInit(entry, nil)
	}
	return entry
}

// runInit invokes a synchronous Init with panic isolation.
func (m *Manager) runInit(entry *Entry, deps map[registry.Token]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			observability.RecordHookPanic("init")
			err = fmt.Errorf("script: init panic: %v", r)
		}
	}()
	return entry.script.(Initializer).Init(deps)
}

// settleInit finalizes an entry's init task. Success makes the entry ready
// and, when a physics world exists, runs InitPhysics exactly once.
func (m *Manager) settleInit(entry *Entry, err error) {
	entry.initDone = nil
	entry.deps = nil
	if entry.disposed {
		// Script left the graph while its init was in flight; the result
		// is discarded.
		return
	}
	if err != nil {
		entry.state = taskFailed
		entry.initErr = err
		m.log.Error().Err(err).Type("script", entry.script).Msg("init failed")
		observability.RecordScriptInit("failed")
		return
	}
	entry.state = taskReady
	observability.RecordScriptInit("ok")
	m.initPhysicsOnce(entry)
}

func (m *Manager) initPhysicsOnce(entry *Entry) {
	if m.physics == nil || entry.physicsInitialized || !entry.caps.has(capInitPhysics) {
		return
	}
	entry.physicsInitialized = true
	m.safeHook(entry, "init_physics", func() {
		entry.script.(PhysicsInitializer).InitPhysics(m.physics)
	})
}

// retire disposes a detached entry exactly once.
func (m *Manager) retire(entry *Entry) {
	if entry.disposed {
		return
	}
	entry.disposed = true
	if entry.caps.has(capDispose) {
		m.safeHook(entry, "dispose", func() {
			entry.script.(Disposer).Dispose()
		})
	}
	observability.RecordScriptDispose()
}

// ResetFrameState clears transient per-entry interaction flags. Called once
// per frame before input propagation.
func (m *Manager) ResetFrameState() {
	for _, entry := range m.order {
		entry.selected = false
		entry.squeezed = false
	}
}

// Interacting reports whether script's entry saw a continuing select or
// squeeze since the last ResetFrameState. False for untracked scripts.
func (m *Manager) Interacting(script any) (selecting, squeezing bool) {
	entry, ok := m.entries[script]
	if !ok {
		return false, false
	}
	return entry.selected, entry.squeezed
}

// PropagateInput delivers continuing-selection and continuing-squeeze events
// for every source currently selecting or squeezing.
func (m *Manager) PropagateInput(sources []xr.InputSource) {
	for _, source := range sources {
		selecting := source.Selecting()
		squeezing := source.Squeezing()
		if !selecting && !squeezing {
			continue
		}
		ev := xr.InputEvent{Source: source}
		for _, entry := range m.order {
			if !entry.ready() {
				continue
			}
			if selecting {
				entry.selected = true
				if entry.caps.has(capSelecting) {
					m.dispatchSelecting(entry, ev)
				}
			}
			if squeezing {
				entry.squeezed = true
				if entry.caps.has(capSqueezing) {
					m.dispatchSqueezing(entry, ev)
				}
			}
		}
	}
}

func (m *Manager) dispatchSelecting(entry *Entry, ev xr.InputEvent) {
	m.safeHook(entry, "selecting", func() {
		entry.script.(SelectingHandler).OnSelecting(ev)
	})
}

func (m *Manager) dispatchSqueezing(entry *Entry, ev xr.InputEvent) {
	m.safeHook(entry, "squeezing", func() {
		entry.script.(SqueezingHandler).OnSqueezing(ev)
	})
}

// NotifySelectStart broadcasts a select-start edge to ready entries.
func (m *Manager) NotifySelectStart(ev xr.InputEvent) {
	m.broadcast(capSelectStart, "select_start", func(entry *Entry) {
		entry.script.(SelectStartHandler).OnSelectStart(ev)
	})
}

func (m *Manager) NotifySelectEnd(ev xr.InputEvent) {
	m.broadcast(capSelectEnd, "select_end", func(entry *Entry) {
		entry.script.(SelectEndHandler).OnSelectEnd(ev)
	})
}

func (m *Manager) NotifySqueezeStart(ev xr.InputEvent) {
	m.broadcast(capSqueezeStart, "squeeze_start", func(entry *Entry) {
		entry.script.(SqueezeStartHandler).OnSqueezeStart(ev)
	})
}

func (m *Manager) NotifySqueezeEnd(ev xr.InputEvent) {
	m.broadcast(capSqueezeEnd, "squeeze_end", func(entry *Entry) {
		entry.script.(SqueezeEndHandler).OnSqueezeEnd(ev)
	})
}

// NotifySessionStarted broadcasts the session handle once to every currently
// initialized entry.
func (m *Manager) NotifySessionStarted(handle xr.SessionHandle) {
	m.broadcast(capSessionStarted, "session_started", func(entry *Entry) {
		entry.script.(SessionStartedHandler).OnSessionStarted(handle)
	})
}

func (m *Manager) NotifySessionEnded() {
	m.broadcast(capSessionEnded, "session_ended", func(entry *Entry) {
		entry.script.(SessionEndedHandler).OnSessionEnded()
	})
}

func (m *Manager) NotifySimulatorStarted() {
	m.broadcast(capSimulatorStarted, "simulator_started", func(entry *Entry) {
		entry.script.(SimulatorStartedHandler).OnSimulatorStarted()
	})
}

// Defer schedules fn for the next frame's flush point. Safe from any
// goroutine; each callback runs at most once.
func (m *Manager) Defer(fn func()) {
	if fn == nil {
		return
	}
	m.deferredMu.Lock()
	m.deferred = append(m.deferred, fn)
	m.deferredMu.Unlock()
}

// FlushDeferred runs the wait-for-next-frame callbacks queued since the last
// flush. Callbacks queued during the flush run next cycle.
func (m *Manager) FlushDeferred() {
	m.deferredMu.Lock()
	pending := m.deferred
	m.deferred = nil
	m.deferredMu.Unlock()

	for _, fn := range pending {
		func() {
			defer func() {
				if r := recover(); r != nil {
					observability.RecordHookPanic("deferred")
					m.log.Error().Interface("panic", r).Msg("deferred callback panic")
				}
			}()
			fn()
		}()
	}
}

// Update invokes the per-frame update hook on every ready entry, after sync
// for the same cycle.
func (m *Manager) Update(frame xr.FrameContext) {
	m.broadcast(capUpdate, "update", func(entry *Entry) {
		entry.script.(Updater).Update(frame)
	})
}

// PhysicsStep invokes the fixed-timestep hook on every ready entry. Never
// called when the manager has no physics world.
func (m *Manager) PhysicsStep() {
	if m.physics == nil {
		return
	}
	m.broadcast(capPhysicsStep, "physics_step", func(entry *Entry) {
		entry.script.(PhysicsStepper).PhysicsStep()
	})
}

func (m *Manager) broadcast(flag capability, hook string, fn func(*Entry)) {
	for _, entry := range m.order {
		if !entry.ready() || !entry.caps.has(flag) {
			continue
		}
		m.safeHook(entry, hook, func() { fn(entry) })
	}
}

// safeHook isolates a single entry's hook failure from the rest of the cycle.
func (m *Manager) safeHook(entry *Entry, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			observability.RecordHookPanic(hook)
			m.log.Error().
				Str("hook", hook).
				Type("script", entry.script).
				Interface("panic", r).
				Msg("script hook panic")
		}
	}()
	fn()
}

// Counts reports entry totals by task state for status surfaces.
func (m *Manager) Counts() (total, ready, pending, failed int) {
	total = len(m.entries)
	for _, entry := range m.entries {
		switch entry.state {
		case taskReady:
			ready++
		case taskPending:
			pending++
		case taskFailed:
			failed++
		}
	}
	return total, ready, pending, failed
}
