package script

import (
	"errors"
	"testing"
	"time"

	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/testutil/testlog"
	"github.com/uGboly/xrblocks/internal/xr"
)

type fakeGraph struct {
	scripts []any
}

func (g *fakeGraph) add(s any) {
	g.scripts = append(g.scripts, s)
}

func (g *fakeGraph) remove(s any) {
	for i, cur := range g.scripts {
		if cur == s {
			g.scripts = append(g.scripts[:i], g.scripts[i+1:]...)
			return
		}
	}
}

func (g *fakeGraph) VisitScripts(fn func(script any)) {
	for _, s := range g.scripts {
		fn(s)
	}
}

func (g *fakeGraph) HasOverlayContent() bool { return false }

type fakeWorld struct {
	steps int
}

func (w *fakeWorld) Step(_ time.Duration) { w.steps++ }

// lifeScript records every lifecycle hook it receives.
type lifeScript struct {
	declared []registry.Token
	initErr  error

	gotDeps      map[registry.Token]any
	inits        int
	physicsInits int
	disposes     int
	updates      int
	physicsSteps int
	order        []string
}

func (s *lifeScript) Dependencies() []registry.Token { return s.declared }

func (s *lifeScript) Init(deps map[registry.Token]any) error {
	s.inits++
	s.gotDeps = deps
	s.order = append(s.order, "init")
	return s.initErr
}

func (s *lifeScript) InitPhysics(_ xr.PhysicsWorld) {
	s.physicsInits++
	s.order = append(s.order, "init_physics")
}

func (s *lifeScript) Dispose() {
	s.disposes++
	s.order = append(s.order, "dispose")
}

func (s *lifeScript) Update(_ xr.FrameContext) {
	s.updates++
	s.order = append(s.order, "update")
}

func (s *lifeScript) PhysicsStep() {
	s.physicsSteps++
	s.order = append(s.order, "physics_step")
}

// asyncScript resolves its init off-loop through a caller-held channel.
type asyncScript struct {
	done    chan error
	updates int
}

func (s *asyncScript) InitAsync(_ map[registry.Token]any) <-chan error { return s.done }

func (s *asyncScript) Update(_ xr.FrameContext) { s.updates++ }

type panicScript struct {
	updates int
}

func (s *panicScript) Update(_ xr.FrameContext) {
	s.updates++
	panic("update exploded")
}

type inputScript struct {
	selecting int
	squeezing int
	starts    int
	ends      int
}

func (s *inputScript) OnSelecting(_ xr.InputEvent) { s.selecting++ }
func (s *inputScript) OnSqueezing(_ xr.InputEvent) { s.squeezing++ }
func (s *inputScript) OnSelectStart(_ xr.InputEvent) {
	s.starts++
}
func (s *inputScript) OnSelectEnd(_ xr.InputEvent) {
	s.ends++
}

type sessionScript struct {
	started int
	ended   int
}

func (s *sessionScript) OnSessionStarted(_ xr.SessionHandle) { s.started++ }
func (s *sessionScript) OnSessionEnded()                     { s.ended++ }

type fakeSource struct {
	id        string
	selecting bool
	squeezing bool
}

func (s *fakeSource) ID() string      { return s.id }
func (s *fakeSource) Selecting() bool { return s.selecting }
func (s *fakeSource) Squeezing() bool { return s.squeezing }

func frame() xr.FrameContext {
	return xr.FrameContext{Time: time.Now(), Delta: 16 * time.Millisecond}
}

func TestInitBeforeUpdateExactlyOnce(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &lifeScript{}
	g.add(a)

	for i := 0; i < 3; i++ {
		m.Sync(g)
		m.Update(frame())
	}

	if a.inits != 1 {
		t.Fatalf("expected one init, got %d", a.inits)
	}
	if a.updates != 3 {
		t.Fatalf("expected three updates, got %d", a.updates)
	}
	if a.order[0] != "init" || a.order[1] != "update" {
		t.Fatalf("init must precede update, got %v", a.order)
	}
}

func TestRemoveDisposesOnceAndStopsUpdates(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &lifeScript{}
	g.add(a)

	m.Sync(g)
	m.Update(frame())

	g.remove(a)
	m.Sync(g)
	m.Update(frame())
	m.Sync(g)
	m.Update(frame())

	if a.disposes != 1 {
		t.Fatalf("expected one dispose, got %d", a.disposes)
	}
	if a.updates != 1 {
		t.Fatalf("expected no updates after removal, got %d", a.updates)
	}
}

func TestMissingDependencyIsolatedPerEntry(t *testing.T) {
	testlog.Start(t)
	reg := registry.NewRegistry()
	if err := reg.Register("svc.present", &struct{}{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	g := &fakeGraph{}
	m := NewManager(reg, nil)
	broken := &lifeScript{declared: []registry.Token{"svc.absent"}}
	healthy := &lifeScript{declared: []registry.Token{"svc.present"}}
	g.add(broken)
	g.add(healthy)

	m.Sync(g)
	m.Update(frame())

	if broken.inits != 0 || broken.updates != 0 {
		t.Fatalf("failed entry must be excluded, got inits=%d updates=%d", broken.inits, broken.updates)
	}
	if healthy.inits != 1 || healthy.updates != 1 {
		t.Fatalf("healthy entry must run in the same cycle, got inits=%d updates=%d", healthy.inits, healthy.updates)
	}
	if _, ok := healthy.gotDeps["svc.present"]; !ok {
		t.Fatalf("healthy entry missing resolved binding: %+v", healthy.gotDeps)
	}

	total, ready, pending, failed := m.Counts()
	if total != 2 || ready != 1 || pending != 0 || failed != 1 {
		t.Fatalf("unexpected counts: total=%d ready=%d pending=%d failed=%d", total, ready, pending, failed)
	}
}

func TestMissingDependencyIsRegistryError(t *testing.T) {
	testlog.Start(t)
	reg := registry.NewRegistry()
	_, err := reg.Resolve([]registry.Token{"svc.absent"})
	var missing *registry.MissingDependencyError
	if !errors.As(err, &missing) || missing.Token != "svc.absent" {
		t.Fatalf("expected MissingDependencyError naming svc.absent, got %v", err)
	}
}

func TestAsyncInitPendingUntilResolved(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &asyncScript{done: make(chan error, 1)}
	g.add(a)

	m.Sync(g)
	m.Update(frame())
	if a.updates != 0 {
		t.Fatalf("pending entry must not receive update, got %d", a.updates)
	}
	if _, _, pending, _ := m.Counts(); pending != 1 {
		t.Fatalf("expected one pending entry")
	}

	close(a.done)
	m.Sync(g)
	m.Update(frame())
	if a.updates != 1 {
		t.Fatalf("expected update after init resolves, got %d", a.updates)
	}
}

func TestAsyncInitFailureExcludesEntry(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &asyncScript{done: make(chan error, 1)}
	g.add(a)

	m.Sync(g)
	a.done <- errors.New("remote asset fetch failed")
	m.Sync(g)
	m.Update(frame())

	if a.updates != 0 {
		t.Fatalf("failed entry must not receive update, got %d", a.updates)
	}
	if _, _, _, failed := m.Counts(); failed != 1 {
		t.Fatalf("expected one failed entry")
	}
}

func TestAsyncEntryRemovedWhilePending(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &asyncScript{done: make(chan error, 1)}
	g.add(a)

	m.Sync(g)
	g.remove(a)
	m.Sync(g)

	close(a.done)
	m.Sync(g)
	m.Update(frame())

	if a.updates != 0 {
		t.Fatalf("removed entry must never receive update, got %d", a.updates)
	}
	if total, _, _, _ := m.Counts(); total != 0 {
		t.Fatalf("expected empty entry set, got %d", total)
	}
}

func TestPhysicsPresentInitsOnce(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), &fakeWorld{})
	a := &lifeScript{}
	g.add(a)

	m.Sync(g)
	m.Sync(g)
	m.PhysicsStep()
	m.PhysicsStep()

	if a.physicsInits != 1 {
		t.Fatalf("expected one physics init, got %d", a.physicsInits)
	}
	if a.physicsSteps != 2 {
		t.Fatalf("expected two physics steps, got %d", a.physicsSteps)
	}
	if a.order[0] != "init" || a.order[1] != "init_physics" {
		t.Fatalf("physics init must follow init, got %v", a.order)
	}
}

func TestPhysicsAbsentSkipsPhysicsHooks(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &lifeScript{}
	g.add(a)

	m.Sync(g)
	m.PhysicsStep()
	m.Update(frame())

	if a.physicsInits != 0 || a.physicsSteps != 0 {
		t.Fatalf("physics hooks must not fire without a world, got inits=%d steps=%d", a.physicsInits, a.physicsSteps)
	}
	if a.inits != 1 || a.updates != 1 {
		t.Fatalf("init and update must still fire, got inits=%d updates=%d", a.inits, a.updates)
	}
}

func TestHookPanicIsolatedPerEntry(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	bad := &panicScript{}
	good := &lifeScript{}
	g.add(bad)
	g.add(good)

	m.Sync(g)
	m.Update(frame())

	if bad.updates != 1 {
		t.Fatalf("panicking entry should have been invoked once, got %d", bad.updates)
	}
	if good.updates != 1 {
		t.Fatalf("panic must not block other entries, got %d", good.updates)
	}
}

func TestDeferredCallbacksRunExactlyOnce(t *testing.T) {
	testlog.Start(t)
	m := NewManager(registry.NewRegistry(), nil)

	runs := 0
	m.Defer(func() { runs++ })
	m.Defer(nil)

	m.FlushDeferred()
	m.FlushDeferred()

	if runs != 1 {
		t.Fatalf("expected one run, got %d", runs)
	}
}

func TestDeferredDuringFlushRunsNextCycle(t *testing.T) {
	testlog.Start(t)
	m := NewManager(registry.NewRegistry(), nil)

	second := 0
	m.Defer(func() {
		m.Defer(func() { second++ })
	})

	m.FlushDeferred()
	if second != 0 {
		t.Fatalf("nested deferred must wait for the next flush")
	}
	m.FlushDeferred()
	if second != 1 {
		t.Fatalf("expected nested deferred to run once, got %d", second)
	}
}

func TestSessionBroadcastReachesReadyEntriesOnly(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	ready := &sessionScript{}
	pending := &asyncScript{done: make(chan error, 1)}
	g.add(ready)
	g.add(pending)

	m.Sync(g)
	m.NotifySessionStarted(nil)
	m.NotifySessionEnded()

	if ready.started != 1 || ready.ended != 1 {
		t.Fatalf("ready entry must receive broadcasts, got started=%d ended=%d", ready.started, ready.ended)
	}
}

func TestPropagateInputContinuingEvents(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &inputScript{}
	g.add(a)
	m.Sync(g)

	source := &fakeSource{id: "left", selecting: true}
	m.ResetFrameState()
	m.PropagateInput([]xr.InputSource{source})
	if a.selecting != 1 {
		t.Fatalf("expected one continuing-select event, got %d", a.selecting)
	}

	source.selecting = false
	source.squeezing = true
	m.ResetFrameState()
	m.PropagateInput([]xr.InputSource{source})
	if a.selecting != 1 || a.squeezing != 1 {
		t.Fatalf("expected squeeze only, got selecting=%d squeezing=%d", a.selecting, a.squeezing)
	}

	m.NotifySelectStart(xr.InputEvent{Source: source})
	m.NotifySelectEnd(xr.InputEvent{Source: source})
	if a.starts != 1 || a.ends != 1 {
		t.Fatalf("expected edge events delivered, got starts=%d ends=%d", a.starts, a.ends)
	}
}

func TestInteractionFlagsTrackPropagationAndReset(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &lifeScript{}
	g.add(a)
	m.Sync(g)

	source := &fakeSource{id: "left", selecting: true, squeezing: true}
	m.ResetFrameState()
	m.PropagateInput([]xr.InputSource{source})

	selecting, squeezing := m.Interacting(a)
	if !selecting || !squeezing {
		t.Fatalf("expected both flags set, got selecting=%v squeezing=%v", selecting, squeezing)
	}

	m.ResetFrameState()
	selecting, squeezing = m.Interacting(a)
	if selecting || squeezing {
		t.Fatalf("flags must clear on reset, got selecting=%v squeezing=%v", selecting, squeezing)
	}

	if s, q := m.Interacting(&lifeScript{}); s || q {
		t.Fatalf("untracked script must report no interaction")
	}
}

func TestAddRemoveCountingInvariant(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)

	scripts := make([]*lifeScript, 8)
	for i := range scripts {
		scripts[i] = &lifeScript{}
	}

	// Interleave adds, removes, and syncs.
	g.add(scripts[0])
	g.add(scripts[1])
	m.Sync(g)
	g.add(scripts[2])
	g.remove(scripts[0])
	m.Sync(g)
	for _, s := range scripts[3:] {
		g.add(s)
	}
	m.Sync(g)
	g.remove(scripts[1])
	g.remove(scripts[5])
	m.Sync(g)
	m.Sync(g)

	totalInits, totalDisposes := 0, 0
	for _, s := range scripts {
		if s.inits > 1 || s.disposes > 1 {
			t.Fatalf("hook fired more than once: inits=%d disposes=%d", s.inits, s.disposes)
		}
		totalInits += s.inits
		totalDisposes += s.disposes
	}
	if totalInits != 8 {
		t.Fatalf("expected 8 inits, got %d", totalInits)
	}
	if totalDisposes != 3 {
		t.Fatalf("expected 3 disposes, got %d", totalDisposes)
	}
}

func TestDuplicateGraphNodesAdmittedOnce(t *testing.T) {
	testlog.Start(t)
	g := &fakeGraph{}
	m := NewManager(registry.NewRegistry(), nil)
	a := &lifeScript{}
	g.add(a)
	g.add(a)

	m.Sync(g)
	m.Update(frame())

	if a.inits != 1 || a.updates != 1 {
		t.Fatalf("duplicate node must be admitted once, got inits=%d updates=%d", a.inits, a.updates)
	}
}
