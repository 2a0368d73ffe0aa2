package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/uGboly/xrblocks/internal/xr"
)

// Graph is a flat, mutex-guarded scene graph. Application code mutates it at
// arbitrary times; the runtime reads it at its sync point only.
type Graph struct {
	mu      sync.RWMutex
	scripts []any
	overlay bool
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) Add(script any) {
	if script == nil {
		return
	}
	g.mu.Lock()
	g.scripts = append(g.scripts, script)
	g.mu.Unlock()
}

func (g *Graph) Remove(script any) {
	g.mu.Lock()
	for i, s := range g.scripts {
		if s == script {
			g.scripts = append(g.scripts[:i], g.scripts[i+1:]...)
			break
		}
	}
	g.mu.Unlock()
}

func (g *Graph) VisitScripts(fn func(script any)) {
	g.mu.RLock()
	snapshot := append([]any(nil), g.scripts...)
	g.mu.RUnlock()
	for _, s := range snapshot {
		fn(s)
	}
}

func (g *Graph) SetOverlayContent(v bool) {
	g.mu.Lock()
	g.overlay = v
	g.mu.Unlock()
}

func (g *Graph) HasOverlayContent() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.overlay
}

// World is a counting physics solver.
type World struct {
	steps atomic.Uint64
}

func NewWorld() *World {
	return &World{}
}

func (w *World) Step(_ time.Duration) {
	w.steps.Add(1)
}

func (w *World) Steps() uint64 {
	return w.steps.Load()
}

// Source is a controllable input source.
type Source struct {
	id        string
	selecting atomic.Bool
	squeezing atomic.Bool
}

func NewSource(id string) *Source {
	return &Source{id: id}
}

func (s *Source) ID() string      { return s.id }
func (s *Source) Selecting() bool { return s.selecting.Load() }
func (s *Source) Squeezing() bool { return s.squeezing.Load() }

func (s *Source) SetSelecting(v bool) { s.selecting.Store(v) }
func (s *Source) SetSqueezing(v bool) { s.squeezing.Store(v) }

// Input exposes a fixed source set; polling is a no-op.
type Input struct {
	sources []xr.InputSource
}

func NewInput(sources ...*Source) *Input {
	in := &Input{}
	for _, s := range sources {
		in.sources = append(in.sources, s)
	}
	return in
}

func (in *Input) Update(_ xr.FrameHandle) {}

func (in *Input) Sources() []xr.InputSource {
	return in.sources
}
