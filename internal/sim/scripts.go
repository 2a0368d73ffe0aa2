package sim

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/uGboly/xrblocks/internal/logging"
	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/xr"
)

// TokenClock binds the shared clock service.
const TokenClock registry.Token = "sim.clock"

// Clock is a registry-provided service resolved by demo scripts.
type Clock struct{}

func (Clock) DependencyToken() registry.Token {
	return TokenClock
}

func (Clock) Now() time.Time {
	return time.Now()
}

// Spinner is a demo script exercising init, update, physics, and dispose.
type Spinner struct {
	log   zerolog.Logger
	clock Clock

	updates      atomic.Uint64
	physicsTicks atomic.Uint64
	spin         float64
}

func NewSpinner() *Spinner {
	return &Spinner{log: logging.Component("sim.spinner")}
}

func (s *Spinner) Dependencies() []registry.Token {
	return []registry.Token{TokenClock}
}

func (s *Spinner) Init(deps map[registry.Token]any) error {
	clock, ok := deps[TokenClock].(Clock)
	if !ok {
		return fmt.Errorf("sim: unexpected clock binding %T", deps[TokenClock])
	}
	s.clock = clock
	s.log.Debug().Msg("spinner initialized")
	return nil
}

func (s *Spinner) Update(frame xr.FrameContext) {
	s.updates.Add(1)
	s.spin += frame.Delta.Seconds() * 0.5
}

func (s *Spinner) PhysicsStep() {
	s.physicsTicks.Add(1)
}

func (s *Spinner) Dispose() {
	s.log.Debug().
		Uint64("updates", s.updates.Load()).
		Uint64("physics_ticks", s.physicsTicks.Load()).
		Msg("spinner disposed")
}

func (s *Spinner) Updates() uint64 {
	return s.updates.Load()
}

// SelectLogger is a demo script for the input and session hooks.
type SelectLogger struct {
	log zerolog.Logger

	selects atomic.Uint64
}

func NewSelectLogger() *SelectLogger {
	return &SelectLogger{log: logging.Component("sim.selectlog")}
}

func (s *SelectLogger) OnSelectStart(e xr.InputEvent) {
	s.selects.Add(1)
	s.log.Info().Str("source", e.Source.ID()).Msg("select start")
}

func (s *SelectLogger) OnSelecting(e xr.InputEvent) {
	s.log.Debug().Str("source", e.Source.ID()).Msg("selecting")
}

func (s *SelectLogger) OnSelectEnd(e xr.InputEvent) {
	s.log.Info().Str("source", e.Source.ID()).Msg("select end")
}

func (s *SelectLogger) OnSessionStarted(_ xr.SessionHandle) {
	s.log.Info().Msg("session started")
}

func (s *SelectLogger) OnSessionEnded() {
	s.log.Info().Msg("session ended")
}

func (s *SelectLogger) Selects() uint64 {
	return s.selects.Load()
}
