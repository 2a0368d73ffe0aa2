package runtime

import (
	"sync/atomic"
	"time"
)

const (
	// DefaultTimestep matches a 50 Hz solver step.
	DefaultTimestep = 20 * time.Millisecond

	// maxCatchUpSteps bounds the integrations run after a stall so one long
	// pause cannot freeze the process replaying backlog.
	maxCatchUpSteps = 8
)

// Timer is the process-wide fixed-interval physics accumulator. The step
// counter is written only by the physics driver and read-only elsewhere.
type Timer struct {
	timestep time.Duration
	next     time.Time
	steps    atomic.Uint64
}

func NewTimer(timestep time.Duration) *Timer {
	if timestep <= 0 {
		timestep = DefaultTimestep
	}
	return &Timer{timestep: timestep}
}

func (t *Timer) Timestep() time.Duration {
	return t.timestep
}

// Steps returns the monotonically increasing step counter.
func (t *Timer) Steps() uint64 {
	return t.steps.Load()
}

// Advance returns how many fixed steps are due at now. The schedule never
// drifts more than one timestep from wall time on long runs; after a stall
// longer than maxCatchUpSteps timesteps the backlog is dropped and the
// schedule re-anchors at now.
func (t *Timer) Advance(now time.Time) int {
	if t.next.IsZero() {
		t.next = now.Add(t.timestep)
		return 0
	}

	due := 0
	for !t.next.After(now) {
		due++
		t.next = t.next.Add(t.timestep)
		if due == maxCatchUpSteps {
			if !t.next.After(now) {
				t.next = now.Add(t.timestep)
			}
			break
		}
	}
	t.steps.Add(uint64(due))
	return due
}
