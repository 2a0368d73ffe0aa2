package input

import (
	"github.com/uGboly/xrblocks/internal/xr"
)

// Events are the edges detected by one tracker update, in source order.
type Events struct {
	SelectStarts  []xr.InputEvent
	SelectEnds    []xr.InputEvent
	SqueezeStarts []xr.InputEvent
	SqueezeEnds   []xr.InputEvent
}

type sourceState struct {
	source    xr.InputSource
	selecting bool
	squeezing bool
}

// Tracker diffs polled input source state across frames. A source that
// disappears while selecting or squeezing yields the matching end edge using
// its last known handle.
type Tracker struct {
	prev map[string]sourceState
}

func NewTracker() *Tracker {
	return &Tracker{prev: make(map[string]sourceState)}
}

// Update ingests the current source set and returns the edges since the
// previous update. Called once per frame cycle, after input polling.
func (t *Tracker) Update(sources []xr.InputSource) Events {
	var events Events
	cur := make(map[string]sourceState, len(sources))

	for _, source := range sources {
		state := sourceState{
			source:    source,
			selecting: source.Selecting(),
			squeezing: source.Squeezing(),
		}
		cur[source.ID()] = state

		prev := t.prev[source.ID()]
		ev := xr.InputEvent{Source: source}
		if state.selecting && !prev.selecting {
			events.SelectStarts = append(events.SelectStarts, ev)
		}
		if !state.selecting && prev.selecting {
			events.SelectEnds = append(events.SelectEnds, ev)
		}
		if state.squeezing && !prev.squeezing {
			events.SqueezeStarts = append(events.SqueezeStarts, ev)
		}
		if !state.squeezing && prev.squeezing {
			events.SqueezeEnds = append(events.SqueezeEnds, ev)
		}
	}

	for id, prev := range t.prev {
		if _, ok := cur[id]; ok {
			continue
		}
		ev := xr.InputEvent{Source: prev.source}
		if prev.selecting {
			events.SelectEnds = append(events.SelectEnds, ev)
		}
		if prev.squeezing {
			events.SqueezeEnds = append(events.SqueezeEnds, ev)
		}
	}

	t.prev = cur
	return events
}
