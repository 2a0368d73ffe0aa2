package input

import (
	"testing"

	"github.com/uGboly/xrblocks/internal/testutil/testlog"
	"github.com/uGboly/xrblocks/internal/xr"
)

type stubSource struct {
	id        string
	selecting bool
	squeezing bool
}

func (s *stubSource) ID() string      { return s.id }
func (s *stubSource) Selecting() bool { return s.selecting }
func (s *stubSource) Squeezing() bool { return s.squeezing }

func TestSelectEdges(t *testing.T) {
	testlog.Start(t)
	tr := NewTracker()
	src := &stubSource{id: "left"}

	ev := tr.Update([]xr.InputSource{src})
	if len(ev.SelectStarts) != 0 || len(ev.SelectEnds) != 0 {
		t.Fatalf("idle source produced edges: %+v", ev)
	}

	src.selecting = true
	ev = tr.Update([]xr.InputSource{src})
	if len(ev.SelectStarts) != 1 {
		t.Fatalf("expected one select-start, got %+v", ev)
	}
	if ev.SelectStarts[0].Source.ID() != "left" {
		t.Fatalf("edge carries wrong source: %s", ev.SelectStarts[0].Source.ID())
	}

	// Held state is not an edge.
	ev = tr.Update([]xr.InputSource{src})
	if len(ev.SelectStarts) != 0 || len(ev.SelectEnds) != 0 {
		t.Fatalf("held selection produced edges: %+v", ev)
	}

	src.selecting = false
	ev = tr.Update([]xr.InputSource{src})
	if len(ev.SelectEnds) != 1 {
		t.Fatalf("expected one select-end, got %+v", ev)
	}
}

func TestSqueezeIndependentOfSelect(t *testing.T) {
	testlog.Start(t)
	tr := NewTracker()
	src := &stubSource{id: "right", selecting: true, squeezing: true}

	ev := tr.Update([]xr.InputSource{src})
	if len(ev.SelectStarts) != 1 || len(ev.SqueezeStarts) != 1 {
		t.Fatalf("expected both start edges, got %+v", ev)
	}

	src.squeezing = false
	ev = tr.Update([]xr.InputSource{src})
	if len(ev.SqueezeEnds) != 1 || len(ev.SelectEnds) != 0 {
		t.Fatalf("squeeze end must not imply select end: %+v", ev)
	}
}

func TestDisappearedSourceYieldsEndEdges(t *testing.T) {
	testlog.Start(t)
	tr := NewTracker()
	src := &stubSource{id: "left", selecting: true, squeezing: true}

	tr.Update([]xr.InputSource{src})
	ev := tr.Update(nil)

	if len(ev.SelectEnds) != 1 || len(ev.SqueezeEnds) != 1 {
		t.Fatalf("expected end edges for removed source, got %+v", ev)
	}
	if ev.SelectEnds[0].Source.ID() != "left" {
		t.Fatalf("end edge must carry the last known handle")
	}

	// The source is forgotten; nothing fires on the next update.
	ev = tr.Update(nil)
	if len(ev.SelectEnds) != 0 || len(ev.SqueezeEnds) != 0 {
		t.Fatalf("removed source fired twice: %+v", ev)
	}
}

func TestMultipleSourcesTrackedIndependently(t *testing.T) {
	testlog.Start(t)
	tr := NewTracker()
	left := &stubSource{id: "left"}
	right := &stubSource{id: "right"}

	tr.Update([]xr.InputSource{left, right})

	left.selecting = true
	ev := tr.Update([]xr.InputSource{left, right})
	if len(ev.SelectStarts) != 1 || ev.SelectStarts[0].Source.ID() != "left" {
		t.Fatalf("expected a single left edge, got %+v", ev)
	}

	right.selecting = true
	left.selecting = false
	ev = tr.Update([]xr.InputSource{left, right})
	if len(ev.SelectStarts) != 1 || ev.SelectStarts[0].Source.ID() != "right" {
		t.Fatalf("expected a right start, got %+v", ev)
	}
	if len(ev.SelectEnds) != 1 || ev.SelectEnds[0].Source.ID() != "left" {
		t.Fatalf("expected a left end, got %+v", ev)
	}
}
