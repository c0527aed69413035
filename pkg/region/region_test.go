package region

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gardar/ticketseries/pkg/drag"
	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

var surface = geometry.Size{Width: 1000, Height: 1414}

func ev(id int, x, y float64) drag.PointerEvent {
	return drag.PointerEvent{PointerID: id, ClientX: x, ClientY: y}
}

func TestDraftCreatesRegion(t *testing.T) {
	var last geometry.Rect
	reg := New(surface, func(r geometry.Rect, ok bool) {
		if ok {
			last = r
		}
	})
	d := drag.NewDispatcher()

	if _, err := reg.CropRatio(); !layouterr.HasCode(err, layouterr.ErrRegionMissing) {
		t.Fatalf("absent region: %v", err)
	}

	d.PointerDown(ev(1, 600, 707), reg.Surface())
	if reg.State() != StateDrafting {
		t.Fatalf("state %v, want drafting", reg.State())
	}
	d.PointerMove(ev(1, 200, 141.4))
	d.PointerUp(ev(1, 200, 141.4))

	want := geometry.Rect{X: 0.2, Y: 0.1, Width: 0.4, Height: 0.4}
	approx := cmpopts.EquateApprox(0, 1e-12)
	got, err := reg.CropRatio()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("region (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, last, approx); diff != "" {
		t.Errorf("notified (-want +got):\n%s", diff)
	}
	if reg.State() != StatePresent {
		t.Errorf("state %v, want present", reg.State())
	}
}

func TestZeroAreaDraftIsAbandoned(t *testing.T) {
	reg := New(surface, nil)
	d := drag.NewDispatcher()
	d.PointerDown(ev(1, 100, 100), reg.Surface())
	d.PointerMove(ev(1, 400, 100))
	d.PointerUp(ev(1, 400, 100))
	if reg.State() != StateAbsent {
		t.Errorf("state %v, want absent", reg.State())
	}
}

func TestTinyDraftIsClampedToMinimum(t *testing.T) {
	reg := New(surface, nil)
	d := drag.NewDispatcher()
	d.PointerDown(ev(1, 995, 1410), reg.Surface())
	d.PointerUp(ev(1, 999, 1412))
	r, ok := reg.Rect()
	if !ok {
		t.Fatal("no region")
	}
	if r.Width < geometry.MinRegionSize.Width || r.Height < geometry.MinRegionSize.Height || !r.Valid() {
		t.Errorf("region %+v not clamped", r)
	}
}

func TestMoveAndResize(t *testing.T) {
	reg := New(surface, nil)
	if err := reg.Set(geometry.Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.2}); err != nil {
		t.Fatal(err)
	}
	d := drag.NewDispatcher()

	// the surface does not draft over an existing region
	if d.PointerDown(ev(1, 10, 10), reg.Surface()) {
		t.Fatal("surface captured while a region is present")
	}

	d.PointerDown(ev(2, 200, 200), reg.Body())
	if reg.State() != StateMoving {
		t.Fatalf("state %v", reg.State())
	}
	d.PointerMove(ev(2, 5000, 200))
	d.PointerUp(ev(2, 5000, 200))
	r, _ := reg.Rect()
	if diff := cmp.Diff(0.7, r.X, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("x after move: %s", diff)
	}

	d.PointerDown(ev(3, 0, 0), reg.Handle(drag.CornerNW))
	if reg.State() != StateResizing {
		t.Fatalf("state %v", reg.State())
	}
	d.PointerMove(ev(3, 5000, 5000))
	d.PointerUp(ev(3, 5000, 5000))
	r, _ = reg.Rect()
	if r.Width < geometry.MinRegionSize.Width-1e-12 || r.Height < geometry.MinRegionSize.Height-1e-12 {
		t.Errorf("resize broke minimum: %+v", r)
	}
	if !r.Valid() {
		t.Errorf("resize produced invalid region %+v", r)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	reg := New(surface, nil)
	err := reg.Set(geometry.Rect{X: 0.9, Y: 0, Width: 0.2, Height: 0.1})
	if !layouterr.HasCode(err, layouterr.ErrRegionInvalid) {
		t.Errorf("got %v", err)
	}
	if reg.State() != StateAbsent {
		t.Errorf("invalid Set changed state to %v", reg.State())
	}
}

func TestClear(t *testing.T) {
	cleared := false
	reg := New(surface, func(_ geometry.Rect, ok bool) { cleared = !ok })
	if err := reg.Set(geometry.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}); err != nil {
		t.Fatal(err)
	}
	reg.Clear()
	if !cleared || reg.State() != StateAbsent {
		t.Errorf("cleared=%v state=%v", cleared, reg.State())
	}
	if _, err := reg.CropRatio(); !layouterr.HasCode(err, layouterr.ErrRegionMissing) {
		t.Errorf("got %v", err)
	}
}

func TestClearDuringDragEndsTheDrag(t *testing.T) {
	var events []bool
	reg := New(surface, func(_ geometry.Rect, ok bool) { events = append(events, ok) })
	if err := reg.Set(geometry.Rect{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.2}); err != nil {
		t.Fatal(err)
	}
	d := drag.NewDispatcher()
	if !d.PointerDown(ev(1, 200, 200), reg.Body()) {
		t.Fatal("body did not capture the pointer")
	}

	reg.Clear()
	d.PointerMove(ev(1, 400, 300))
	d.PointerUp(ev(1, 400, 300))

	if diff := cmp.Diff([]bool{true, false}, events); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}
	if reg.State() != StateAbsent {
		t.Errorf("state %v, want absent", reg.State())
	}
	if r, ok := reg.Rect(); ok || r != (geometry.Rect{}) {
		t.Errorf("rect %+v ok=%v after clear", r, ok)
	}

	// a region set afterwards is not moved by the old pointer
	want := geometry.Rect{X: 0.5, Y: 0.5, Width: 0.2, Height: 0.2}
	if err := reg.Set(want); err != nil {
		t.Fatal(err)
	}
	d.PointerDown(ev(2, 0, 0), reg.Body())
	d.PointerUp(ev(2, 0, 0))
	if got, _ := reg.Rect(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestContainerResizeKeepsRatios(t *testing.T) {
	reg := New(surface, nil)
	want := geometry.Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.45}
	if err := reg.Set(want); err != nil {
		t.Fatal(err)
	}
	reg.SetContainer(geometry.Size{Width: 500, Height: 707})
	got, _ := reg.Rect()
	if got != want {
		t.Errorf("got %+v", got)
	}
}
