// Package region holds the ticket region: the crop rectangle, in ratio space
// of the page, that defines one printable ticket.
//
// A region starts absent. A pointer-down/move/up sequence on the page surface
// drafts it; releasing with zero width or height abandons the draft. Once
// present it is moved by its body and resized by eight handles through a
// drag.RectDragger with a minimum size of geometry.MinRegionSize. Replacing
// the page clears it.
//
// Generation reads the region through CropRatio, which refuses a missing or
// invalid region instead of correcting it.
package region

import (
	"fmt"

	"github.com/gardar/ticketseries/pkg/drag"
	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// State is the lifecycle state of a region.
type State int

const (
	StateAbsent State = iota
	StateDrafting
	StatePresent
	StateMoving
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateDrafting:
		return "drafting"
	case StatePresent:
		return "present"
	case StateMoving:
		return "moving"
	case StateResizing:
		return "resizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type draft struct {
	pointerID int
	start     geometry.Point
	current   geometry.Point
}

// Region is the ticket region of one page surface. It is not safe for
// concurrent use; pointer events arrive through a single drag.Dispatcher.
type Region struct {
	container geometry.Size
	present   bool
	draft     *draft
	dragger   *drag.RectDragger
	onChange  func(r geometry.Rect, ok bool)
}

// New returns an absent region on a surface of container pixels. onChange is
// called whenever the region is created, changed or cleared; ok is false
// when it was cleared. It may be nil.
func New(container geometry.Size, onChange func(r geometry.Rect, ok bool)) *Region {
	reg := &Region{container: container, onChange: onChange}
	reg.dragger = drag.NewRectDragger(geometry.Rect{}, reg.options(), func(r geometry.Rect) {
		if reg.present {
			reg.notify(r, true)
		}
	})
	return reg
}

func (reg *Region) options() drag.Options {
	return drag.Options{
		Enabled:   reg.present,
		Container: reg.container,
		MinSize:   geometry.MinRegionSize,
	}
}

func (reg *Region) notify(r geometry.Rect, ok bool) {
	if reg.onChange != nil {
		reg.onChange(r, ok)
	}
}

// State returns the current lifecycle state.
func (reg *Region) State() State {
	switch {
	case reg.draft != nil:
		return StateDrafting
	case !reg.present:
		return StateAbsent
	}
	switch reg.dragger.Mode() {
	case drag.ModeMoving:
		return StateMoving
	case drag.ModeResizing:
		return StateResizing
	}
	return StatePresent
}

// Rect returns the region and whether it is present. While drafting it
// returns the draft rectangle and false.
func (reg *Region) Rect() (geometry.Rect, bool) {
	if reg.draft != nil {
		return geometry.RectFromCorners(reg.draft.start, reg.draft.current), false
	}
	if !reg.present {
		return geometry.Rect{}, false
	}
	return reg.dragger.Rect(), true
}

// SetContainer updates the pixel size of the page surface. The region is
// stored in ratios and does not change.
func (reg *Region) SetContainer(size geometry.Size) {
	reg.container = size
	reg.dragger.SetOptions(reg.options())
}

// Set installs r directly, e.g. from a saved job. Invalid rectangles are
// rejected.
func (reg *Region) Set(r geometry.Rect) error {
	if !r.Valid() {
		return invalid(r)
	}
	reg.draft = nil
	reg.present = true
	reg.dragger.SetRect(r)
	reg.dragger.SetOptions(reg.options())
	reg.notify(r, true)
	return nil
}

// Clear removes the region, for example when the page is replaced.
func (reg *Region) Clear() {
	wasPresent := reg.present
	reg.present = false
	reg.draft = nil
	reg.dragger.Cancel()
	reg.dragger.SetRect(geometry.Rect{})
	reg.dragger.SetOptions(reg.options())
	if wasPresent {
		reg.notify(geometry.Rect{}, false)
	}
}

// CropRatio returns the region for generation. A missing region and an
// invalid one are both precondition failures.
func (reg *Region) CropRatio() (geometry.Rect, error) {
	if !reg.present {
		return geometry.Rect{}, layouterr.New(layouterr.ErrRegionMissing, layouterr.CategoryPrecondition,
			"draw a ticket region before generating")
	}
	r := reg.dragger.Rect()
	if !r.Valid() {
		return geometry.Rect{}, invalid(r)
	}
	return r, nil
}

// Body returns the drag target that moves the region.
func (reg *Region) Body() drag.Target { return reg.dragger.Body() }

// Handle returns the drag target for one of the eight resize handles.
func (reg *Region) Handle(c drag.Corner) drag.Target { return reg.dragger.Handle(c) }

// Surface returns the drag target for the page surface itself. It drafts a
// new region when none is present. Client coordinates are relative to the
// surface's top-left corner.
func (reg *Region) Surface() drag.Target { return surfaceTarget{reg} }

type surfaceTarget struct{ reg *Region }

func (t surfaceTarget) Begin(ev drag.PointerEvent) bool {
	reg := t.reg
	if reg.present || reg.draft != nil || !reg.containerUsable() {
		return false
	}
	p := reg.toRatio(ev)
	reg.draft = &draft{pointerID: ev.PointerID, start: p, current: p}
	return true
}

func (t surfaceTarget) Move(ev drag.PointerEvent) {
	reg := t.reg
	if reg.draft == nil || ev.PointerID != reg.draft.pointerID {
		return
	}
	reg.draft.current = reg.toRatio(ev)
}

func (t surfaceTarget) End(ev drag.PointerEvent) {
	reg := t.reg
	if reg.draft == nil || ev.PointerID != reg.draft.pointerID {
		return
	}
	reg.draft.current = reg.toRatio(ev)
	r := geometry.RectFromCorners(reg.draft.start, reg.draft.current)
	reg.draft = nil
	if r.Width == 0 || r.Height == 0 {
		return
	}
	r = r.Clamp(geometry.MinRegionSize)
	reg.present = true
	reg.dragger.SetRect(r)
	reg.dragger.SetOptions(reg.options())
	reg.notify(r, true)
}

func (reg *Region) containerUsable() bool {
	return reg.container.Width > 0 && reg.container.Height > 0
}

func (reg *Region) toRatio(ev drag.PointerEvent) geometry.Point {
	return geometry.Point{
		X: geometry.Clamp01(ev.ClientX / reg.container.Width),
		Y: geometry.Clamp01(ev.ClientY / reg.container.Height),
	}
}

func invalid(r geometry.Rect) error {
	return layouterr.New(layouterr.ErrRegionInvalid, layouterr.CategoryPrecondition,
		"ticket region is outside the page or has no area").
		WithContext("region", fmt.Sprintf("x=%g y=%g w=%g h=%g", r.X, r.Y, r.Width, r.Height))
}
