package drag

import (
	"github.com/gardar/ticketseries/pkg/geometry"
)

// SlotCallbacks are the host hooks of a SlotDragger. All are optional.
type SlotCallbacks struct {
	// Select is called when a drag starts.
	Select func(slotID string)
	// Position receives every new top-left position during a drag.
	Position func(slotID string, p geometry.Point)
	// Release is called with the final position when the drag ends.
	Release func(slotID string, p geometry.Point)
}

// SlotDragger moves a series slot. It uses the same move math as RectDragger
// but has no resize handles.
type SlotDragger struct {
	id    string
	pos   geometry.Rect
	opts  Options
	cb    SlotCallbacks
	state *dragState
}

// NewSlotDragger creates a dragger for the slot id whose box is pos, in ratio
// space of the artwork bounding box.
func NewSlotDragger(id string, pos geometry.Rect, opts Options, cb SlotCallbacks) *SlotDragger {
	return &SlotDragger{id: id, pos: pos, opts: opts, cb: cb}
}

// Position returns the current slot box.
func (s *SlotDragger) Position() geometry.Rect { return s.pos }

// SetPosition replaces the slot box.
func (s *SlotDragger) SetPosition(pos geometry.Rect) { s.pos = pos }

// SetOptions replaces the options.
func (s *SlotDragger) SetOptions(opts Options) { s.opts = opts }

// Mode returns ModeMoving during a drag and ModeIdle otherwise.
func (s *SlotDragger) Mode() Mode {
	if s.state == nil {
		return ModeIdle
	}
	return ModeMoving
}

// Begin implements Target.
func (s *SlotDragger) Begin(ev PointerEvent) bool {
	if !s.opts.Enabled || !s.opts.usable() || s.state != nil {
		return false
	}
	if s.cb.Select != nil {
		s.cb.Select(s.id)
	}
	s.state = &dragState{pointerID: ev.PointerID, start: ev, startRect: s.pos, mode: ModeMoving}
	return true
}

// Move implements Target.
func (s *SlotDragger) Move(ev PointerEvent) {
	st := s.state
	if st == nil || ev.PointerID != st.pointerID || !s.opts.usable() {
		return
	}
	dx, dy := Delta(st.start, ev, s.opts.Container)
	s.pos = MoveRect(st.startRect, dx, dy)
	if s.cb.Position != nil {
		s.cb.Position(s.id, geometry.Point{X: s.pos.X, Y: s.pos.Y})
	}
}

// End implements Target.
func (s *SlotDragger) End(ev PointerEvent) {
	if s.state == nil || ev.PointerID != s.state.pointerID {
		return
	}
	s.state = nil
	if s.cb.Release != nil {
		s.cb.Release(s.id, geometry.Point{X: s.pos.X, Y: s.pos.Y})
	}
}
