package drag

import (
	"github.com/gardar/ticketseries/pkg/geometry"
)

type dragState struct {
	pointerID int
	start     PointerEvent
	startRect geometry.Rect
	mode      Mode
	corner    Corner
}

// RectDragger moves and resizes one rectangle. The rectangle it emits is
// always clamped: callers never need to correct it.
type RectDragger struct {
	rect     geometry.Rect
	opts     Options
	onChange func(geometry.Rect)
	state    *dragState
}

// NewRectDragger creates a dragger for r. onChange receives every new
// rectangle produced during a drag; it may be nil.
func NewRectDragger(r geometry.Rect, opts Options, onChange func(geometry.Rect)) *RectDragger {
	return &RectDragger{rect: r, opts: opts, onChange: onChange}
}

// Rect returns the current rectangle.
func (d *RectDragger) Rect() geometry.Rect { return d.rect }

// SetRect replaces the rectangle. A drag in progress keeps its snapshot.
func (d *RectDragger) SetRect(r geometry.Rect) { d.rect = r }

// SetOptions replaces the options, e.g. after the container was resized.
func (d *RectDragger) SetOptions(opts Options) { d.opts = opts }

// Cancel abandons a drag in progress. Later events of its pointer are
// ignored until a new drag begins.
func (d *RectDragger) Cancel() { d.state = nil }

// Mode returns the current state.
func (d *RectDragger) Mode() Mode {
	if d.state == nil {
		return ModeIdle
	}
	return d.state.mode
}

// Corner returns the handle being dragged while resizing.
func (d *RectDragger) Corner() Corner {
	if d.state == nil {
		return ""
	}
	return d.state.corner
}

// Body returns the target that moves the whole rectangle.
func (d *RectDragger) Body() Target { return moveTarget{d} }

// Handle returns the target for the resize handle at corner.
func (d *RectDragger) Handle(corner Corner) Target { return resizeTarget{d, corner} }

func (d *RectDragger) begin(ev PointerEvent, mode Mode, corner Corner) bool {
	if !d.opts.Enabled || !d.opts.usable() || d.state != nil {
		return false
	}
	d.state = &dragState{
		pointerID: ev.PointerID,
		start:     ev,
		startRect: d.rect,
		mode:      mode,
		corner:    corner,
	}
	return true
}

func (d *RectDragger) move(ev PointerEvent) {
	st := d.state
	if st == nil || ev.PointerID != st.pointerID || !d.opts.usable() {
		return
	}
	dx, dy := Delta(st.start, ev, d.opts.Container)

	var next geometry.Rect
	if st.mode == ModeMoving {
		next = MoveRect(st.startRect, dx, dy)
	} else {
		next = ResizeRect(st.startRect, st.corner, dx, dy, d.opts.minSize())
	}
	d.rect = next
	if d.onChange != nil {
		d.onChange(next)
	}
}

func (d *RectDragger) end(ev PointerEvent) {
	if d.state == nil || ev.PointerID != d.state.pointerID {
		return
	}
	d.state = nil
}

type moveTarget struct{ d *RectDragger }

func (t moveTarget) Begin(ev PointerEvent) bool { return t.d.begin(ev, ModeMoving, "") }
func (t moveTarget) Move(ev PointerEvent)       { t.d.move(ev) }
func (t moveTarget) End(ev PointerEvent)        { t.d.end(ev) }

type resizeTarget struct {
	d      *RectDragger
	corner Corner
}

func (t resizeTarget) Begin(ev PointerEvent) bool { return t.d.begin(ev, ModeResizing, t.corner) }
func (t resizeTarget) Move(ev PointerEvent)       { t.d.move(ev) }
func (t resizeTarget) End(ev PointerEvent)        { t.d.end(ev) }
