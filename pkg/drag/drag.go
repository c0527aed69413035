// Package drag implements pointer-driven move and resize of rectangles in
// ratio space (0..1 of a container).
//
// A drag is started by a pointer-down on a Target, which captures the pointer
// id in a Dispatcher. Every later move/up event is routed by pointer id to the
// Target that captured it, so simultaneous pointers never share state and an
// event for an unknown pointer id is ignored.
//
// Key Types:
//
// - Dispatcher: demultiplexes pointer ids to the active drag session
// - RectDragger: move and eight-handle resize of a rectangle
// - SlotDragger: position-only variant with the same move math
//
// Main Functions:
//
// - MoveRect: translate a rectangle and clamp it inside the unit square
// - ResizeRect: move the edges named by a corner, holding the opposite edges
package drag

import (
	"strings"

	"github.com/gardar/ticketseries/pkg/geometry"
)

// PointerEvent is the subset of a pointer event the primitives consume.
type PointerEvent struct {
	PointerID int
	ClientX   float64
	ClientY   float64
}

// Mode is the state of a dragger.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMoving
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeMoving:
		return "moving"
	case ModeResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Corner names the edges a resize handle moves: any combination of
// "n", "s", "e" and "w", e.g. "nw" or "e".
type Corner string

// The eight resize handles.
const (
	CornerN  Corner = "n"
	CornerS  Corner = "s"
	CornerE  Corner = "e"
	CornerW  Corner = "w"
	CornerNE Corner = "ne"
	CornerNW Corner = "nw"
	CornerSE Corner = "se"
	CornerSW Corner = "sw"
)

// Handles lists the eight resize handles.
var Handles = []Corner{CornerN, CornerNE, CornerE, CornerSE, CornerS, CornerSW, CornerW, CornerNW}

func (c Corner) has(edge string) bool {
	return strings.Contains(string(c), edge)
}

// DefaultMinSize is used for each axis of Options.MinSize that is zero.
var DefaultMinSize = geometry.Size{Width: 0.01, Height: 0.01}

// Options configures a dragger.
type Options struct {
	Enabled   bool
	Container geometry.Size // container size in pixels
	MinSize   geometry.Size // minimum width/height in ratio space
}

func (o Options) minSize() geometry.Size {
	m := o.MinSize
	if !(m.Width > 0) {
		m.Width = DefaultMinSize.Width
	}
	if !(m.Height > 0) {
		m.Height = DefaultMinSize.Height
	}
	return m
}

// usable reports whether a drag may start or continue.
func (o Options) usable() bool {
	return o.Container.Width > 0 && o.Container.Height > 0
}

// Delta converts a client-space displacement into ratios of container.
func Delta(start, now PointerEvent, container geometry.Size) (dx, dy float64) {
	return (now.ClientX - start.ClientX) / container.Width,
		(now.ClientY - start.ClientY) / container.Height
}

// MoveRect translates start by (dx, dy) and clamps both axes into [0, 1-size].
func MoveRect(start geometry.Rect, dx, dy float64) geometry.Rect {
	w := geometry.Clamp01(start.Width)
	h := geometry.Clamp01(start.Height)
	return geometry.Rect{
		X:      geometry.Clamp(start.X+dx, 0, 1-w),
		Y:      geometry.Clamp(start.Y+dy, 0, 1-h),
		Width:  w,
		Height: h,
	}
}

// ResizeRect moves the edges named by corner by (dx, dy). The opposite edge
// stays fixed, width and height never drop below min and the result never
// leaves the unit square.
func ResizeRect(start geometry.Rect, corner Corner, dx, dy float64, min geometry.Size) geometry.Rect {
	left0, top0 := start.X, start.Y
	right0, bottom0 := start.Right(), start.Bottom()

	x, y := left0, top0
	w, h := start.Width, start.Height

	if corner.has("w") {
		x = geometry.Clamp(left0+dx, 0, right0-min.Width)
		w = right0 - x
	}
	if corner.has("e") {
		x = left0
		w = geometry.Clamp(start.Width+dx, min.Width, 1-left0)
	}
	if corner.has("n") {
		y = geometry.Clamp(top0+dy, 0, bottom0-min.Height)
		h = bottom0 - y
	}
	if corner.has("s") {
		y = top0
		h = geometry.Clamp(start.Height+dy, min.Height, 1-top0)
	}

	w = geometry.Clamp(w, min.Width, 1)
	h = geometry.Clamp(h, min.Height, 1)
	return geometry.Rect{
		X:      geometry.Clamp(x, 0, 1-w),
		Y:      geometry.Clamp(y, 0, 1-h),
		Width:  w,
		Height: h,
	}
}
