package drag

import (
	"sync"
)

// Target receives a drag sequence. Begin is called on pointer-down and
// returns false to decline the drag (disabled, zero-sized container, ...).
// Move and End are only called for the pointer id that Begin accepted.
type Target interface {
	Begin(ev PointerEvent) bool
	Move(ev PointerEvent)
	End(ev PointerEvent)
}

// Dispatcher routes pointer events of one page surface to the target that
// captured each pointer id.
type Dispatcher struct {
	mu       sync.Mutex
	captures map[int]Target
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{captures: make(map[int]Target)}
}

// PointerDown offers the pointer to target. A pointer id that already has a
// capture is not re-offered. It reports whether target captured the pointer.
func (d *Dispatcher) PointerDown(ev PointerEvent, target Target) bool {
	if target == nil {
		return false
	}
	d.mu.Lock()
	_, busy := d.captures[ev.PointerID]
	d.mu.Unlock()
	if busy {
		return false
	}
	if !target.Begin(ev) {
		return false
	}
	d.mu.Lock()
	d.captures[ev.PointerID] = target
	d.mu.Unlock()
	return true
}

// PointerMove forwards ev to the capturing target. Unmatched ids are ignored.
func (d *Dispatcher) PointerMove(ev PointerEvent) bool {
	d.mu.Lock()
	target, ok := d.captures[ev.PointerID]
	d.mu.Unlock()
	if !ok {
		return false
	}
	target.Move(ev)
	return true
}

// PointerUp ends the drag for ev's pointer id and releases the capture.
// Pointer-cancel is handled the same way.
func (d *Dispatcher) PointerUp(ev PointerEvent) bool {
	d.mu.Lock()
	target, ok := d.captures[ev.PointerID]
	delete(d.captures, ev.PointerID)
	d.mu.Unlock()
	if !ok {
		return false
	}
	target.End(ev)
	return true
}

// Captured reports whether pointerID is currently captured.
func (d *Dispatcher) Captured(pointerID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.captures[pointerID]
	return ok
}

// Active returns the number of drags in progress.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.captures)
}
