package series

import (
	"fmt"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// Editor owns the slots of one editing session. Slots are never shared
// between editors.
type Editor struct {
	slots    []Slot
	selected string
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Slots returns a copy of the slots in creation order.
func (e *Editor) Slots() []Slot {
	out := make([]Slot, len(e.slots))
	for i, s := range e.slots {
		out[i] = s.Clone()
	}
	return out
}

// Load replaces all slots, for example from a saved job.
func (e *Editor) Load(slots []Slot) {
	e.slots = make([]Slot, len(slots))
	for i, s := range slots {
		s = s.Clone()
		s.fitLetterStyles()
		e.slots[i] = s
	}
	e.selected = ""
}

// AddSlot appends a new slot seeded with startingSeries and selects it.
func (e *Editor) AddSlot(startingSeries string) Slot {
	s := NewSlot(startingSeries, len(e.slots))
	e.slots = append(e.slots, s)
	e.selected = s.ID
	return s.Clone()
}

// Selected returns the id of the selected slot, or "".
func (e *Editor) Selected() string {
	return e.selected
}

// Select marks id as selected. Unknown ids clear the selection.
func (e *Editor) Select(id string) {
	if e.index(id) < 0 {
		e.selected = ""
		return
	}
	e.selected = id
}

// Remove deletes the slot with id.
func (e *Editor) Remove(id string) error {
	i := e.index(id)
	if i < 0 {
		return e.missing(id)
	}
	e.slots = append(e.slots[:i], e.slots[i+1:]...)
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

// Update applies fn to the slot with id. Changes to Value made through fn are
// synchronised the same way SetValue does, and LetterStyles always ends up
// with one entry per character.
func (e *Editor) Update(id string, fn func(*Slot)) error {
	i := e.index(id)
	if i < 0 {
		return e.missing(id)
	}
	s := &e.slots[i]
	before := s.Value
	fn(s)
	if s.Value != before {
		s.StartingSeries = s.Value
	}
	s.fitLetterStyles()
	return nil
}

// SetValue edits the text of slot id.
func (e *Editor) SetValue(id, value string) error {
	return e.Update(id, func(s *Slot) { s.SetValue(value) })
}

// SetLetterFontSize sets the size of character i of slot id.
func (e *Editor) SetLetterFontSize(id string, i int, size float64) error {
	var err error
	if uerr := e.Update(id, func(s *Slot) { err = s.SetLetterFontSize(i, size) }); uerr != nil {
		return uerr
	}
	return err
}

// SetLetterOffset sets the vertical offset of character i of slot id.
func (e *Editor) SetLetterOffset(id string, i int, offsetY float64) error {
	var err error
	if uerr := e.Update(id, func(s *Slot) { err = s.SetLetterOffset(i, offsetY) }); uerr != nil {
		return uerr
	}
	return err
}

// MoveTo sets the ratio position of slot id, clamped into the artwork box.
func (e *Editor) MoveTo(id string, p geometry.Point) error {
	return e.Update(id, func(s *Slot) {
		s.X = geometry.Clamp01(p.X)
		s.Y = geometry.Clamp01(p.Y)
	})
}

func (e *Editor) index(id string) int {
	for i := range e.slots {
		if e.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) missing(id string) error {
	return layouterr.New(layouterr.ErrSlotMissing, layouterr.CategoryPrecondition,
		fmt.Sprintf("no series slot with id %q", id))
}
