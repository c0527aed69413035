package series

import (
	"math"

	"github.com/gardar/ticketseries/pkg/geometry"
)

// SlotHeightPt returns the height of one ticket slot on the output page.
// Without a region the page is split evenly into TicketsPerPage slots.
func SlotHeightPt(region *geometry.Rect) float64 {
	if region == nil {
		return geometry.SnapToPt(geometry.A4Height / TicketsPerPage)
	}
	h := region.Height * geometry.A4Height
	return geometry.SnapToPt(geometry.Clamp(h, 1, geometry.A4Height-2*geometry.SafeMargin))
}

// MaxSlotSpacingPt returns the largest gap between stacked tickets that still
// keeps all of them inside the safe margins.
func MaxSlotSpacingPt(slotHeightPt float64) float64 {
	usable := (geometry.A4Height - geometry.SafeMargin) - (geometry.SafeMargin + TicketsPerPage*slotHeightPt)
	return geometry.SnapToPt(math.Max(0, usable/(TicketsPerPage-1)))
}

// ClampSlotSpacing limits spacing to [0, MaxSlotSpacingPt(slotHeightPt)].
func ClampSlotSpacing(spacing, slotHeightPt float64) float64 {
	return geometry.Clamp(spacing, 0, MaxSlotSpacingPt(slotHeightPt))
}

// TicketOriginsPt returns the top y coordinate, in points from the top of the
// page, of each stacked ticket.
func TicketOriginsPt(slotHeightPt, spacingPt float64) []float64 {
	spacingPt = ClampSlotSpacing(spacingPt, slotHeightPt)
	out := make([]float64, TicketsPerPage)
	for i := range out {
		out[i] = geometry.SnapToPt(geometry.SafeMargin + float64(i)*(slotHeightPt+spacingPt))
	}
	return out
}
