package series

import (
	"fmt"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// TicketsPerPage is the number of ticket copies laid out on one A4 page.
const TicketsPerPage = 4

// GlobalIndex returns the position of ticket t on page p in the whole run.
func GlobalIndex(page, ticket int) int {
	return page*TicketsPerPage + ticket
}

// PageTicket is the inverse of GlobalIndex.
func PageTicket(global int) (page, ticket int) {
	return global / TicketsPerPage, global % TicketsPerPage
}

// ValueAt returns the value of slot on the ticket with the given global index.
func ValueAt(slot Slot, global int) string {
	return Increment(slot.BaseSeries(), global*slot.Step())
}

// TicketValue is the rendered value of one slot on one ticket.
type TicketValue struct {
	SeriesValue  string        `json:"seriesValue"`
	LetterStyles []LetterStyle `json:"letterStyles"`
}

// TicketOnPage holds the value of every slot on one ticket, keyed by slot id.
type TicketOnPage struct {
	SeriesBySlot map[string]TicketValue `json:"seriesBySlot"`
}

// OutputPage is one expanded page of the run.
type OutputPage struct {
	PageNumber   int            `json:"pageNumber"`
	TicketRegion geometry.Rect  `json:"ticketRegion"`
	SeriesSlots  []Slot         `json:"seriesSlots"`
	Tickets      []TicketOnPage `json:"tickets"`
}

// Expand replicates slots across totalPages pages of TicketsPerPage tickets.
// Every page shares the same region and a copy of the slot definitions.
func Expand(region geometry.Rect, slots []Slot, totalPages int) ([]OutputPage, error) {
	if totalPages < 1 {
		return nil, layouterr.Newf(layouterr.ErrPagesInvalid, layouterr.CategoryPrecondition,
			"page count must be at least 1, got %d", totalPages)
	}
	if len(slots) == 0 {
		return nil, layouterr.New(layouterr.ErrSlotMissing, layouterr.CategoryPrecondition,
			"add at least one series slot before generating")
	}

	pages := make([]OutputPage, totalPages)
	for p := range pages {
		page := OutputPage{
			PageNumber:   p + 1,
			TicketRegion: region,
			SeriesSlots:  make([]Slot, len(slots)),
			Tickets:      make([]TicketOnPage, TicketsPerPage),
		}
		for i, s := range slots {
			page.SeriesSlots[i] = s.Clone()
		}
		for t := range page.Tickets {
			global := GlobalIndex(p, t)
			values := make(map[string]TicketValue, len(slots))
			for _, s := range slots {
				v := ValueAt(s, global)
				values[s.ID] = TicketValue{SeriesValue: v, LetterStyles: s.StylesFor(v)}
			}
			page.Tickets[t] = TicketOnPage{SeriesBySlot: values}
		}
		pages[p] = page
	}
	return pages, nil
}

// Range describes the first and last value of a run for one slot.
type Range struct {
	SlotID string
	First  string
	Last   string
}

// Ranges returns the first and last value of each slot across totalTickets.
func Ranges(slots []Slot, totalTickets int) []Range {
	out := make([]Range, 0, len(slots))
	for _, s := range slots {
		out = append(out, Range{
			SlotID: s.ID,
			First:  ValueAt(s, 0),
			Last:   ValueAt(s, totalTickets-1),
		})
	}
	return out
}

// Summary returns the human readable description of a generated run. The
// range shown is that of the first slot counted in steps of one.
func Summary(totalPages int, slots []Slot) string {
	total := totalPages * TicketsPerPage
	if len(slots) == 0 {
		return fmt.Sprintf("Generated %d pages, %d tickets", totalPages, total)
	}
	start := slots[0].BaseSeries()
	return fmt.Sprintf("Generated %d pages, %d tickets (%s → %s)",
		totalPages, total, start, EndValue(start, total))
}
