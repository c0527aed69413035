package proof

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ticketseries/pkg/artwork"
	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/series"
)

// placedGlyph is one character with its baseline origin in points from the
// top-left of the page.
type placedGlyph struct {
	Char   string
	Latin1 string
	X, Y   float64
	Size   float64
}

// placedText is one slot on one ticket.
type placedText struct {
	SlotID   string
	Family   string
	Font     series.StandardFont
	Color    string
	Rotation float64
	// slot box
	X, Y, W, H float64
	Frame      series.Frame
	Glyphs     []placedGlyph
}

// CX and CY return the rotation center.
func (t placedText) CX() float64 { return t.X + t.W/2 }
func (t placedText) CY() float64 { return t.Y + t.H/2 }

type placedTicket struct {
	Index      int
	X, Y, W, H float64
	Texts      []placedText
}

type placedPage struct {
	Number  int
	Region  geometry.Rect
	Tickets []placedTicket

	glyphs         int
	encodingErrors int
	outside        []string
}

// measurer reports string widths of the standard fonts.
type measurer interface {
	SetFont(family, style string, size float64)
	GetStringWidth(s string) float64
}

// newMeasurer returns a document that is only used for its font tables.
func newMeasurer() measurer {
	return fpdf.New("P", "pt", "A4", "")
}

// slotFrame maps slot coordinates, which are ratios and percentages of the
// artwork box, to page points. Without a lock the artwork box is the whole
// page at scale 1, as for PDF sources.
type slotFrame struct {
	lock *artwork.Lock
}

func (f slotFrame) origin(s series.Slot) geometry.Point {
	if f.lock == nil {
		return geometry.Point{X: s.X * geometry.A4Width, Y: s.Y * geometry.A4Height}
	}
	return f.lock.SlotToPage(geometry.Point{X: s.X, Y: s.Y})
}

func (f slotFrame) size(s series.Slot) (w, h float64) {
	bw, bh := geometry.A4Width, geometry.A4Height
	if f.lock != nil {
		bw, bh = f.lock.BBoxPx.Width, f.lock.BBoxPx.Height
	}
	return s.Width / 100 * bw, s.Height / 100 * bh
}

func (f slotFrame) scale() float64 {
	if f.lock == nil {
		return 1
	}
	return f.lock.Scale
}

// layoutPage positions every slot of every ticket on page. Tickets share the
// horizontal position of the ticket region and are stacked from the top safe
// margin with spacingPt between them. Slots are placed through lock when it
// is set.
func layoutPage(page series.OutputPage, spacingPt float64, lock *artwork.Lock, m measurer) (placedPage, error) {
	region := page.TicketRegion
	slotH := series.SlotHeightPt(&region)
	origins := series.TicketOriginsPt(slotH, spacingPt)
	tx := geometry.SnapToPt(region.X * geometry.A4Width)
	tw := geometry.SnapToPt(region.Width * geometry.A4Width)
	frame := slotFrame{lock: lock}

	out := placedPage{Number: page.PageNumber, Region: region}
	for _, s := range page.SeriesSlots {
		p := frame.origin(s)
		x, y := p.X/geometry.A4Width, p.Y/geometry.A4Height
		if !region.Valid() || x < region.X || y < region.Y || x > region.Right() || y > region.Bottom() {
			out.outside = append(out.outside, s.ID)
		}
	}

	for i, ticket := range page.Tickets {
		pt := placedTicket{Index: i, X: tx, Y: origins[i%len(origins)], W: tw, H: slotH}
		for _, s := range page.SeriesSlots {
			v, ok := ticket.SeriesBySlot[s.ID]
			if !ok {
				continue
			}
			text, err := layoutText(s, v, pt, region, frame, m)
			if err != nil {
				return placedPage{}, err
			}
			for _, g := range text.Glyphs {
				out.glyphs++
				if g.Latin1 == "?" && g.Char != "?" {
					out.encodingErrors++
				}
			}
			pt.Texts = append(pt.Texts, text)
		}
		out.Tickets = append(out.Tickets, pt)
	}
	return out, nil
}

func layoutText(s series.Slot, v series.TicketValue, ticket placedTicket, region geometry.Rect, frame slotFrame, m measurer) (placedText, error) {
	origin := frame.origin(s)
	w, h := frame.size(s)
	family := s.FontFamily
	if family == "" {
		family = series.DefaultFontFamily
	}
	text := placedText{
		SlotID:   s.ID,
		Family:   family,
		Font:     series.ResolveFont(family),
		Color:    hexColor(s.Color, "#000000"),
		Rotation: s.Rotation,
		X:        ticket.X + origin.X - region.X*geometry.A4Width,
		Y:        ticket.Y + origin.Y - region.Y*geometry.A4Height,
		W:        w,
		H:        h,
		Frame:    s.Frame,
	}

	glyphs := s.Glyphs(v.SeriesValue, v.LetterStyles, frame.scale())
	var ascent, total float64
	widths := make([]float64, len(glyphs))
	latin := make([]string, len(glyphs))
	for i, g := range glyphs {
		// g.FontSize already carries the lock scale
		fm, err := series.MetricsFor(family, g.FontSize, 1)
		if err != nil {
			return placedText{}, err
		}
		ascent = max(ascent, fm.Ascent)
		l, err := charmap.ISO8859_1.NewEncoder().String(g.Char)
		if err != nil {
			l = "?"
		}
		latin[i] = l
		m.SetFont(string(fm.Font), "", fm.Size)
		widths[i] = m.GetStringWidth(l)
		total += widths[i]
	}

	var x float64
	switch s.TextAlign {
	case series.AlignLeft:
		x = text.X + s.PaddingLeft
	case series.AlignRight:
		x = text.X + text.W - s.PaddingRight - total
	default:
		x = text.X + (text.W-total)/2
	}
	baseline := text.Y + s.PaddingTop + ascent
	for i, g := range glyphs {
		text.Glyphs = append(text.Glyphs, placedGlyph{
			Char:   g.Char,
			Latin1: latin[i],
			X:      geometry.SnapToPt(x),
			Y:      geometry.SnapToPt(baseline + g.OffsetY),
			Size:   g.FontSize,
		})
		x += widths[i]
	}
	return text, nil
}

// hexColor normalizes #rgb and #rrggbb to #rrggbb, returning def for
// anything else.
func hexColor(s, def string) string {
	r, g, b, ok := parseHex(s)
	if !ok {
		return def
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
