// Package vector builds the generation request sent to the external
// vector-PDF renderer, checks it before any network call and runs the
// guarded generation flow.
//
// The request carries ratios only: the ticket crop as ratios of the page,
// each slot position as ratios of the artwork box and per-letter sizes and
// offsets. No pixel value crosses the boundary.
//
// Main Functions:
//
// - BuildMetadata: OutputPages + crop → Metadata
// - TicketCrop.Validate, Metadata.Validate: client-side preconditions
// - Client.Generate: POST /api/vector/generate
// - Generator.Generate: in-flight guard, golden gate, stale response discard,
//   preview handoff
package vector

import (
	"fmt"
	"math"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/series"
)

// FileType is the kind of source document.
type FileType string

const (
	FilePDF FileType = "pdf"
	FileSVG FileType = "svg"
)

// PageSizeA4 is the only page size the renderer accepts.
const PageSizeA4 = "A4"

// DefaultFont is used for slots without a font family.
const DefaultFont = "Helvetica"

// TicketCrop is the ticket region in ratios of the source page.
type TicketCrop struct {
	PageIndex   int     `json:"pageIndex"`
	XRatio      float64 `json:"xRatio"`
	YRatio      float64 `json:"yRatio"`
	WidthRatio  float64 `json:"widthRatio"`
	HeightRatio float64 `json:"heightRatio"`
}

// CropFromRect returns the crop of the first page for r.
func CropFromRect(r geometry.Rect) TicketCrop {
	return TicketCrop{XRatio: r.X, YRatio: r.Y, WidthRatio: r.Width, HeightRatio: r.Height}
}

// Rect returns the crop as a ratio rectangle.
func (c TicketCrop) Rect() geometry.Rect {
	return geometry.Rect{X: c.XRatio, Y: c.YRatio, Width: c.WidthRatio, Height: c.HeightRatio}
}

func cropError(msg string, c TicketCrop) error {
	return layouterr.New(layouterr.ErrRegionInvalid, layouterr.CategoryPrecondition, msg).
		WithContext("crop", fmt.Sprintf("x=%g y=%g w=%g h=%g", c.XRatio, c.YRatio, c.WidthRatio, c.HeightRatio))
}

// Validate checks the crop the same way the renderer does.
func (c TicketCrop) Validate() error {
	for _, v := range [...]float64{c.XRatio, c.YRatio, c.WidthRatio, c.HeightRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cropError("invalid ticket crop: contains non-finite numbers", c)
		}
	}
	if c.XRatio < 0 || c.YRatio < 0 || c.WidthRatio <= 0 || c.HeightRatio <= 0 {
		return cropError("invalid ticket crop: values must be inside the page and width/height must be > 0", c)
	}
	if c.XRatio > 1 || c.YRatio > 1 || c.WidthRatio > 1 || c.HeightRatio > 1 {
		return cropError("invalid ticket crop: each ratio must be between 0 and 1", c)
	}
	if c.XRatio+c.WidthRatio > 1 || c.YRatio+c.HeightRatio > 1 {
		return cropError("invalid ticket crop: selection extends outside the page", c)
	}
	return nil
}

// Layout describes the output pages.
type Layout struct {
	PageSize      string  `json:"pageSize"`
	TotalPages    int     `json:"totalPages"`
	SlotSpacingPt float64 `json:"slotSpacingPt"`
}

// SlotPosition is one placement of a series, in ratios of the artwork box.
type SlotPosition struct {
	XRatio float64 `json:"xRatio"`
	YRatio float64 `json:"yRatio"`
}

// Series is the replication rule of one slot.
type Series struct {
	ID              string         `json:"id"`
	Prefix          string         `json:"prefix"`
	Start           uint64         `json:"start"`
	Step            int            `json:"step"`
	PadLength       int            `json:"padLength"`
	Font            string         `json:"font"`
	FontSize        float64        `json:"fontSize"`
	LetterFontSizes []float64      `json:"letterFontSizes,omitempty"`
	LetterOffsets   []float64      `json:"letterOffsets,omitempty"`
	Slots           []SlotPosition `json:"slots"`
}

// Watermark is reserved by the renderer; requests always send none.
type Watermark struct{}

// Metadata is the body of a generation request.
type Metadata struct {
	SourceKey  string      `json:"sourcePdfKey"`
	FileType   FileType    `json:"fileType"`
	TicketCrop TicketCrop  `json:"ticketCrop"`
	Layout     Layout      `json:"layout"`
	Series     []Series    `json:"series"`
	Watermarks []Watermark `json:"watermarks"`
}

// SourceKey returns the storage key of documentID.
func SourceKey(documentID string) string {
	return "document:" + documentID
}

// Input is what BuildMetadata needs from the editing session.
type Input struct {
	DocumentID    string
	FileType      FileType
	Pages         []series.OutputPage
	Crop          *TicketCrop
	SlotSpacingPt float64
}

// BuildMetadata derives the request from expanded pages. Series rules are
// taken from the first ticket of the first page.
func BuildMetadata(in Input) (Metadata, error) {
	if in.DocumentID == "" {
		return Metadata{}, layouterr.New(layouterr.ErrSourceMissing, layouterr.CategoryPrecondition,
			"missing document id")
	}
	if len(in.Pages) == 0 {
		return Metadata{}, layouterr.New(layouterr.ErrPagesInvalid, layouterr.CategoryPrecondition,
			"output pages array is empty")
	}
	if in.Crop == nil {
		return Metadata{}, layouterr.New(layouterr.ErrCropMissing, layouterr.CategoryPrecondition,
			"missing ticket crop")
	}
	if err := in.Crop.Validate(); err != nil {
		return Metadata{}, err
	}
	fileType := in.FileType
	if fileType == "" {
		fileType = FilePDF
	}

	first := in.Pages[0]
	var firstTicket series.TicketOnPage
	if len(first.Tickets) > 0 {
		firstTicket = first.Tickets[0]
	}
	rules := make([]Series, 0, len(first.SeriesSlots))
	for _, slot := range first.SeriesSlots {
		rule, err := seriesRule(slot, firstTicket.SeriesBySlot[slot.ID])
		if err != nil {
			return Metadata{}, err
		}
		rules = append(rules, rule)
	}

	m := Metadata{
		SourceKey:  SourceKey(in.DocumentID),
		FileType:   fileType,
		TicketCrop: *in.Crop,
		Layout: Layout{
			PageSize:      PageSizeA4,
			TotalPages:    len(in.Pages),
			SlotSpacingPt: in.SlotSpacingPt,
		},
		Series:     rules,
		Watermarks: []Watermark{},
	}
	return m, m.Validate()
}

func seriesRule(slot series.Slot, first series.TicketValue) (Series, error) {
	rule := Series{
		ID:       slot.ID,
		Start:    1,
		Step:     slot.Step(),
		Font:     slot.FontFamily,
		FontSize: slot.DefaultFontSize,
		Slots:    []SlotPosition{{XRatio: slot.X, YRatio: slot.Y}},
	}
	if rule.Font == "" {
		rule.Font = DefaultFont
	}
	if rule.FontSize <= 0 {
		rule.FontSize = series.DefaultFontSize
	}
	if p, ok := series.ParsePattern(first.SeriesValue); ok {
		start, ok := p.Start()
		if !ok {
			return Series{}, layouterr.Newf(layouterr.ErrSeriesInvalid, layouterr.CategoryPrecondition,
				"series counter %q does not fit in 64 bits", p.Digits).WithContext("slot", slot.ID)
		}
		rule.Prefix, rule.Start, rule.PadLength = p.Prefix, start, p.PadLength
	}
	if first.LetterStyles != nil {
		rule.LetterFontSizes = make([]float64, len(first.LetterStyles))
		rule.LetterOffsets = make([]float64, len(first.LetterStyles))
		for i, ls := range first.LetterStyles {
			rule.LetterFontSizes[i] = ls.FontSize
			rule.LetterOffsets[i] = ls.OffsetY
		}
	}
	return rule, nil
}

func ratio(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 1
}

// Validate checks every ratio in m and the page count.
func (m Metadata) Validate() error {
	if err := m.TicketCrop.Validate(); err != nil {
		return err
	}
	if m.Layout.TotalPages < 1 {
		return layouterr.Newf(layouterr.ErrPagesInvalid, layouterr.CategoryPrecondition,
			"total pages must be at least 1, got %d", m.Layout.TotalPages)
	}
	if len(m.Series) == 0 {
		return layouterr.New(layouterr.ErrSlotMissing, layouterr.CategoryPrecondition,
			"add at least one series slot before generating")
	}
	for _, s := range m.Series {
		for _, p := range s.Slots {
			if !ratio(p.XRatio) || !ratio(p.YRatio) {
				return layouterr.Newf(layouterr.ErrSeriesInvalid, layouterr.CategoryPrecondition,
					"slot position (%g, %g) is outside the artwork", p.XRatio, p.YRatio).WithContext("slot", s.ID)
			}
		}
	}
	return nil
}
