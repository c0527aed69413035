package detect

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"seehuhn.de/go/geom/rect"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// Surface size of the synthetic golden pages; an integer A4-like ratio.
const (
	goldenWidthPx  = 1000
	goldenHeightPx = 1414
)

// Tolerance is the largest difference, in percent, accepted between an
// expected and a detected coordinate.
const Tolerance = 1e-9

// GoldenCase is one synthetic page with a known printable region.
type GoldenCase struct {
	ID               string
	Description      string
	Expected         Region
	ExpectedBehavior string
	FailureCondition string
	Render           func() *image.RGBA
}

// Mismatch records a golden case whose detected region differs from the
// expected one.
type Mismatch struct {
	CaseID      string
	Description string
	Expected    Region
	Actual      Region
	Detected    bool
}

func (m Mismatch) String() string {
	e, a := m.Expected, m.Actual
	var b strings.Builder
	fmt.Fprintf(&b, "Case %s: %s\n", m.CaseID, m.Description)
	fmt.Fprintf(&b, "  expected %%: x=%v, y=%v, w=%v, h=%v\n", e.XPercent, e.YPercent, e.WidthPercent, e.HeightPercent)
	if !m.Detected {
		b.WriteString("  actual   %: nothing detected")
	} else {
		fmt.Fprintf(&b, "  actual   %%: x=%v, y=%v, w=%v, h=%v", a.XPercent, a.YPercent, a.WidthPercent, a.HeightPercent)
	}
	return b.String()
}

// SuiteResult is the outcome of RunGoldenSuite.
type SuiteResult struct {
	Cases      int
	Mismatches []Mismatch
}

// OK reports whether every case matched.
func (r SuiteResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Diagnostic lists every mismatch, expected against actual percentages.
func (r SuiteResult) Diagnostic() string {
	parts := make([]string, len(r.Mismatches))
	for i, m := range r.Mismatches {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n")
}

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// intRect builds a pixel rectangle from rounded float coordinates.
func intRect(x, y, w, h float64) image.Rectangle {
	rx, ry := int(math.Round(x)), int(math.Round(y))
	return image.Rect(rx, ry, rx+int(math.Round(w)), ry+int(math.Round(h)))
}

// union returns the smallest rectangle containing rs.
func union(rs ...image.Rectangle) image.Rectangle {
	var u rect.Rect
	for i, r := range rs {
		b := rect.Rect{LLx: float64(r.Min.X), LLy: float64(r.Min.Y), URx: float64(r.Max.X), URy: float64(r.Max.Y)}
		if i == 0 {
			u = b
			continue
		}
		u.Extend(b)
	}
	return image.Rect(int(u.LLx), int(u.LLy), int(u.URx), int(u.URy))
}

func solid(w, h int, c color.Color, rs ...image.Rectangle) func() *image.RGBA {
	return func() *image.RGBA {
		img := blank(w, h)
		for _, r := range rs {
			fill(img, r, c)
		}
		return img
	}
}

// GoldenCases returns the fixed battery of synthetic pages.
func GoldenCases() []GoldenCase {
	const w, h = goldenWidthPx, goldenHeightPx
	fw, fh := float64(w), float64(h)
	size := image.Pt(w, h)
	black := color.Black

	marginX := math.Round(geometry.SafeMargin / geometry.A4Width * fw)
	marginY := math.Round(geometry.SafeMargin / geometry.A4Height * fh)

	almostFull := intRect(marginX, marginY, fw-2*marginX, fh-2*marginY)
	centeredSmall := intRect(fw*0.35, fh*0.4, fw*0.3, fh*0.2)
	topAligned := intRect(fw*0.2, marginY, fw*0.6, fh*0.7)
	bottomAligned := intRect(fw*0.2, fh-marginY-fh*0.35, fw*0.6, fh*0.35)
	multi := []image.Rectangle{
		intRect(fw*0.2, fh*0.2, fw*0.2, fh*0.15),
		intRect(fw*0.55, fh*0.25, fw*0.25, fh*0.3),
		intRect(fw*0.35, fh*0.6, fw*0.3, fh*0.2),
	}
	border := intRect(fw*0.25, fh*0.25, fw*0.5, fh*0.45)
	borderLines := []image.Rectangle{
		image.Rect(border.Min.X, border.Min.Y, border.Max.X, border.Min.Y+1),
		image.Rect(border.Min.X, border.Max.Y-1, border.Max.X, border.Max.Y),
		image.Rect(border.Min.X, border.Min.Y, border.Min.X+1, border.Max.Y),
		image.Rect(border.Max.X-1, border.Min.Y, border.Max.X, border.Max.Y),
	}
	svgLike := intRect(fw*0.18, fh*0.22, fw*0.64, fh*0.48)
	ticket := intRect(fw*0.2, fh*0.05, fw*0.6, fh*0.2)
	var stacked []image.Rectangle
	for i := 0; i < 4; i++ {
		stacked = append(stacked, ticket.Add(image.Pt(0, i*ticket.Dy())))
	}
	minimal := intRect(fw*0.45, fh*0.45, fw*0.1, fh*0.03)
	decoration := intRect(fw*0.05, fh*0.05, fw*0.9, fh*0.9)
	onDecoration := intRect(fw*0.25, fh*0.3, fw*0.5, fh*0.35)

	return []GoldenCase{
		{
			ID:               "TEST-1-FULL-PAGE-TICKET",
			Description:      "A4 page with content filling about 90% of the page",
			Expected:         RegionFromPixels(almostFull, size),
			ExpectedBehavior: "Region covers almost the whole page and is not cropped smaller.",
			FailureCondition: "detected heightPercent < 80",
			Render:           solid(w, h, black, almostFull),
		},
		{
			ID:               "TEST-2-CENTERED-SMALL-TICKET",
			Description:      "Small ticket centered on the page",
			Expected:         RegionFromPixels(centeredSmall, size),
			ExpectedBehavior: "Region tightly wraps the centered ticket.",
			FailureCondition: "region expands toward the full page",
			Render:           solid(w, h, black, centeredSmall),
		},
		{
			ID:               "TEST-3-TOP-ALIGNED-LONG-TICKET",
			Description:      "Tall ticket touching the top safe margin",
			Expected:         RegionFromPixels(topAligned, size),
			ExpectedBehavior: "Region keeps the full height and starts at the top safe margin.",
			FailureCondition: "height is capped",
			Render:           solid(w, h, black, topAligned),
		},
		{
			ID:               "TEST-4-BOTTOM-ALIGNED-TICKET",
			Description:      "Ticket touching the bottom safe margin",
			Expected:         RegionFromPixels(bottomAligned, size),
			ExpectedBehavior: "Region does not overflow the page height.",
			FailureCondition: "y + height exceeds the page",
			Render:           solid(w, h, black, bottomAligned),
		},
		{
			ID:               "TEST-5-MULTI-OBJECT-TICKET",
			Description:      "Ticket made of separate objects (text and shapes)",
			Expected:         RegionFromPixels(union(multi...), size),
			ExpectedBehavior: "Region is the union of all visible objects.",
			FailureCondition: "only the largest object is detected",
			Render:           solid(w, h, black, multi...),
		},
		{
			ID:               "TEST-6-WHITE-BG-DARK-BORDER",
			Description:      "White ticket with a thin dark border",
			Expected:         RegionFromPixels(border, size),
			ExpectedBehavior: "Region includes the border line.",
			FailureCondition: "border pixels are clipped",
			Render:           solid(w, h, black, borderLines...),
		},
		{
			ID:               "TEST-7-SVG-CONVERTED-PDF",
			Description:      "Page produced from SVG artwork",
			Expected:         RegionFromPixels(svgLike, size),
			ExpectedBehavior: "Region matches the SVG bounding box.",
			FailureCondition: "SVG and raster boxes differ",
			Render:           solid(w, h, black, svgLike),
		},
		{
			ID:               "TEST-8-FOUR-TICKETS-PER-A4",
			Description:      "Four identical tickets stacked vertically",
			Expected:         RegionFromPixels(image.Rect(ticket.Min.X, ticket.Min.Y, ticket.Max.X, ticket.Min.Y+4*ticket.Dy()), size),
			ExpectedBehavior: "Region is the union of the stacked tickets.",
			FailureCondition: "region becomes the full page",
			Render:           solid(w, h, black, stacked...),
		},
		{
			ID:               "TEST-9-MINIMAL-CONTENT",
			Description:      "Page with a single serial number only",
			Expected:         RegionFromPixels(minimal, size),
			ExpectedBehavior: "Region is tight around the minimal content.",
			FailureCondition: "page is assumed full",
			Render:           solid(w, h, black, minimal),
		},
		{
			ID:               "TEST-10-NOISE-DECORATION",
			Description:      "Near-white decorative background with the actual ticket on top",
			Expected:         RegionFromPixels(onDecoration, size),
			ExpectedBehavior: "Region follows the ticket, not the decoration.",
			FailureCondition: "background drives the region",
			Render: func() *image.RGBA {
				img := blank(w, h)
				fill(img, decoration, color.White)
				fill(img, onDecoration, black)
				return img
			},
		},
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

func matches(e, a Region) bool {
	return near(e.XPercent, a.XPercent) && near(e.YPercent, a.YPercent) &&
		near(e.WidthPercent, a.WidthPercent) && near(e.HeightPercent, a.HeightPercent)
}

// RunCases runs cases through the detector with opts.
func RunCases(cases []GoldenCase, opts Options) SuiteResult {
	res := SuiteResult{Cases: len(cases)}
	for _, c := range cases {
		actual, ok := Detect(c.Render(), opts)
		if ok && matches(c.Expected, actual) {
			continue
		}
		res.Mismatches = append(res.Mismatches, Mismatch{
			CaseID:      c.ID,
			Description: c.Description,
			Expected:    c.Expected,
			Actual:      actual,
			Detected:    ok,
		})
	}
	return res
}

// RunGoldenSuite runs the golden battery with the default options.
func RunGoldenSuite() SuiteResult {
	return RunCases(GoldenCases(), DefaultOptions())
}

// AssertGoldenSuite returns a regression error listing every mismatch, or
// nil when the whole battery passes.
func AssertGoldenSuite() error {
	return checkResult(RunGoldenSuite())
}

func checkResult(res SuiteResult) error {
	if res.OK() {
		return nil
	}
	return layouterr.Newf(layouterr.ErrGoldenMismatch, layouterr.CategoryRegression,
		"golden ticket region regression detected, refusing output generation\n%s", res.Diagnostic()).
		WithContext("failed", fmt.Sprintf("%d/%d", len(res.Mismatches), res.Cases))
}
