package proof

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/series"
)

//go:embed templates/page.svg.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.svg.tmpl").Funcs(template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(geometry.SnapToPt(v), 'f', -1, 64)
	},
}).ParseFS(templateFS, "templates/page.svg.tmpl"))

// FrameFill returns the frame background, or "none".
func (t placedText) FrameFill() string {
	return hexColor(t.Frame.BackgroundColor, "none")
}

// FrameStroke returns the frame border color, or "" when there is no border.
func (t placedText) FrameStroke() string {
	if t.Frame.BorderWidth <= 0 {
		return ""
	}
	return hexColor(t.Frame.BorderColor, "")
}

type svgPage struct {
	Width, Height float64
	Outlines      bool
	Debug         bool
	Number        int
	Tickets       []placedTicket
}

// PageSVG renders one output page as a standalone SVG document sized to A4
// in points.
func PageSVG(page series.OutputPage, slotSpacingPt float64, cfg Config) (string, error) {
	placed, err := layoutPage(page, slotSpacingPt, cfg.Lock, newMeasurer())
	if err != nil {
		return "", fmt.Errorf("failed to lay out page %d: %w", page.PageNumber, err)
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, svgPage{
		Width:    geometry.A4Width,
		Height:   geometry.A4Height,
		Outlines: cfg.Outlines,
		Debug:    cfg.Debug,
		Number:   placed.Number,
		Tickets:  placed.Tickets,
	})
	if err != nil {
		return "", fmt.Errorf("error rendering page template: %w", err)
	}
	return buf.String(), nil
}
