// Package proof draws local proof output for a ticket run: an A4 proof sheet
// PDF and an SVG preview of single pages.
//
// Proofs are drawn from the same expanded pages that are sent to the vector
// renderer, so every series value on a proof is the value the renderer
// receives. They are not a replacement for the renderer's output: only the
// standard PDF fonts are available and the source artwork is not embedded.
//
// Each proof page carries its tickets on its own optional content layer,
// named "<LayerName> (Page N)", which viewers can toggle. When a source PDF
// is given, its ticket region is drawn beneath every ticket, outside the
// layer.
//
// Main Functions:
//
// - Sheet: proof PDF of all pages
// - PageSVG: SVG preview of one page
// - CheckLayers: list and verify the ticket layers of a proof PDF
package proof

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/series"
)

// Sheet builds a proof PDF with one A4 page per output page.
func Sheet(pages []series.OutputPage, slotSpacingPt float64, cfg Config) ([]byte, error) {
	if len(pages) == 0 {
		return nil, layouterr.New(layouterr.ErrPagesInvalid, layouterr.CategoryPrecondition,
			"no output pages to proof")
	}
	if cfg.LayerName == "" {
		cfg.LayerName = DefaultConfig().LayerName
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(cfg.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("ticketseries", false)

	var under *underlay
	if len(cfg.Source) > 0 {
		var err error
		if under, err = importSource(pdf, cfg.Source, cfg.SourcePage); err != nil {
			return nil, err
		}
	}

	m := newMeasurer()
	warned := make(map[string]bool)
	for _, page := range pages {
		placed, err := layoutPage(page, slotSpacingPt, cfg.Lock, m)
		if err != nil {
			return nil, fmt.Errorf("failed to lay out page %d: %w", page.PageNumber, err)
		}
		if cfg.LogWarnings {
			for _, id := range placed.outside {
				if !warned[id] {
					warned[id] = true
					fmt.Fprintf(getLogger(cfg), "Warning: slot %s lies outside the ticket region\n", id)
				}
			}
		}
		if placed.glyphs > 0 && placed.encodingErrors > placed.glyphs/10 {
			return nil, fmt.Errorf("character encoding issues in %d of %d characters on page %d",
				placed.encodingErrors, placed.glyphs, page.PageNumber)
		}

		pdf.AddPage()
		if under != nil {
			for _, t := range placed.Tickets {
				under.draw(pdf, t, placed.Region)
			}
		}
		drawPage(pdf, placed, cfg)
		if cfg.Debug {
			fmt.Fprintf(getLogger(cfg), "[proof] page %d: %d tickets, %d characters\n",
				placed.Number, len(placed.Tickets), placed.glyphs)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPage draws the tickets of one page onto a layer of the current page.
func drawPage(pdf *fpdf.Fpdf, page placedPage, cfg Config) {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, page.Number), true)
	pdf.BeginLayer(layer)

	for _, t := range page.Tickets {
		if cfg.Outlines || cfg.Debug {
			if cfg.Debug {
				pdf.SetDrawColor(255, 0, 0)
			} else {
				pdf.SetDrawColor(156, 163, 175)
			}
			pdf.SetLineWidth(0.5)
			pdf.Rect(t.X, t.Y, t.W, t.H, "D")
		}
		for _, text := range t.Texts {
			drawText(pdf, text, cfg.Debug)
		}
	}

	pdf.EndLayer()
}

func drawText(pdf *fpdf.Fpdf, text placedText, debug bool) {
	if text.Rotation != 0 {
		pdf.TransformBegin()
		// fpdf rotates counter-clockwise, slots rotate clockwise
		pdf.TransformRotate(-text.Rotation, text.CX(), text.CY())
	}

	style := ""
	if r, g, b, ok := parseHex(text.Frame.BackgroundColor); ok {
		pdf.SetFillColor(r, g, b)
		style += "F"
	}
	if r, g, b, ok := parseHex(text.Frame.BorderColor); ok && text.Frame.BorderWidth > 0 {
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(text.Frame.BorderWidth)
		style += "D"
	}
	if style != "" {
		pdf.RoundedRect(text.X, text.Y, text.W, text.H, text.Frame.BorderRadius, "1234", style)
	}
	if debug {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.25)
		pdf.Rect(text.X, text.Y, text.W, text.H, "D")
	}

	r, g, b, _ := parseHex(text.Color)
	pdf.SetTextColor(r, g, b)
	for _, glyph := range text.Glyphs {
		pdf.SetFont(string(text.Font), "", glyph.Size)
		pdf.Text(glyph.X, glyph.Y, glyph.Latin1)
	}

	if text.Rotation != 0 {
		pdf.TransformEnd()
	}
}
