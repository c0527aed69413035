package proof

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/ticketseries/pkg/geometry"
)

// underlay draws one page of the source PDF behind every ticket, shifted so
// that the ticket region of the source lands in the ticket box.
type underlay struct {
	importer *gofpdi.Importer
	tpl      int
}

// importSource imports page pageNum of src. The importer panics on
// malformed input; that is reported as an error.
func importSource(pdf *fpdf.Fpdf, src []byte, pageNum int) (u *underlay, err error) {
	if pageNum < 1 {
		pageNum = 1
	}
	defer func() {
		if r := recover(); r != nil {
			u, err = nil, fmt.Errorf("failed to import source page %d: %v", pageNum, r)
		}
	}()
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))
	tpl := importer.ImportPageFromStream(pdf, &rs, pageNum, "/MediaBox")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to import source page %d: %w", pageNum, err)
	}
	return &underlay{importer: importer, tpl: tpl}, nil
}

// draw places the source page clipped to ticket t.
func (u *underlay) draw(pdf *fpdf.Fpdf, t placedTicket, region geometry.Rect) {
	pdf.ClipRect(t.X, t.Y, t.W, t.H, false)
	x := t.X - region.X*geometry.A4Width
	y := t.Y - region.Y*geometry.A4Height
	u.importer.UseImportedTemplate(pdf, u.tpl, x, y, geometry.A4Width, geometry.A4Height)
	pdf.ClipEnd()
}
