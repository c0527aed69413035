package series

import (
	"math"
	"strings"

	"github.com/gardar/ticketseries/pkg/layouterr"
)

// StandardFont names one of the PDF base-14 families used for output.
type StandardFont string

const (
	Helvetica StandardFont = "Helvetica"
	Times     StandardFont = "Times"
	Courier   StandardFont = "Courier"
)

// Ascender and descender heights per 1000 units of font size, from the
// Adobe AFM files of the base-14 fonts.
var standardMetrics = map[StandardFont]struct{ ascent, descent float64 }{
	Helvetica: {718, 207},
	Times:     {683, 217},
	Courier:   {629, 157},
}

// ResolveFont maps a CSS-style family name to the standard font used on the
// output page. Unknown families render as Helvetica.
func ResolveFont(family string) StandardFont {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "times"), strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return Times
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return Courier
	default:
		return Helvetica
	}
}

// FontMetrics are the vertical metrics of one glyph run, in points.
type FontMetrics struct {
	Font    StandardFont
	Size    float64
	Ascent  float64
	Descent float64
	Height  float64
}

// MetricsFor returns the metrics of family at fontSize*scale. A non-positive
// or non-finite effective size is a metrics error.
func MetricsFor(family string, fontSize, scale float64) (FontMetrics, error) {
	size := fontSize * scale
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return FontMetrics{}, layouterr.Newf(layouterr.ErrFontMetrics, layouterr.CategoryInput,
			"font size %v at scale %v has no usable metrics", fontSize, scale).
			WithContext("family", family)
	}
	font := ResolveFont(family)
	m := standardMetrics[font]
	fm := FontMetrics{
		Font:    font,
		Size:    size,
		Ascent:  m.ascent * size / 1000,
		Descent: m.descent * size / 1000,
	}
	fm.Height = fm.Ascent + fm.Descent
	return fm, nil
}
