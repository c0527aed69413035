package artwork

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// ViewBox is the user-space window of an SVG.
type ViewBox struct {
	X, Y, Width, Height float64
}

// Size returns the natural size described by the view box.
func (vb ViewBox) Size() geometry.Size {
	return geometry.Size{Width: vb.Width, Height: vb.Height}
}

var (
	viewBoxSep = regexp.MustCompile(`[ ,]+`)
	lengthPt   = regexp.MustCompile(`(?i)^([+-]?(?:\d+\.?\d*|\d*\.?\d+))(pt)?$`)
)

// ParseViewBox parses "x y w h" with space or comma separators. Width and
// height must be positive.
func ParseViewBox(s string) (ViewBox, bool) {
	parts := viewBoxSep.Split(strings.TrimSpace(s), -1)
	if len(parts) != 4 {
		return ViewBox{}, false
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return ViewBox{}, false
		}
		v[i] = f
	}
	if v[2] <= 0 || v[3] <= 0 {
		return ViewBox{}, false
	}
	return ViewBox{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, true
}

// ParseLength parses a positive length in points, with an optional "pt"
// suffix. Other units are not accepted.
func ParseLength(s string) (float64, bool) {
	m := lengthPt.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// NaturalViewBox returns the view box of the document root, preferring the
// viewBox attribute over width and height.
func NaturalViewBox(doc *Document) (ViewBox, error) {
	if s, ok := Attr(doc.Root, "viewBox"); ok {
		if vb, ok := ParseViewBox(s); ok {
			return vb, nil
		}
	}
	ws, _ := Attr(doc.Root, "width")
	hs, _ := Attr(doc.Root, "height")
	w, wok := ParseLength(ws)
	h, hok := ParseLength(hs)
	if wok && hok {
		return ViewBox{Width: w, Height: h}, nil
	}
	return ViewBox{}, layouterr.New(layouterr.ErrSVGNoViewBox, layouterr.CategoryInput,
		"SVG is missing a valid viewBox")
}
