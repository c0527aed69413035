// Package geometry defines the single authoritative coordinate space used by
// every other package: an A4 page measured in PostScript points.
//
// Persisted layout values are always points or ratios of a reference frame.
// Screen pixels are a transient projection obtained by multiplying points by a
// scalar scale, and are converted back with the same scalar.
//
// Key Types:
//
// - PageFrame: the fixed page size in points
// - Rect: a rectangle in ratio space (fractions of a reference frame)
// - Size, Point: plain pairs used by the interaction code
//
// Main Functions:
//
// - PdfToScreen / ScreenToPdf: point ⇄ pixel projection
// - SnapToPt: stabilize derived floats before they become authoritative
// - PercentToPoints / PointsToPercent: percent ⇄ points along an axis
package geometry

import "math"

// A4 page size and safe printing margin, in points.
const (
	A4Width    = 595.28
	A4Height   = 841.89
	SafeMargin = 28.35 // 10mm
)

// snapPrecision is 1/1000 pt.
const snapPrecision = 1000

// PageFrame is the fixed page every other entity is expressed against.
type PageFrame struct {
	WidthPt  float64
	HeightPt float64
}

// A4 is the only page frame in use.
var A4 = PageFrame{WidthPt: A4Width, HeightPt: A4Height}

// Axis names the page dimension used for percent conversions.
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

func (a Axis) extent() float64 {
	if a == AxisHeight {
		return A4Height
	}
	return A4Width
}

// PdfToScreen projects a point value to pixels.
func PdfToScreen(pt, scale float64) float64 {
	return pt * scale
}

// ScreenToPdf converts pixels back to points using the same scale that was
// used for PdfToScreen. A zero or NaN scale returns px unchanged so that NaN
// does not propagate; callers must not rely on that value.
func ScreenToPdf(px, scale float64) float64 {
	if scale == 0 || math.IsNaN(scale) {
		return px
	}
	return px / scale
}

// SnapToPt rounds a point value to 1/1000 pt.
func SnapToPt(v float64) float64 {
	return math.Round(v*snapPrecision) / snapPrecision
}

// PercentToPoints converts a 0-100 percent of the page along axis to points.
func PercentToPoints(percent float64, axis Axis) float64 {
	return (percent / 100) * axis.extent()
}

// PointsToPercent converts points along axis to a 0-100 percent of the page.
func PointsToPercent(points float64, axis Axis) float64 {
	return (points / axis.extent()) * 100
}

// ScaleForWidth returns the projection scale for a page rendered widthPx wide.
func ScaleForWidth(widthPx float64) float64 {
	return widthPx / A4Width
}

// Size is a width/height pair.
type Size struct {
	Width  float64
	Height float64
}

// Positive reports whether both dimensions are finite and > 0.
func (s Size) Positive() bool {
	return finite(s.Width) && finite(s.Height) && s.Width > 0 && s.Height > 0
}

// Point is an x/y pair.
type Point struct {
	X float64
	Y float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
