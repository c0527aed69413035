package geometry

import (
	"seehuhn.de/go/geom/rect"
)

// MinRegionSize is the smallest width and height a ticket region may have.
var MinRegionSize = Size{Width: 0.02, Height: 0.02}

// Rect is a rectangle in ratio space. X and Y are the top-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns X+Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y+Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Valid reports whether r is a usable crop rectangle: all fields finite,
// width and height positive and at most 1, the origin inside the page and
// the far edges not past it.
func (r Rect) Valid() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if !finite(v) {
			return false
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	if r.X < 0 || r.Y < 0 || r.X > 1 || r.Y > 1 {
		return false
	}
	if r.Width > 1 || r.Height > 1 {
		return false
	}
	return r.X+r.Width <= 1 && r.Y+r.Height <= 1
}

// Clamp forces r inside the unit square with at least min width and height.
// The size is clamped first, then the origin.
func (r Rect) Clamp(min Size) Rect {
	w := Clamp(r.Width, min.Width, 1)
	h := Clamp(r.Height, min.Height, 1)
	return Rect{
		X:      Clamp(r.X, 0, 1-w),
		Y:      Clamp(r.Y, 0, 1-h),
		Width:  w,
		Height: h,
	}
}

// Pixels projects r onto a container of the given pixel size.
func (r Rect) Pixels(container Size) Rect {
	return Rect{
		X:      r.X * container.Width,
		Y:      r.Y * container.Height,
		Width:  r.Width * container.Width,
		Height: r.Height * container.Height,
	}
}

// Points converts r to a snapped point-space rectangle on frame, in PDF user
// space (origin bottom-left, y up).
func (r Rect) Points(frame PageFrame) rect.Rect {
	return rect.Rect{
		LLx: SnapToPt(r.X * frame.WidthPt),
		LLy: SnapToPt(frame.HeightPt - r.Bottom()*frame.HeightPt),
		URx: SnapToPt(r.Right() * frame.WidthPt),
		URy: SnapToPt(frame.HeightPt - r.Y*frame.HeightPt),
	}
}

// FromPoints is the inverse of Rect.Points.
func FromPoints(b rect.Rect, frame PageFrame) Rect {
	return Rect{
		X:      b.LLx / frame.WidthPt,
		Y:      (frame.HeightPt - b.URy) / frame.HeightPt,
		Width:  (b.URx - b.LLx) / frame.WidthPt,
		Height: (b.URy - b.LLy) / frame.HeightPt,
	}
}

// RectFromCorners returns the normalized rectangle spanned by two points.
func RectFromCorners(a, b Point) Rect {
	left, right := a.X, b.X
	if right < left {
		left, right = right, left
	}
	top, bottom := a.Y, b.Y
	if bottom < top {
		top, bottom = bottom, top
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}
