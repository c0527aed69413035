// Package detect finds the printable region of a rendered page and guards
// that logic with a fixed golden regression suite.
//
// The detector treats a pixel as ink when it is not transparent and any
// color channel is darker than Options.NonWhiteThreshold. The page is first
// sampled every Options.SampleStepPx pixels in both directions; the box found
// that way is then grown one pixel row or column at a time until no ink
// touches its edges, so the result is pixel exact for connected content.
package detect

import (
	"image"
	"image/color"

	"github.com/gardar/ticketseries/pkg/geometry"
)

// Options configures PrintableRegion.
type Options struct {
	// SampleStepPx is the distance between sampled pixels in the coarse scan.
	SampleStepPx int
	// NonWhiteThreshold is the channel value below which a pixel counts as
	// ink. 0..255.
	NonWhiteThreshold uint8
}

// DefaultOptions samples every pixel and ignores near-white decoration.
func DefaultOptions() Options {
	return Options{SampleStepPx: 1, NonWhiteThreshold: 250}
}

func (o Options) step() int {
	if o.SampleStepPx < 1 {
		return 1
	}
	return o.SampleStepPx
}

func (o Options) ink(c color.Color) bool {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return false
	}
	t := uint32(o.NonWhiteThreshold) * 0x101
	return r < t || g < t || b < t
}

// inkAt returns the ink test for img, reading *image.RGBA pixels directly.
func (o Options) inkAt(img image.Image) func(x, y int) bool {
	if rgba, ok := img.(*image.RGBA); ok {
		t := o.NonWhiteThreshold
		return func(x, y int) bool {
			i := rgba.PixOffset(x, y)
			p := rgba.Pix[i : i+4 : i+4]
			if p[3] == 0 {
				return false
			}
			return p[0] < t || p[1] < t || p[2] < t
		}
	}
	return func(x, y int) bool { return o.ink(img.At(x, y)) }
}

// PrintableRegion returns the bounding box of all ink on img. ok is false
// for a blank page.
func PrintableRegion(img image.Image, opts Options) (box image.Rectangle, ok bool) {
	bounds := img.Bounds()
	step := opts.step()
	ink := opts.inkAt(img)

	first := true
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			if !ink(x, y) {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if first {
				box, first = p, false
			} else {
				box = box.Union(p)
			}
		}
	}
	if first {
		if step == 1 {
			return image.Rectangle{}, false
		}
		// content thinner than the sampling grid: fall back to a full scan
		return PrintableRegion(img, Options{SampleStepPx: 1, NonWhiteThreshold: opts.NonWhiteThreshold})
	}
	return refine(img, box, opts), true
}

// refine grows box while ink touches the row or column just outside it.
func refine(img image.Image, box image.Rectangle, opts Options) image.Rectangle {
	bounds := img.Bounds()
	ink := opts.inkAt(img)
	rowHasInk := func(y, x0, x1 int) bool {
		for x := x0; x < x1; x++ {
			if ink(x, y) {
				return true
			}
		}
		return false
	}
	colHasInk := func(x, y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			if ink(x, y) {
				return true
			}
		}
		return false
	}

	for changed := true; changed; {
		changed = false
		if box.Min.Y > bounds.Min.Y && rowHasInk(box.Min.Y-1, box.Min.X, box.Max.X) {
			box.Min.Y--
			changed = true
		}
		if box.Max.Y < bounds.Max.Y && rowHasInk(box.Max.Y, box.Min.X, box.Max.X) {
			box.Max.Y++
			changed = true
		}
		if box.Min.X > bounds.Min.X && colHasInk(box.Min.X-1, box.Min.Y, box.Max.Y) {
			box.Min.X--
			changed = true
		}
		if box.Max.X < bounds.Max.X && colHasInk(box.Max.X, box.Min.Y, box.Max.Y) {
			box.Max.X++
			changed = true
		}
	}
	return box
}

// Region is a detected box expressed on the A4 page.
type Region struct {
	XPercent      float64 `json:"xPercent"`
	YPercent      float64 `json:"yPercent"`
	WidthPercent  float64 `json:"widthPercent"`
	HeightPercent float64 `json:"heightPercent"`
	XPt           float64 `json:"xPt"`
	YPt           float64 `json:"yPt"`
	WidthPt       float64 `json:"widthPt"`
	HeightPt      float64 `json:"heightPt"`
}

// RegionFromPixels converts a pixel box on a surface of the given size into
// page percentages and snapped points.
func RegionFromPixels(box image.Rectangle, surface image.Point) Region {
	w, h := float64(surface.X), float64(surface.Y)
	r := Region{
		XPercent:      float64(box.Min.X) / w * 100,
		YPercent:      float64(box.Min.Y) / h * 100,
		WidthPercent:  float64(box.Dx()) / w * 100,
		HeightPercent: float64(box.Dy()) / h * 100,
	}
	r.XPt = geometry.SnapToPt(geometry.PercentToPoints(r.XPercent, geometry.AxisWidth))
	r.YPt = geometry.SnapToPt(geometry.PercentToPoints(r.YPercent, geometry.AxisHeight))
	r.WidthPt = geometry.SnapToPt(geometry.PercentToPoints(r.WidthPercent, geometry.AxisWidth))
	r.HeightPt = geometry.SnapToPt(geometry.PercentToPoints(r.HeightPercent, geometry.AxisHeight))
	return r
}

// Ratio returns the region as a ratio rectangle of the page.
func (r Region) Ratio() geometry.Rect {
	return geometry.Rect{
		X:      r.XPercent / 100,
		Y:      r.YPercent / 100,
		Width:  r.WidthPercent / 100,
		Height: r.HeightPercent / 100,
	}
}

// Detect runs PrintableRegion on img and converts the result.
func Detect(img image.Image, opts Options) (Region, bool) {
	box, ok := PrintableRegion(img, opts)
	if !ok {
		return Region{}, false
	}
	b := img.Bounds()
	return RegionFromPixels(box.Sub(b.Min), b.Size()), true
}
