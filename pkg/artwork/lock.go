package artwork

import (
	"crypto/sha256"
	"math"

	"seehuhn.de/go/geom/matrix"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
)

// Lock is the frozen placement of one artwork on the page. BBoxPx and
// OffsetPx are in page units at scale 1 (points); the on-screen projection
// multiplies them by the viewport scale.
type Lock struct {
	NaturalSize geometry.Size  `json:"naturalSize"`
	Scale       float64        `json:"scale"`
	BBoxPx      geometry.Size  `json:"bboxPx"`
	OffsetPx    geometry.Point `json:"offsetPx"`
}

// ComputeLock fits natural into frame with one uniform scale and centers it.
func ComputeLock(natural geometry.Size, frame geometry.PageFrame) (Lock, error) {
	if !natural.Positive() {
		return Lock{}, layouterr.Newf(layouterr.ErrInvalidNaturalSize, layouterr.CategoryInput,
			"natural size %gx%g is not positive", natural.Width, natural.Height)
	}
	scale := math.Min(frame.WidthPt/natural.Width, frame.HeightPt/natural.Height)
	bbox := geometry.Size{Width: natural.Width * scale, Height: natural.Height * scale}
	return Lock{
		NaturalSize: natural,
		Scale:       scale,
		BBoxPx:      bbox,
		OffsetPx: geometry.Point{
			X: (frame.WidthPt - bbox.Width) / 2,
			Y: (frame.HeightPt - bbox.Height) / 2,
		},
	}, nil
}

// Transform maps natural artwork coordinates (origin top-left) to page
// coordinates (origin top-left).
func (l Lock) Transform() matrix.Matrix {
	return matrix.Matrix{l.Scale, 0, 0, l.Scale, l.OffsetPx.X, l.OffsetPx.Y}
}

// SlotToPage converts a position in ratios of the artwork bounding box to
// page points, origin top-left.
func (l Lock) SlotToPage(p geometry.Point) geometry.Point {
	x, y := l.Transform().Apply(p.X*l.NaturalSize.Width, p.Y*l.NaturalSize.Height)
	return geometry.Point{X: x, Y: y}
}

// Projection is the on-screen placement of locked artwork.
type Projection struct {
	ViewportScale float64
	BBox          geometry.Size
	Offset        geometry.Point
}

// Project places the locked artwork in a viewport that renders the page at
// viewportScale pixels per point. The lock itself is not touched.
func (l Lock) Project(viewportScale float64) Projection {
	return Projection{
		ViewportScale: viewportScale,
		BBox: geometry.Size{
			Width:  geometry.PdfToScreen(l.BBoxPx.Width, viewportScale),
			Height: geometry.PdfToScreen(l.BBoxPx.Height, viewportScale),
		},
		Offset: geometry.Point{
			X: geometry.PdfToScreen(l.OffsetPx.X, viewportScale),
			Y: geometry.PdfToScreen(l.OffsetPx.Y, viewportScale),
		},
	}
}

// Status is the lock state of the mounted artwork.
type Status int

const (
	Unlocked Status = iota
	Locked
)

// Digest identifies artwork content.
type Digest [sha256.Size]byte

// DigestOf returns the digest of content.
func DigestOf(content []byte) Digest {
	return sha256.Sum256(content)
}

// State is the artwork lock state machine. The zero value is Unlocked.
type State struct {
	Status   Status
	Digest   Digest
	Lock     Lock
	Prepared Prepared
}

// Event is an input of Reduce.
type Event interface{ event() }

// Loaded reports successfully prepared content.
type Loaded struct {
	Digest   Digest
	Prepared Prepared
	Lock     Lock
}

// Failed reports content that could not be prepared.
type Failed struct{ Err error }

// Unmounted reports that the artwork was removed.
type Unmounted struct{}

func (Loaded) event()    {}
func (Failed) event()    {}
func (Unmounted) event() {}

// Reduce returns the state after ev. A locked state ignores Loaded events
// for the content it already holds; different content replaces the lock.
// Failures and unmounting return to Unlocked.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case Loaded:
		if s.Status == Locked && s.Digest == ev.Digest {
			return s
		}
		return State{Status: Locked, Digest: ev.Digest, Lock: ev.Lock, Prepared: ev.Prepared}
	case Failed, Unmounted:
		return State{}
	}
	return s
}
