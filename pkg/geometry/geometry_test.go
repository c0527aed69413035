package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestProjectionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		pt := rng.Float64() * 2000
		scale := 0.01 + rng.Float64()*10
		got := ScreenToPdf(PdfToScreen(pt, scale), scale)
		if math.Abs(got-pt) > 1e-9 {
			t.Fatalf("round trip pt=%v scale=%v: got %v", pt, scale, got)
		}
	}
}

func TestScreenToPdfFalsyScale(t *testing.T) {
	for _, scale := range []float64{0, math.NaN()} {
		if got := ScreenToPdf(42, scale); got != 42 {
			t.Errorf("ScreenToPdf(42, %v) = %v, want 42", scale, got)
		}
	}
}

func TestSnapToPt(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.23456, 1.235},
		{1.2344, 1.234},
		{595.28, 595.28},
		{-0.0004, 0},
	}
	for _, tt := range tests {
		if got := SnapToPt(tt.in); got != tt.want {
			t.Errorf("SnapToPt(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPercentPoints(t *testing.T) {
	if got := PercentToPoints(100, AxisWidth); got != A4Width {
		t.Errorf("width 100%% = %v", got)
	}
	if got := PercentToPoints(50, AxisHeight); math.Abs(got-A4Height/2) > 1e-9 {
		t.Errorf("height 50%% = %v", got)
	}
	for _, p := range []float64{0, 12.5, 33.3, 99} {
		for _, axis := range []Axis{AxisWidth, AxisHeight} {
			got := PointsToPercent(PercentToPoints(p, axis), axis)
			if math.Abs(got-p) > 1e-9 {
				t.Errorf("percent round trip %v axis %d: %v", p, axis, got)
			}
		}
	}
}

func referenceValid(r Rect) bool {
	vals := []float64{r.X, r.Y, r.Width, r.Height}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0 &&
		r.X >= 0 && r.X <= 1 && r.Y >= 0 && r.Y <= 1 &&
		r.Width <= 1 && r.Height <= 1 &&
		r.X+r.Width <= 1 && r.Y+r.Height <= 1
}

func TestRectValidProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pick := func() float64 {
		switch rng.Intn(12) {
		case 0:
			return math.NaN()
		case 1:
			return math.Inf(1)
		case 2:
			return 0
		case 3:
			return 1
		default:
			return rng.Float64()*1.6 - 0.3
		}
	}
	for i := 0; i < 20000; i++ {
		r := Rect{X: pick(), Y: pick(), Width: pick(), Height: pick()}
		if got, want := r.Valid(), referenceValid(r); got != want {
			t.Fatalf("Valid(%+v) = %v, want %v", r, got, want)
		}
	}
}

func TestRectValidCases(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"full page", Rect{0, 0, 1, 1}, true},
		{"zero width", Rect{0.1, 0.1, 0, 0.2}, false},
		{"overflow right", Rect{0.6, 0.1, 0.5, 0.2}, false},
		{"overflow bottom", Rect{0.1, 0.9, 0.2, 0.2}, false},
		{"negative origin", Rect{-0.01, 0.1, 0.2, 0.2}, false},
		{"nan", Rect{math.NaN(), 0, 0.2, 0.2}, false},
		{"touching edges", Rect{0.75, 0.5, 0.25, 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectClamp(t *testing.T) {
	got := Rect{X: 0.95, Y: -0.2, Width: 0.3, Height: 0.001}.Clamp(MinRegionSize)
	want := Rect{X: 0.7, Y: 0, Width: 0.3, Height: 0.02}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Errorf("Clamp mismatch (-want +got):\n%s", d)
	}
	if !got.Valid() {
		t.Errorf("clamped rect %+v is not valid", got)
	}
}

func TestRectPointsRoundTrip(t *testing.T) {
	r := Rect{X: 0.2, Y: 0.05, Width: 0.6, Height: 0.2}
	b := r.Points(A4)
	if b.LLx != SnapToPt(0.2*A4Width) {
		t.Errorf("LLx = %v", b.LLx)
	}
	if b.URy != SnapToPt(A4Height*0.95) {
		t.Errorf("URy = %v", b.URy)
	}
	back := FromPoints(b, A4)
	if d := cmp.Diff(r, back, cmpopts.EquateApprox(0, 1e-5)); d != "" {
		t.Errorf("FromPoints mismatch (-want +got):\n%s", d)
	}
}

func TestRectFromCorners(t *testing.T) {
	got := RectFromCorners(Point{0.6, 0.7}, Point{0.2, 0.1})
	want := Rect{X: 0.2, Y: 0.1, Width: 0.4, Height: 0.6}
	if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Errorf("RectFromCorners mismatch (-want +got):\n%s", d)
	}
}
