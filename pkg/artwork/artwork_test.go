package artwork

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/net/html"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/session"
)

func elements(doc *Document, tag string) []*html.Node {
	var out []*html.Node
	walkElements(doc.Root, func(n *html.Node) bool {
		if tagName(n) == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestPrepareNormalizes(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="10 20 200 100">` +
		`<rect x="10" y="20" width="50" height="40" fill="red" onclick="evil()"/>` +
		`<script>alert(1)</script></svg>`
	p, err := Prepare([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(ViewBox{X: 10, Y: 20, Width: 200, Height: 100}, p.ViewBox); d != "" {
		t.Errorf("view box (-want +got):\n%s", d)
	}
	for _, want := range []string{
		`viewBox="0 0 200 100"`,
		`width="200"`,
		`preserveAspectRatio="xMidYMid meet"`,
		`data-artwork-svg="true"`,
		`<g id="SVG_NORMALIZED_ROOT" transform="translate(-10 -20)"><rect`,
	} {
		if !strings.Contains(p.Markup, want) {
			t.Errorf("markup lacks %s:\n%s", want, p.Markup)
		}
	}
	for _, bad := range []string{"onclick", "script", "alert"} {
		if strings.Contains(p.Markup, bad) {
			t.Errorf("markup still contains %q:\n%s", bad, p.Markup)
		}
	}
}

func TestPrepareErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code string
	}{
		{"no svg", `<p>hello</p>`, layouterr.ErrSVGParseFailed},
		{"no size", `<svg><path d="M0 0L1 1"/></svg>`, layouterr.ErrSVGNoViewBox},
		{"zero viewBox", `<svg viewBox="0 0 0 10"><path d="M0 0L1 1"/></svg>`, layouterr.ErrSVGNoViewBox},
		{"px size", `<svg width="10px" height="10px"><path d="M0 0L1 1"/></svg>`, layouterr.ErrSVGNoViewBox},
		{"nothing printable", `<svg viewBox="0 0 10 10">` +
			`<defs><rect width="1" height="1"/></defs>` +
			`<g style="display:none"><path d="M0 0"/></g>` +
			`<g visibility="hidden"><text>x</text></g>` +
			`<rect opacity="0" width="1" height="1"/>` +
			`<line x1="0" y1="0" x2="1" y2="1"/></svg>`, layouterr.ErrSVGNoPrintable},
		{"only dangerous", `<svg viewBox="0 0 10 10"><foreignObject><rect/></foreignObject></svg>`, layouterr.ErrSVGNoPrintable},
		{"two roots", `<svg viewBox="0 0 1 1"><rect/></svg><svg viewBox="0 0 1 1"><rect/></svg>`, layouterr.ErrSVGMultipleRoots},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Prepare([]byte(c.src))
			if got := layouterr.Code(err); got != c.code {
				t.Errorf("code %q, want %q (err %v)", got, c.code, err)
			}
			if layouterr.CategoryOf(err) != layouterr.CategoryInput {
				t.Errorf("category %q", layouterr.CategoryOf(err))
			}
		})
	}
}

func TestHiddenContentNotPrintable(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"display attribute", `<rect display="none" width="1" height="1"/>`},
		{"display style", `<rect style="display: none" width="1" height="1"/>`},
		{"visibility attribute", `<text visibility="hidden">x</text>`},
		{"visibility style", `<text style="visibility:hidden">x</text>`},
		{"opacity attribute", `<path opacity="0" d="M0 0L1 1"/>`},
		{"opacity style", `<path style="opacity:0" d="M0 0L1 1"/>`},
		{"hidden ancestor", `<g visibility="hidden"><g><text>x</text></g></g>`},
		{"ancestor display none", `<g display="none"><circle r="1"/></g>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := mustParse(t, `<svg viewBox="0 0 10 10">`+c.body+`</svg>`)
			Sanitize(doc)
			InlineClassStyles(doc)
			if HasPrintableContent(doc) {
				t.Errorf("hidden content reported as printable")
			}
			_, err := Prepare([]byte(`<svg viewBox="0 0 10 10">` + c.body + `</svg>`))
			if !layouterr.HasCode(err, layouterr.ErrSVGNoPrintable) {
				t.Errorf("Prepare error %v, want %s", err, layouterr.ErrSVGNoPrintable)
			}
		})
	}
}

func TestSanitizeKeepsHidingAttributes(t *testing.T) {
	p, err := Prepare([]byte(`<svg viewBox="0 0 10 10"><rect width="1" height="1"/>` +
		`<g visibility="hidden"><text>x</text></g><g display="none"><path d="M0 0"/></g></svg>`))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`visibility="hidden"`, `display="none"`} {
		if !strings.Contains(p.Markup, want) {
			t.Errorf("markup lacks %s:\n%s", want, p.Markup)
		}
	}
}

func TestWidthHeightFallback(t *testing.T) {
	doc := mustParse(t, `<svg width="300pt" height="150"><path d="M0 0L1 1"/></svg>`)
	vb, err := NaturalViewBox(doc)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(ViewBox{Width: 300, Height: 150}, vb); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestSanitizeReferences(t *testing.T) {
	doc := mustParse(t, `<svg viewBox="0 0 10 10"><defs><path id="a" d="M0 0"/></defs>`+
		`<use xlink:href="#a"/><use xlink:href="http://evil.example/x.svg#a"/><use href="#a"/>`+
		`<rect width="1" height="1" fill="url(http://evil.example/p)" stroke="url(#grad)" style="fill: javascript:x"/>`+
		`<iframe src="x"></iframe></svg>`)
	Sanitize(doc)

	uses := elements(doc, "use")
	if len(uses) != 3 {
		t.Fatalf("got %d <use>", len(uses))
	}
	if v, ok := Attr(uses[0], "xlink:href"); !ok || v != "#a" {
		t.Errorf("fragment reference dropped: %v", uses[0].Attr)
	}
	for _, u := range uses[1:] {
		if len(u.Attr) != 0 {
			t.Errorf("unexpected attributes %v", u.Attr)
		}
	}
	rect := elements(doc, "rect")[0]
	if _, ok := Attr(rect, "fill"); ok {
		t.Error("external url() kept")
	}
	if _, ok := Attr(rect, "style"); ok {
		t.Error("javascript style kept")
	}
	if v, _ := Attr(rect, "stroke"); v != "url(#grad)" {
		t.Errorf("stroke = %q", v)
	}
	out, err := doc.Render()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "iframe") || strings.Contains(out, "evil") {
		t.Errorf("unsafe content survived:\n%s", out)
	}
}

func TestInlineClassStyles(t *testing.T) {
	doc := mustParse(t, `<svg viewBox="0 0 10 10"><style>`+
		`.a{fill:#f00;stroke:blue;font-size:3px} #x{fill:green} .b:hover{fill:pink} .c{fill:url(http://e/x)}`+
		`</style>`+
		`<rect class="a" width="1" height="1"/>`+
		`<rect class="a" fill="black" width="1" height="1"/>`+
		`<rect class="a" style="stroke: red" width="1" height="1"/>`+
		`<rect class="b c" width="1" height="1"/>`+
		`<defs><rect class="a" width="1" height="1"/></defs></svg>`)
	Sanitize(doc)
	InlineClassStyles(doc)

	type paint struct{ Fill, Stroke string }
	var got []paint
	for _, r := range elements(doc, "rect") {
		f, _ := Attr(r, "fill")
		s, _ := Attr(r, "stroke")
		got = append(got, paint{f, s})
	}
	want := []paint{
		{"#f00", "blue"},
		{"black", "blue"},
		{"#f00", ""},
		{"", ""},
		{"", ""},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("paint (-want +got):\n%s", d)
	}
}

func TestDecodeDeclaredCharset(t *testing.T) {
	src := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg viewBox=\"0 0 10 10\"><text>caf\xe9</text></svg>")
	p, err := Prepare(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.Markup, "café") {
		t.Errorf("markup not decoded:\n%s", p.Markup)
	}
}

func TestParseViewBoxAndLength(t *testing.T) {
	if vb, ok := ParseViewBox(" 0,0, 10 20 "); !ok || vb.Height != 20 {
		t.Errorf("comma separated: %v %v", vb, ok)
	}
	for _, s := range []string{"0 0 0 10", "0 0 10", "a b c d", ""} {
		if _, ok := ParseViewBox(s); ok {
			t.Errorf("ParseViewBox(%q) accepted", s)
		}
	}
	lengths := map[string]float64{"12pt": 12, "12PT": 12, ".5": 0.5, "+7": 7}
	for s, want := range lengths {
		if got, ok := ParseLength(s); !ok || got != want {
			t.Errorf("ParseLength(%q) = %v, %v", s, got, ok)
		}
	}
	for _, s := range []string{"12px", "-3", "0", "", "1e3"} {
		if _, ok := ParseLength(s); ok {
			t.Errorf("ParseLength(%q) accepted", s)
		}
	}
}

func TestComputeLock(t *testing.T) {
	lock, err := ComputeLock(geometry.Size{Width: 200, Height: 100}, geometry.A4)
	if err != nil {
		t.Fatal(err)
	}
	want := Lock{
		NaturalSize: geometry.Size{Width: 200, Height: 100},
		Scale:       2.9764,
		BBoxPx:      geometry.Size{Width: 595.28, Height: 297.64},
		OffsetPx:    geometry.Point{X: 0, Y: 272.125},
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	if d := cmp.Diff(want, lock, approx); d != "" {
		t.Errorf("lock (-want +got):\n%s", d)
	}
	p := lock.SlotToPage(geometry.Point{X: 0.5, Y: 0.5})
	if d := cmp.Diff(geometry.Point{X: 297.64, Y: 420.945}, p, approx); d != "" {
		t.Errorf("slot to page (-want +got):\n%s", d)
	}

	if _, err := ComputeLock(geometry.Size{Width: 0, Height: 10}, geometry.A4); !layouterr.HasCode(err, layouterr.ErrInvalidNaturalSize) {
		t.Errorf("zero width: %v", err)
	}
}

const sample = `<svg viewBox="0 0 400 300"><rect x="10" y="10" width="100" height="50"/></svg>`

func TestLockSurvivesViewportChanges(t *testing.T) {
	store := session.NewMemoryStore()
	calls := 0
	cfg := DefaultConfig()
	cfg.DocumentID = "doc-1"
	cfg.Store = store
	a := New(cfg, func(Lock) { calls++ })

	first, err := a.Mount([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	small := first.Project(0.5)
	large := first.Project(2)
	if large.BBox.Width != 4*small.BBox.Width {
		t.Errorf("projection does not follow viewport: %v vs %v", small, large)
	}

	again, err := a.Mount([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Errorf("lock recomputed: %+v != %+v", again, first)
	}
	if calls != 1 {
		t.Errorf("onLock called %d times", calls)
	}
	if v, ok := store.Get(session.SVGKey("doc-1")); !ok || v != sample {
		t.Errorf("SVG source not cached")
	}

	other := `<svg viewBox="0 0 100 100"><circle cx="50" cy="50" r="10"/></svg>`
	next, err := a.Mount([]byte(other))
	if err != nil {
		t.Fatal(err)
	}
	if next == first || calls != 2 {
		t.Errorf("different content did not reset the lock (calls=%d)", calls)
	}

	if _, err := a.Mount([]byte(`<svg><path d="M0 0"/></svg>`)); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := a.Lock(); ok {
		t.Error("failed mount left a lock behind")
	}
}

func TestReduce(t *testing.T) {
	l1 := Lock{Scale: 1}
	l2 := Lock{Scale: 2}
	d1 := DigestOf([]byte("a"))
	d2 := DigestOf([]byte("b"))

	s := Reduce(State{}, Loaded{Digest: d1, Lock: l1})
	if s.Status != Locked || s.Lock != l1 {
		t.Fatalf("first load: %+v", s)
	}
	if s2 := Reduce(s, Loaded{Digest: d1, Lock: l2}); s2.Lock != l1 {
		t.Error("same content recomputed the lock")
	}
	if s3 := Reduce(s, Loaded{Digest: d2, Lock: l2}); s3.Lock != l2 {
		t.Error("new content kept the old lock")
	}
	if s4 := Reduce(s, Unmounted{}); s4.Status != Unlocked {
		t.Error("unmount kept the lock")
	}
}
