package artwork

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/gardar/ticketseries/pkg/layouterr"
)

// NormalizedRootID is the id of the group that wraps the artwork content.
const NormalizedRootID = "SVG_NORMALIZED_ROOT"

// ArtworkMarker is set on the root element of normalized artwork.
const ArtworkMarker = "data-artwork-svg"

func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Normalize rewrites the root so the artwork starts at the origin: the view
// box becomes "0 0 w h", width and height equal the natural size and every
// child moves into one group translated by the negated view box origin.
func Normalize(doc *Document, vb ViewBox) {
	root := doc.Root
	if _, ok := Attr(root, "xmlns"); !ok {
		SetAttr(root, "xmlns", "http://www.w3.org/2000/svg")
	}
	SetAttr(root, ArtworkMarker, "true")
	SetAttr(root, "preserveAspectRatio", "xMidYMid meet")
	SetAttr(root, "viewBox", fmt.Sprintf("0 0 %s %s", num(vb.Width), num(vb.Height)))
	SetAttr(root, "width", num(vb.Width))
	SetAttr(root, "height", num(vb.Height))

	g := &html.Node{
		Type:      html.ElementNode,
		Data:      "g",
		Namespace: "svg",
		Attr: []html.Attribute{
			{Key: "id", Val: NormalizedRootID},
			{Key: "transform", Val: fmt.Sprintf("translate(%s %s)", num(-vb.X), num(-vb.Y))},
		},
	}
	for c := root.FirstChild; c != nil; c = root.FirstChild {
		root.RemoveChild(c)
		g.AppendChild(c)
	}
	root.AppendChild(g)
}

// Prepared is artwork ready to mount.
type Prepared struct {
	Markup  string
	ViewBox ViewBox
}

// Prepare runs the whole pipeline on raw SVG content: parse, sanitize,
// inline class styles, check for printable content, read the natural size
// and normalize.
func Prepare(content []byte) (Prepared, error) {
	doc, err := Parse(content)
	if err != nil {
		return Prepared{}, err
	}
	Sanitize(doc)
	InlineClassStyles(doc)
	if !HasPrintableContent(doc) {
		return Prepared{}, layouterr.New(layouterr.ErrSVGNoPrintable, layouterr.CategoryInput,
			"SVG contains no printable vector objects")
	}
	vb, err := NaturalViewBox(doc)
	if err != nil {
		return Prepared{}, err
	}
	Normalize(doc, vb)
	markup, err := doc.Render()
	if err != nil {
		return Prepared{}, layouterr.New(layouterr.ErrSVGParseFailed, layouterr.CategoryInput,
			"normalized SVG could not be serialized").WithCause(err)
	}
	return Prepared{Markup: markup, ViewBox: vb}, nil
}
