package artwork

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = toSet(
	"svg", "g", "use", "symbol", "path", "rect", "circle", "ellipse", "line",
	"polyline", "polygon", "text", "tspan", "defs", "style", "lineargradient",
	"radialgradient", "stop", "clippath", "mask", "filter", "feflood",
	"fecolormatrix", "fecomponenttransfer", "fecomposite", "feconvolvematrix",
	"fediffuselighting", "fedisplacementmap", "fedistantlight", "fedropshadow",
	"fefunca", "fefuncb", "fefuncg", "fefuncr", "fegaussianblur", "feimage",
	"femerge", "femergenode", "femorphology", "feoffset", "fepointlight",
	"fespecularlighting", "fespotlight", "fetile", "feturbulence", "pattern",
	"title", "desc",
)

var allowedAttrs = toSet(
	"d", "x", "y", "x1", "y1", "x2", "y2", "cx", "cy", "r", "rx", "ry",
	"width", "height", "points", "fill", "fill-opacity", "fill-rule", "stroke",
	"stroke-width", "stroke-opacity", "stroke-linecap", "stroke-linejoin",
	"stroke-miterlimit", "opacity", "transform", "id", "class", "style",
	"clip-path", "mask", "filter", "patternunits", "patterncontentunits",
	"gradientunits", "gradienttransform", "offset", "stop-color", "stop-opacity",
	"in", "in2", "result", "stddeviation", "dx", "dy", "values", "type",
	"operator", "k1", "k2", "k3", "k4", "radius", "xchannelselector",
	"ychannelselector", "scale", "surfacescale", "kernelunitlength",
	"kernelmatrix", "order", "preservealpha", "edgemode", "targetx", "targety",
	"bias", "intercept", "slope", "amplitude", "exponent", "tablevalues",
	"basefrequency", "numoctaves", "seed", "stitchtiles", "viewbox",
	"preserveaspectratio", "xlink:href", "font-family", "font-size",
	"font-weight", "text-anchor", "dominant-baseline", "visibility", "display",
)

// Attributes kept on the root element only.
var rootAttrs = toSet("xmlns", "xmlns:xlink", "version")

// Elements removed with their subtree before the allow-list runs.
var dangerousTags = toSet("script", "image", "foreignobject", "iframe", "embed", "object")

var (
	fragmentRef = regexp.MustCompile(`(?i)^\s*#[-a-z0-9_]+\s*$`)
	scriptValue = regexp.MustCompile(`(?i)javascript:|data:`)
	anyURL      = regexp.MustCompile(`(?i)url\(`)
	fragmentURL = regexp.MustCompile(`(?i)url\(\s*#[-a-z0-9_]+\s*\)`)
)

func toSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

func tagName(n *html.Node) string {
	return strings.ToLower(n.Data)
}

// Sanitize removes everything outside the allow-list from the document in
// place: dangerous elements and their content, unknown elements, unknown
// attributes, event handlers, non-fragment references, script and data URLs
// and url() values that do not point at a fragment of the same document.
func Sanitize(doc *Document) {
	removeWhere(doc.Root, func(n *html.Node) bool { return dangerousTags[tagName(n)] })
	removeWhere(doc.Root, func(n *html.Node) bool { return !allowedTags[tagName(n)] })
	walkElements(doc.Root, func(n *html.Node) bool {
		n.Attr = sanitizeAttrs(n.Attr, n == doc.Root)
		return true
	})
}

// removeWhere detaches every descendant of root that matches, together with
// its subtree.
func removeWhere(root *html.Node, match func(*html.Node) bool) {
	var doomed []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, func(n *html.Node) bool {
			if match(n) {
				doomed = append(doomed, n)
				return false
			}
			return true
		})
	}
	for _, n := range doomed {
		n.Parent.RemoveChild(n)
	}
}

func sanitizeAttrs(attrs []html.Attribute, root bool) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		name := strings.ToLower(attrName(a))
		if root && rootAttrs[name] {
			kept = append(kept, a)
			continue
		}
		if !allowedAttrs[name] || strings.HasPrefix(name, "on") {
			continue
		}
		if name == "href" || strings.HasSuffix(name, ":href") {
			if !fragmentRef.MatchString(a.Val) {
				continue
			}
		}
		if scriptValue.MatchString(a.Val) {
			continue
		}
		if anyURL.MatchString(a.Val) && !fragmentURL.MatchString(a.Val) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
