package artwork

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var printableTags = toSet("path", "rect", "circle", "ellipse", "polyline", "polygon", "text")

var nonPrintableContainers = toSet("defs", "clippath", "mask", "filter", "pattern", "foreignobject")

// hiddenSelf reports whether n itself is hidden by display, visibility or a
// non-positive opacity, given as attribute or inline style.
func hiddenSelf(n *html.Node) bool {
	get := func(prop string) string {
		if v, ok := styleDecl(n, prop); ok {
			return v
		}
		v, _ := Attr(n, prop)
		return v
	}
	if strings.EqualFold(strings.TrimSpace(get("display")), "none") {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(get("visibility")), "hidden") {
		return true
	}
	if o := strings.TrimSpace(get("opacity")); o != "" {
		if v, err := strconv.ParseFloat(o, 64); err == nil && v <= 0 {
			return true
		}
	}
	return false
}

// hiddenOrNonPrintable reports whether n or an ancestor is hidden or is a
// container whose content is never painted directly.
func hiddenOrNonPrintable(n *html.Node) bool {
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if hiddenSelf(cur) || nonPrintableContainers[tagName(cur)] {
			return true
		}
	}
	return false
}

// HasPrintableContent reports whether the document paints at least one
// visible shape or text element.
func HasPrintableContent(doc *Document) bool {
	found := false
	walkElements(doc.Root, func(n *html.Node) bool {
		if found {
			return false
		}
		name := tagName(n)
		if nonPrintableContainers[name] || hiddenSelf(n) {
			return false
		}
		if printableTags[name] {
			found = true
			return false
		}
		return true
	})
	return found
}
