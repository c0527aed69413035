// Package artwork prepares SVG artwork for placement on an A4 page and locks
// the fit-to-page transform once per mounted artwork.
//
// Preparing markup sanitizes it against an allow-list, copies simple class
// rules from <style> blocks onto the elements they style, verifies that
// something printable remains, reads the natural size from the viewBox (or
// width/height in points) and normalizes the root so the artwork starts at
// the origin.
//
// Key Types:
//
// - Document: one parsed <svg> root
// - Lock: the frozen natural size, scale, bounding box and centering offset
// - State / Reduce: the Unlocked → Locked state machine
// - Artwork: the mounted component that owns the state
//
// Main Functions:
//
// - Parse, Sanitize, InlineClassStyles, HasPrintableContent
// - NaturalSize, Normalize, Prepare
// - ComputeLock, Reduce
package artwork

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/gardar/ticketseries/pkg/layouterr"
)

// Document is a parsed SVG with exactly one root <svg> element.
type Document struct {
	Root *html.Node
}

var xmlEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// decode converts content declared in a non-UTF-8 charset by its XML
// declaration into UTF-8.
func decode(content []byte) (string, error) {
	m := xmlEncoding.FindSubmatch(content)
	if m == nil {
		return string(content), nil
	}
	name := strings.ToLower(string(m[1]))
	if name == "utf-8" || name == "utf8" {
		return string(content), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	out, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(content)))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", name, err)
	}
	return string(out), nil
}

// Parse parses SVG markup. The markup must contain exactly one top-level
// <svg> element; nested <svg> elements are part of that artwork.
func Parse(content []byte) (*Document, error) {
	text, err := decode(content)
	if err != nil {
		return nil, layouterr.New(layouterr.ErrSVGParseFailed, layouterr.CategoryInput,
			"SVG could not be decoded").WithCause(err)
	}
	tree, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, layouterr.New(layouterr.ErrSVGParseFailed, layouterr.CategoryInput,
			"SVG could not be parsed").WithCause(err)
	}

	roots := findRoots(tree)
	switch len(roots) {
	case 0:
		return nil, layouterr.New(layouterr.ErrSVGParseFailed, layouterr.CategoryInput,
			"no <svg> element found")
	case 1:
		return &Document{Root: roots[0]}, nil
	default:
		return nil, layouterr.Newf(layouterr.ErrSVGMultipleRoots, layouterr.CategoryInput,
			"expected one artwork SVG, found %d", len(roots))
	}
}

func isSVG(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Namespace == "svg" && n.Data == "svg"
}

// findRoots returns the <svg> elements that are not nested in another one.
func findRoots(n *html.Node) []*html.Node {
	var roots []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isSVG(n) {
			roots = append(roots, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return roots
}

// Render serializes the document root.
func (d *Document) Render() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, d.Root); err != nil {
		return "", fmt.Errorf("failed to render SVG: %w", err)
	}
	return b.String(), nil
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if attrName(a) == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the attribute key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if attrName(a) == key {
			n.Attr[i].Val = val
			return
		}
	}
	ns, k := "", key
	if i := strings.IndexByte(key, ':'); i >= 0 {
		ns, k = key[:i], key[i+1:]
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: ns, Key: k, Val: val})
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

// walkElements calls fn for every element below and including n. Returning
// false skips the element's children.
func walkElements(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}
