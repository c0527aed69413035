package artwork

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Presentation properties that may be copied from a class rule.
var inlinedProps = []string{"fill", "stroke", "fill-opacity", "stroke-opacity", "stroke-width", "opacity"}

var (
	cssRule      = regexp.MustCompile(`([^{}]+)\{([^}]*)\}`)
	cssURL       = regexp.MustCompile(`(?i)url\s*\(`)
	cssClassName = regexp.MustCompile(`\.([a-zA-Z0-9_-]+)`)
	complexSel   = regexp.MustCompile(`[#\[:]`)
)

// Elements that receive inlined class styles.
var styledTags = toSet("path", "rect", "circle", "ellipse", "line", "polyline", "polygon", "text", "tspan")

// classStyles maps a class name to the declarations that apply to it.
type classStyles map[string]map[string]string

func (cs classStyles) merge(other classStyles) {
	for class, decls := range other {
		if cs[class] == nil {
			cs[class] = make(map[string]string)
		}
		for k, v := range decls {
			cs[class][k] = v
		}
	}
}

// parseClassStyles extracts the presentation declarations of simple class
// selectors from a stylesheet. Rules referencing external resources and
// selectors using ids, attributes or pseudo classes are ignored.
func parseClassStyles(css string) classStyles {
	out := make(classStyles)
	for _, m := range cssRule.FindAllStringSubmatch(css, -1) {
		selectors := strings.TrimSpace(m[1])
		body := m[2]
		if selectors == "" || cssURL.MatchString(body) {
			continue
		}
		decls := make(map[string]string)
		for _, pair := range strings.Split(body, ";") {
			pair = strings.TrimSpace(pair)
			idx := strings.IndexByte(pair, ':')
			if idx <= 0 {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(pair[:idx]))
			val := strings.TrimSpace(pair[idx+1:])
			if !inlined(key) {
				continue
			}
			if anyURL.MatchString(val) && !fragmentURL.MatchString(val) {
				continue
			}
			decls[key] = val
		}
		if len(decls) == 0 {
			continue
		}
		for _, sel := range strings.Split(selectors, ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" || complexSel.MatchString(sel) {
				continue
			}
			for _, cm := range cssClassName.FindAllStringSubmatch(sel, -1) {
				out.merge(classStyles{cm[1]: decls})
			}
		}
	}
	return out
}

func inlined(prop string) bool {
	for _, p := range inlinedProps {
		if p == prop {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// InlineClassStyles copies fill, stroke and opacity declarations from class
// rules in <style> blocks onto visible shapes as presentation attributes, so
// renderers that ignore stylesheets see the same colors. Attributes already
// set on the element, directly or in its style attribute, win.
func InlineClassStyles(doc *Document) {
	styles := make(classStyles)
	walkElements(doc.Root, func(n *html.Node) bool {
		if tagName(n) == "style" {
			styles.merge(parseClassStyles(textContent(n)))
		}
		return true
	})
	if len(styles) == 0 {
		return
	}

	walkElements(doc.Root, func(n *html.Node) bool {
		if !styledTags[tagName(n)] || hiddenOrNonPrintable(n) {
			return true
		}
		class, _ := Attr(n, "class")
		merged := make(map[string]string)
		for _, cn := range strings.Fields(class) {
			for k, v := range styles[cn] {
				merged[k] = v
			}
		}
		for _, prop := range inlinedProps {
			v := merged[prop]
			if v == "" || hasProperty(n, prop) {
				continue
			}
			SetAttr(n, prop, v)
		}
		return true
	})
}

// hasProperty reports whether n sets prop as an attribute or in its style.
func hasProperty(n *html.Node, prop string) bool {
	if _, ok := Attr(n, prop); ok {
		return true
	}
	_, ok := styleDecl(n, prop)
	return ok
}

// styleDecl returns the value of prop in n's style attribute.
func styleDecl(n *html.Node, prop string) (string, bool) {
	style, ok := Attr(n, "style")
	if !ok {
		return "", false
	}
	for _, pair := range strings.Split(style, ";") {
		idx := strings.IndexByte(pair, ':')
		if idx <= 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(pair[:idx]), prop) {
			return strings.TrimSpace(pair[idx+1:]), true
		}
	}
	return "", false
}
