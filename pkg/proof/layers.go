package proof

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ocgName matches the name of an optional content group. Names may contain
// escaped parentheses.
var ocgName = regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(((?:\\.|[^\\)])*)\)`)

// Layers returns the distinct optional content group names in pdfData, in
// order of appearance.
func Layers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	var layers []string
	seen := make(map[string]bool)
	for _, match := range ocgName.FindAllSubmatch(pdfData, -1) {
		name := unescapePDFString(string(match[1]))
		if strings.HasPrefix(name, "\xfe\xff") {
			decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().String(name)
			if err == nil {
				name = decoded
			}
		}
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	return layers, nil
}

func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// LayerCheck is the result of CheckLayers.
type LayerCheck struct {
	Layers      []string // All detected layers
	TicketPages []int    // Page numbers that have a ticket layer
	Warnings    []string
}

// CheckLayers finds the ticket layers named after layerName in a proof PDF.
func CheckLayers(pdfData []byte, layerName string) (LayerCheck, error) {
	var res LayerCheck
	layers, err := Layers(pdfData)
	if err != nil {
		return res, fmt.Errorf("cannot analyze layers: %w", err)
	}
	res.Layers = layers

	pageLayer := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*(\d+)\)$`, regexp.QuoteMeta(layerName)))
	for _, l := range layers {
		if m := pageLayer.FindStringSubmatch(l); m != nil {
			n, _ := strconv.Atoi(m[1])
			res.TicketPages = append(res.TicketPages, n)
			continue
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("Unexpected layer in proof: %s", l))
	}
	return res, nil
}
