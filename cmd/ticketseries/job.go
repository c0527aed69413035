package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/region"
	"github.com/gardar/ticketseries/pkg/series"
	"github.com/gardar/ticketseries/pkg/vector"
)

type yamlRegion struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type yamlSlot struct {
	ID           string               `yaml:"id"`
	X            *float64             `yaml:"x"`
	Y            *float64             `yaml:"y"`
	Width        float64              `yaml:"width"`
	Height       float64              `yaml:"height"`
	Value        string               `yaml:"value"`
	Increment    int                  `yaml:"increment"`
	FontFamily   string               `yaml:"font_family"`
	FontSize     float64              `yaml:"font_size"`
	Color        string               `yaml:"color"`
	Rotation     float64              `yaml:"rotation"`
	TextAlign    string               `yaml:"text_align"`
	LetterStyles []series.LetterStyle `yaml:"letter_styles"`
	Frame        *series.Frame        `yaml:"frame"`
}

type yamlJob struct {
	SourceKey     string              `yaml:"source_key"`
	FileType      string              `yaml:"file_type"`
	SVGPath       string              `yaml:"svg_path"`
	Pages         int                 `yaml:"pages"`
	SlotSpacingPt float64             `yaml:"slot_spacing_pt"`
	TicketRegion  *yamlRegion         `yaml:"ticket_region"`
	Slots         []yamlSlot          `yaml:"slots"`
	Renderer      vector.ClientConfig `yaml:"renderer"`
}

// job is a loaded and checked job file.
type job struct {
	DocumentID    string
	FileType      vector.FileType
	SVG           []byte
	Pages         int
	SlotSpacingPt float64
	Region        *geometry.Rect
	Slots         []series.Slot
	Renderer      vector.ClientConfig
}

// loadJob reads a YAML job file. svg_path is resolved relative to the job
// file.
func loadJob(path string) (*job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var yj yamlJob
	if err := yaml.Unmarshal(data, &yj); err != nil {
		return nil, err
	}

	j := &job{
		DocumentID:    strings.TrimPrefix(yj.SourceKey, "document:"),
		FileType:      vector.FileType(yj.FileType),
		Pages:         yj.Pages,
		SlotSpacingPt: yj.SlotSpacingPt,
		Renderer:      yj.Renderer,
	}
	if j.DocumentID == "" {
		return nil, fmt.Errorf("source_key is required")
	}
	if j.Pages == 0 {
		j.Pages = 1
	}
	switch j.FileType {
	case "":
		j.FileType = vector.FilePDF
	case vector.FilePDF, vector.FileSVG:
	default:
		return nil, fmt.Errorf("unsupported file_type %q (want pdf or svg)", yj.FileType)
	}

	if j.FileType == vector.FileSVG {
		if yj.SVGPath == "" {
			return nil, fmt.Errorf("svg_path is required for file_type svg")
		}
		svgPath := yj.SVGPath
		if !filepath.IsAbs(svgPath) {
			svgPath = filepath.Join(filepath.Dir(path), svgPath)
		}
		if j.SVG, err = os.ReadFile(svgPath); err != nil {
			return nil, fmt.Errorf("failed to read artwork: %w", err)
		}
	}

	if yj.TicketRegion != nil {
		reg := region.New(geometry.Size{Width: geometry.A4Width, Height: geometry.A4Height}, nil)
		r := geometry.Rect{X: yj.TicketRegion.X, Y: yj.TicketRegion.Y, Width: yj.TicketRegion.Width, Height: yj.TicketRegion.Height}
		if err := reg.Set(r); err != nil {
			return nil, fmt.Errorf("ticket_region: %w", err)
		}
		crop, err := reg.CropRatio()
		if err != nil {
			return nil, fmt.Errorf("ticket_region: %w", err)
		}
		j.Region = &crop
	}

	if j.Slots, err = buildSlots(yj.Slots); err != nil {
		return nil, err
	}
	return j, nil
}

// buildSlots creates the slots of a job the same way the editor does and
// then applies the overrides of each entry.
func buildSlots(yslots []yamlSlot) ([]series.Slot, error) {
	ed := series.NewEditor()
	seen := make(map[string]bool)
	for i, ys := range yslots {
		if ys.Value == "" {
			return nil, fmt.Errorf("slot %d: value is required", i+1)
		}
		switch series.TextAlign(ys.TextAlign) {
		case "", series.AlignLeft, series.AlignCenter, series.AlignRight:
		default:
			return nil, fmt.Errorf("slot %d: unsupported text_align %q", i+1, ys.TextAlign)
		}

		id := ed.AddSlot(ys.Value).ID
		if ys.X != nil || ys.Y != nil {
			s := ed.Slots()[i]
			p := geometry.Point{X: s.X, Y: s.Y}
			if ys.X != nil {
				p.X = *ys.X
			}
			if ys.Y != nil {
				p.Y = *ys.Y
			}
			if err := ed.MoveTo(id, p); err != nil {
				return nil, err
			}
		}
		err := ed.Update(id, func(s *series.Slot) {
			if ys.Width > 0 {
				s.Width = ys.Width
			}
			if ys.Height > 0 {
				s.Height = ys.Height
			}
			if ys.Increment != 0 {
				s.SeriesIncrement = ys.Increment
			}
			if ys.FontFamily != "" {
				s.FontFamily = ys.FontFamily
			}
			if ys.FontSize > 0 {
				s.DefaultFontSize = ys.FontSize
				s.LetterStyles = series.ResizeLetterStyles(nil, len(s.LetterStyles), ys.FontSize)
			}
			if ys.Color != "" {
				s.Color = ys.Color
			}
			if ys.TextAlign != "" {
				s.TextAlign = series.TextAlign(ys.TextAlign)
			}
			if ys.Frame != nil {
				s.Frame = *ys.Frame
			}
			s.Rotation = ys.Rotation
		})
		if err != nil {
			return nil, err
		}
		for k, ls := range ys.LetterStyles {
			if ls.FontSize != 0 {
				if err := ed.SetLetterFontSize(id, k, ls.FontSize); err != nil {
					return nil, fmt.Errorf("slot %d: letter %d: %w", i+1, k+1, err)
				}
			}
			if ls.OffsetY != 0 {
				if err := ed.SetLetterOffset(id, k, ls.OffsetY); err != nil {
					return nil, fmt.Errorf("slot %d: letter %d: %w", i+1, k+1, err)
				}
			}
		}
		if ys.ID != "" {
			if seen[ys.ID] {
				return nil, fmt.Errorf("slot %d: duplicate id %q", i+1, ys.ID)
			}
			seen[ys.ID] = true
			if err := ed.Update(id, func(s *series.Slot) { s.ID = ys.ID }); err != nil {
				return nil, err
			}
		}
	}
	return ed.Slots(), nil
}
