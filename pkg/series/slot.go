package series

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Defaults applied to new slots.
const (
	DefaultFontSize   = 24
	DefaultFontFamily = "Arial"
	DefaultColor      = "#000000"

	defaultSlotX      = 0.6
	defaultSlotY      = 0.4
	defaultSlotWidth  = 20 // percent
	defaultSlotHeight = 8  // percent
	stackStepY        = 0.05
)

// TextAlign is the horizontal alignment of the slot text.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// LetterStyle overrides the size and vertical offset of one character.
// OffsetY is in unscaled units, positive down.
type LetterStyle struct {
	FontSize float64 `json:"fontSize" yaml:"font_size"`
	OffsetY  float64 `json:"offsetY" yaml:"offset_y"`
}

// Frame holds the decorative box drawn around the slot text.
type Frame struct {
	BackgroundColor string  `json:"backgroundColor" yaml:"background_color"`
	BorderColor     string  `json:"borderColor" yaml:"border_color"`
	BorderWidth     float64 `json:"borderWidth" yaml:"border_width"`
	BorderRadius    float64 `json:"borderRadius" yaml:"border_radius"`
	PaddingTop      float64 `json:"paddingTop" yaml:"padding_top"`
	PaddingBottom   float64 `json:"paddingBottom" yaml:"padding_bottom"`
	PaddingLeft     float64 `json:"paddingLeft" yaml:"padding_left"`
	PaddingRight    float64 `json:"paddingRight" yaml:"padding_right"`
}

// DefaultFrame is the frame of a new slot.
var DefaultFrame = Frame{
	BackgroundColor: "transparent",
	BorderColor:     "#10b981",
	BorderWidth:     0,
	BorderRadius:    4,
	PaddingTop:      4,
	PaddingBottom:   4,
	PaddingLeft:     8,
	PaddingRight:    8,
}

// Slot is one placeable series text object. X and Y are ratios of the artwork
// bounding box; Width and Height are percentages of it.
//
// LetterStyles always has exactly one entry per character of Value.
type Slot struct {
	ID              string        `json:"id"`
	X               float64       `json:"x"`
	Y               float64       `json:"y"`
	Width           float64       `json:"width"`
	Height          float64       `json:"height"`
	Value           string        `json:"value"`
	StartingSeries  string        `json:"startingSeries"`
	SeriesIncrement int           `json:"seriesIncrement"`
	LetterStyles    []LetterStyle `json:"letterStyles"`
	DefaultFontSize float64       `json:"defaultFontSize"`
	FontFamily      string        `json:"fontFamily"`
	Color           string        `json:"color"`
	Rotation        float64       `json:"rotation"`
	Frame
	TextAlign TextAlign `json:"textAlign"`
}

// NewSlot returns a slot seeded with startingSeries. stackIndex is the number
// of slots already on the page; each one shifts the default position down so
// stacked slots do not fully overlap.
func NewSlot(startingSeries string, stackIndex int) Slot {
	return Slot{
		ID:              uuid.NewString(),
		X:               defaultSlotX,
		Y:               defaultSlotY + float64(stackIndex)*stackStepY,
		Width:           defaultSlotWidth,
		Height:          defaultSlotHeight,
		Value:           startingSeries,
		StartingSeries:  startingSeries,
		SeriesIncrement: 1,
		LetterStyles:    ResizeLetterStyles(nil, utf8.RuneCountInString(startingSeries), DefaultFontSize),
		DefaultFontSize: DefaultFontSize,
		FontFamily:      DefaultFontFamily,
		Color:           DefaultColor,
		Frame:           DefaultFrame,
		TextAlign:       AlignCenter,
	}
}

// ResizeLetterStyles returns a style array of length n. Entries at indices
// present in styles are kept in order; new entries use defaultSize and no
// offset.
func ResizeLetterStyles(styles []LetterStyle, n int, defaultSize float64) []LetterStyle {
	out := make([]LetterStyle, n)
	for i := range out {
		if i < len(styles) {
			out[i] = styles[i]
		} else {
			out[i] = LetterStyle{FontSize: defaultSize}
		}
	}
	return out
}

// SetValue edits the slot text. The starting series follows the edited value
// and the letter styles are resized to the new length.
func (s *Slot) SetValue(value string) {
	s.Value = value
	s.StartingSeries = value
	s.fitLetterStyles()
}

// fitLetterStyles resizes LetterStyles to one entry per character of Value.
// Characters are runes, the unit Glyphs draws.
func (s *Slot) fitLetterStyles() {
	s.LetterStyles = ResizeLetterStyles(s.LetterStyles, utf8.RuneCountInString(s.Value), s.DefaultFontSize)
}

// SetLetterFontSize sets the font size of character i.
func (s *Slot) SetLetterFontSize(i int, size float64) error {
	if i < 0 || i >= len(s.LetterStyles) {
		return fmt.Errorf("letter index %d out of range [0,%d)", i, len(s.LetterStyles))
	}
	if !(size > 0) {
		return fmt.Errorf("font size must be positive, got %v", size)
	}
	s.LetterStyles[i].FontSize = size
	return nil
}

// SetLetterOffset sets the vertical offset of character i.
func (s *Slot) SetLetterOffset(i int, offsetY float64) error {
	if i < 0 || i >= len(s.LetterStyles) {
		return fmt.Errorf("letter index %d out of range [0,%d)", i, len(s.LetterStyles))
	}
	s.LetterStyles[i].OffsetY = offsetY
	return nil
}

// BaseSeries returns the value the slot counts from.
func (s Slot) BaseSeries() string {
	if s.StartingSeries != "" {
		return s.StartingSeries
	}
	return s.Value
}

// Step returns the slot's increment.
func (s Slot) Step() int {
	return s.SeriesIncrement
}

// StylesFor returns the letter styles for a replicated value of the slot:
// the slot's own style where the index exists, the slot default otherwise.
func (s Slot) StylesFor(value string) []LetterStyle {
	out := make([]LetterStyle, utf8.RuneCountInString(value))
	for i := range out {
		if i < len(s.LetterStyles) {
			out[i] = s.LetterStyles[i]
		} else {
			out[i] = LetterStyle{FontSize: s.DefaultFontSize}
		}
	}
	return out
}

// Glyph is one character of a slot as drawn on the page.
type Glyph struct {
	Char     string
	FontSize float64 // effective size after scaling
	OffsetY  float64 // effective vertical translation after scaling
}

// Glyphs lays out value with styles, scaled by the locked artwork scale.
// A zero style font size falls back to the slot default.
func (s Slot) Glyphs(value string, styles []LetterStyle, scale float64) []Glyph {
	glyphs := make([]Glyph, 0, len(styles))
	i := 0
	for _, r := range value {
		size := s.DefaultFontSize
		var off float64
		if i < len(styles) {
			if styles[i].FontSize > 0 {
				size = styles[i].FontSize
			}
			off = styles[i].OffsetY
		}
		glyphs = append(glyphs, Glyph{Char: string(r), FontSize: size * scale, OffsetY: off * scale})
		i++
	}
	return glyphs
}

// Clone returns a deep copy of s.
func (s Slot) Clone() Slot {
	s.LetterStyles = append([]LetterStyle(nil), s.LetterStyles...)
	return s
}
