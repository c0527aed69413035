// Package layouterr provides the structured error type returned by the layout
// core. Every expected failure (bad artwork, invalid region, regression
// mismatch, renderer failure) is reported as a *LayoutError carrying a stable
// code, a category that decides how the caller surfaces it, and optional
// key/value context.
//
// Categories:
//
// - CategoryInput: malformed source material; state is rolled back
// - CategoryPrecondition: generation blocked locally, no network call made
// - CategoryRegression: golden suite mismatch, generation aborted
// - CategoryRemote: renderer failure or malformed response, no retry
// - CategoryInternal: invariant violations that should never happen
package layouterr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryInput        Category = "input"
	CategoryPrecondition Category = "precondition"
	CategoryRegression   Category = "regression"
	CategoryRemote       Category = "remote"
	CategoryInternal     Category = "internal"
)

// Error codes.
const (
	ErrSVGParseFailed     = "SVG_PARSE_FAILED"
	ErrSVGNoViewBox       = "SVG_NO_VIEWBOX"
	ErrSVGNoPrintable     = "SVG_NO_PRINTABLE"
	ErrSVGMultipleRoots   = "SVG_MULTIPLE_ROOTS"
	ErrInvalidNaturalSize = "INVALID_NATURAL_SIZE"

	ErrRegionMissing     = "REGION_MISSING"
	ErrRegionInvalid     = "REGION_INVALID"
	ErrSlotMissing       = "SLOT_MISSING"
	ErrSeriesInvalid     = "SERIES_INVALID"
	ErrCropMissing       = "CROP_MISSING"
	ErrPagesInvalid      = "PAGES_INVALID"
	ErrSourceMissing     = "SOURCE_MISSING"
	ErrGenerationBusy    = "GENERATION_IN_FLIGHT"
	ErrFontMetrics       = "FONT_METRICS_INVALID"
	ErrGoldenMismatch    = "GOLDEN_MISMATCH"
	ErrRendererFailed    = "RENDERER_FAILED"
	ErrRendererResponse  = "RENDERER_BAD_RESPONSE"
	ErrStaleResponse     = "STALE_RESPONSE"
	ErrSessionStoreWrite = "SESSION_STORE_WRITE"
)

// LayoutError is a structured error with a code and context.
type LayoutError struct {
	Code     string
	Category Category
	Message  string
	Context  map[string]string
	Cause    error
}

// New creates a LayoutError.
func New(code string, category Category, message string) *LayoutError {
	return &LayoutError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Newf creates a LayoutError with a formatted message.
func Newf(code string, category Category, format string, args ...any) *LayoutError {
	return New(code, category, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *LayoutError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a LayoutError with the same code.
func (e *LayoutError) Is(target error) bool {
	if t, ok := target.(*LayoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds a context key/value pair and returns the error for chaining.
func (e *LayoutError) WithContext(key, value string) *LayoutError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *LayoutError) WithCause(cause error) *LayoutError {
	e.Cause = cause
	return e
}

// Code returns the code of the first LayoutError in err's chain, or "".
func Code(err error) string {
	var le *LayoutError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// CategoryOf returns the category of the first LayoutError in err's chain.
// Errors that are not LayoutErrors are treated as internal.
func CategoryOf(err error) Category {
	var le *LayoutError
	if errors.As(err, &le) {
		return le.Category
	}
	return CategoryInternal
}

// HasCode reports whether err's chain contains a LayoutError with code.
func HasCode(err error, code string) bool {
	return errors.Is(err, &LayoutError{Code: code})
}
