package vector

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/gardar/ticketseries/pkg/detect"
	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/series"
	"github.com/gardar/ticketseries/pkg/session"
)

// Mode selects whether the golden regression gate runs before generation.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Mode       Mode
	DocumentID string
	FileType   FileType
	// Store receives the preview payload. Required.
	Store session.Store
	// Golden is the regression gate run in production mode.
	Golden func() error

	Debug  bool
	Logger io.Writer
}

// DefaultGeneratorConfig returns a production configuration for PDF sources
// with an in-memory store and the built-in golden suite.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Mode:     ModeProduction,
		FileType: FilePDF,
		Store:    session.NewMemoryStore(),
		Golden:   detect.AssertGoldenSuite,
	}
}

func getLogger(cfg GeneratorConfig) io.Writer {
	if cfg.Logger == nil {
		return os.Stdout
	}
	return cfg.Logger
}

// CustomFont is a user supplied font passed through to the preview.
type CustomFont struct {
	Family  string `json:"family"`
	DataURL string `json:"dataUrl"`
}

// Request is one "Generate Output" action.
type Request struct {
	// SurfaceReady reports that the PDF page surface is rendered. Ignored
	// for SVG sources.
	SurfaceReady  bool
	Region        *geometry.Rect
	Slots         []series.Slot
	TotalPages    int
	SlotSpacingPt float64
	CustomFonts   []CustomFont
}

// Preview is the payload handed to the output preview under
// session.OutputPreviewKey.
type Preview struct {
	PdfURL          string              `json:"pdfUrl"`
	Key             string              `json:"key"`
	PageCount       int                 `json:"pageCount"`
	Pages           []series.OutputPage `json:"pages"`
	SlotSpacingPt   float64             `json:"slotSpacingPt"`
	CustomFonts     []CustomFont        `json:"customFonts"`
	TicketCropRatio TicketCrop          `json:"ticketCropRatio"`
	DocumentID      string              `json:"documentId"`
	FileType        FileType            `json:"fileType"`
}

// Result is a successful generation.
type Result struct {
	PreviewID string
	Response  Response
	Metadata  Metadata
	Pages     []series.OutputPage
	Summary   string
}

// Generator runs generation requests one at a time.
type Generator struct {
	cfg      GeneratorConfig
	renderer Renderer

	mu       sync.Mutex
	inFlight bool
	seq      uint64
}

// NewGenerator creates a generator that sends requests to renderer.
func NewGenerator(cfg GeneratorConfig, renderer Renderer) *Generator {
	if cfg.FileType == "" {
		cfg.FileType = FilePDF
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	return &Generator{cfg: cfg, renderer: renderer}
}

// Invalidate marks any generation in flight as stale, for example after the
// page, region or slots were replaced. Its response will be discarded.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	g.seq++
	g.mu.Unlock()
}

// SlotReleased logs the anchor of a slot after a drag ends. It fits
// drag.SlotCallbacks.Release.
func (g *Generator) SlotReleased(slotID string, p geometry.Point) {
	if g.cfg.Debug {
		fmt.Fprintf(getLogger(g.cfg), "[anchor] slot %s locked at (%.4f, %.4f)\n", slotID, p.X, p.Y)
	}
}

func (g *Generator) begin() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return 0, layouterr.New(layouterr.ErrGenerationBusy, layouterr.CategoryPrecondition,
			"output generation already in progress")
	}
	g.inFlight = true
	g.seq++
	return g.seq, nil
}

func (g *Generator) end() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

func (g *Generator) current(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq == seq
}

// Generate validates req, sends it to the renderer and stores the preview.
// A second call while one is in flight is rejected, not queued. Nothing is
// stored unless every step succeeds.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	seq, err := g.begin()
	if err != nil {
		return Result{}, err
	}
	defer g.end()

	if g.cfg.Mode == ModeProduction && g.cfg.Golden != nil {
		if err := g.cfg.Golden(); err != nil {
			return Result{}, err
		}
	}
	if g.cfg.FileType == FilePDF && !req.SurfaceReady {
		return Result{}, layouterr.New(layouterr.ErrSourceMissing, layouterr.CategoryPrecondition,
			"no PDF page surface available")
	}
	if req.Region == nil {
		return Result{}, layouterr.New(layouterr.ErrRegionMissing, layouterr.CategoryPrecondition,
			"please select a ticket region first")
	}
	if !req.Region.Valid() {
		return Result{}, layouterr.New(layouterr.ErrRegionInvalid, layouterr.CategoryPrecondition,
			"ticket region is outside the page or has no area")
	}

	pages, err := series.Expand(*req.Region, req.Slots, req.TotalPages)
	if err != nil {
		return Result{}, err
	}
	crop := CropFromRect(*req.Region)
	meta, err := BuildMetadata(Input{
		DocumentID:    g.cfg.DocumentID,
		FileType:      g.cfg.FileType,
		Pages:         pages,
		Crop:          &crop,
		SlotSpacingPt: req.SlotSpacingPt,
	})
	if err != nil {
		return Result{}, err
	}

	if g.cfg.Debug {
		fmt.Fprintf(getLogger(g.cfg), "[generate] %s: %d pages, %d series\n",
			meta.SourceKey, meta.Layout.TotalPages, len(meta.Series))
	}
	resp, err := g.renderer.Generate(ctx, meta)
	if err != nil {
		return Result{}, err
	}
	if !g.current(seq) {
		return Result{}, layouterr.New(layouterr.ErrStaleResponse, layouterr.CategoryRemote,
			"discarded a response for a superseded generation request")
	}

	previewID := uuid.NewString()
	preview := Preview{
		PdfURL:          resp.PdfURL,
		Key:             resp.Key,
		PageCount:       len(pages),
		Pages:           pages,
		SlotSpacingPt:   req.SlotSpacingPt,
		CustomFonts:     req.CustomFonts,
		TicketCropRatio: crop,
		DocumentID:      g.cfg.DocumentID,
		FileType:        g.cfg.FileType,
	}
	if err := session.PutJSON(g.cfg.Store, session.OutputPreviewKey(previewID), preview); err != nil {
		return Result{}, layouterr.New(layouterr.ErrSessionStoreWrite, layouterr.CategoryInternal,
			"failed to prepare output preview").WithCause(err)
	}

	summary := series.Summary(len(pages), req.Slots)
	fmt.Fprintln(getLogger(g.cfg), summary)

	return Result{
		PreviewID: previewID,
		Response:  resp,
		Metadata:  meta,
		Pages:     pages,
		Summary:   summary,
	}, nil
}

// LoadPreview reads the preview stored for previewID.
func LoadPreview(store session.Store, previewID string) (Preview, bool, error) {
	var p Preview
	ok, err := session.GetJSON(store, session.OutputPreviewKey(previewID), &p)
	return p, ok, err
}
