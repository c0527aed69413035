// ticketseries is a command-line tool for laying out numbered ticket runs on
// A4 pages.
//
// A job file describes the source document, the ticket region, the series
// slots and the page count. The tool expands the run into pages of four
// tickets, checks the generation request locally and either sends it to the
// vector renderer or writes local proofs.
//
// Configuration:
//
//	source_key: "document:4f2a"
//	file_type: pdf            # or svg
//	svg_path: artwork.svg     # svg only, relative to the job file
//	pages: 25
//	slot_spacing_pt: 12
//	ticket_region: {x: 0.1, y: 0.05, width: 0.8, height: 0.2}
//	slots:
//	  - value: "A001"
//	    x: 0.6
//	    y: 0.1
//	    increment: 1
//	    font_family: Helvetica
//	    letter_styles: [{font_size: 30}, {offset_y: 2}]
//	renderer:
//	  url: "https://render.example"
//	  token: ""               # or TICKETSERIES_RENDERER_TOKEN
//	  timeout: 60s
//
// Usage:
//
//	ticketseries -job job.yml [options]
//
// Output options:
//
//	-render              Send the request to the vector renderer
//	-metadata string     Path to save the generation request as JSON
//	-proof string        Path to save a local proof PDF
//	-preview-dir string  Directory to save SVG previews of each page
//	-source string       Source PDF drawn beneath each ticket of the proof
//
// Processing options:
//
//	-mode string   production runs the golden regression suite first (default "production")
//	-debug         Enable debug output
//	-overwrite     Overwrite output files if they exist
//
// Example:
//
//	ticketseries -job raffle.yml -proof raffle_proof.pdf -metadata raffle.json
//	ticketseries -job raffle.yml -render
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gardar/ticketseries/pkg/artwork"
	"github.com/gardar/ticketseries/pkg/detect"
	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/proof"
	"github.com/gardar/ticketseries/pkg/series"
	"github.com/gardar/ticketseries/pkg/session"
	"github.com/gardar/ticketseries/pkg/vector"
)

// tokenEnv overrides the renderer token of the job file.
const tokenEnv = "TICKETSERIES_RENDERER_TOKEN"

type options struct {
	JobPath      string
	Render       bool
	MetadataPath string
	ProofPath    string
	PreviewDir   string
	SourcePath   string
	Mode         vector.Mode
	Debug        bool
	Overwrite    bool
}

func main() {
	var o options
	var mode string
	flag.StringVar(&o.JobPath, "job", "", "Path to the job YAML file (required)")
	flag.BoolVar(&o.Render, "render", false, "Send the generation request to the vector renderer")
	flag.StringVar(&o.MetadataPath, "metadata", "", "Path to save the generation request as JSON")
	flag.StringVar(&o.ProofPath, "proof", "", "Path to save a local proof PDF")
	flag.StringVar(&o.PreviewDir, "preview-dir", "", "Directory to save SVG previews of each page")
	flag.StringVar(&o.SourcePath, "source", "", "Source PDF drawn beneath each ticket of the proof")
	flag.StringVar(&mode, "mode", string(vector.ModeProduction), "production or development")
	flag.BoolVar(&o.Debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&o.Overwrite, "overwrite", false, "Overwrite output files if they already exist")
	flag.Parse()

	if o.JobPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -job flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	o.Mode = vector.Mode(mode)
	if o.Mode != vector.ModeProduction && o.Mode != vector.ModeDevelopment {
		fmt.Fprintf(os.Stderr, "Error: -mode must be %q or %q\n", vector.ModeProduction, vector.ModeDevelopment)
		os.Exit(1)
	}
	if !o.Render && o.MetadataPath == "" && o.ProofPath == "" && o.PreviewDir == "" {
		fmt.Fprintln(os.Stderr, "Error: At least one of -render, -metadata, -proof or -preview-dir must be provided")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code := layouterr.Code(err); code != "" {
			fmt.Fprintf(os.Stderr, "Code: %s (%s)\n", code, layouterr.CategoryOf(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	j, err := loadJob(o.JobPath)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if token := os.Getenv(tokenEnv); token != "" {
		j.Renderer.Token = token
	}

	store := session.NewMemoryStore()
	var lock *artwork.Lock
	if j.FileType == vector.FileSVG {
		art := artwork.New(artwork.Config{
			DocumentID: j.DocumentID,
			Store:      store,
			Debug:      o.Debug,
			Logger:     out,
		}, nil)
		l, err := art.Mount(j.SVG)
		if err != nil {
			return fmt.Errorf("failed to lock artwork: %w", err)
		}
		lock = &l
		fmt.Fprintf(out, "Artwork locked: %gx%g at scale %.4f\n",
			l.NaturalSize.Width, l.NaturalSize.Height, l.Scale)
	}

	spacing := series.ClampSlotSpacing(j.SlotSpacingPt, series.SlotHeightPt(j.Region))
	if spacing != j.SlotSpacingPt {
		fmt.Fprintf(out, "Warning: slot spacing clamped from %g pt to %g pt\n", j.SlotSpacingPt, spacing)
	}

	var pages []series.OutputPage
	var meta vector.Metadata
	if o.Render {
		cfg := vector.DefaultGeneratorConfig()
		cfg.Mode = o.Mode
		cfg.DocumentID = j.DocumentID
		cfg.FileType = j.FileType
		cfg.Store = store
		cfg.Debug = o.Debug
		cfg.Logger = out
		gen := vector.NewGenerator(cfg, vector.NewClient(j.Renderer))
		res, err := gen.Generate(ctx, vector.Request{
			// the source document lives in the renderer's store
			SurfaceReady:  true,
			Region:        j.Region,
			Slots:         j.Slots,
			TotalPages:    j.Pages,
			SlotSpacingPt: spacing,
		})
		if err != nil {
			return err
		}
		pages, meta = res.Pages, res.Metadata
		fmt.Fprintf(out, "Vector PDF: %s (key %s, preview %s)\n", res.Response.PdfURL, res.Response.Key, res.PreviewID)
	} else {
		if pages, meta, err = buildLocal(j, o.Mode, spacing); err != nil {
			return err
		}
		fmt.Fprintln(out, series.Summary(len(pages), j.Slots))
	}

	if o.MetadataPath != "" {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		if err := writeOutput(o.MetadataPath, data, o.Overwrite); err != nil {
			return err
		}
		fmt.Fprintln(out, "Metadata written:", o.MetadataPath)
	}

	pcfg := proof.DefaultConfig()
	pcfg.Debug = o.Debug
	pcfg.Logger = out
	pcfg.Lock = lock
	if o.SourcePath != "" {
		if pcfg.Source, err = os.ReadFile(o.SourcePath); err != nil {
			return fmt.Errorf("failed to read source PDF: %w", err)
		}
	}
	if o.ProofPath != "" {
		data, err := proof.Sheet(pages, spacing, pcfg)
		if err != nil {
			return fmt.Errorf("failed to draw proof: %w", err)
		}
		if o.Debug {
			check, err := proof.CheckLayers(data, pcfg.LayerName)
			if err == nil {
				fmt.Fprintf(out, "Proof layers: %d ticket pages\n", len(check.TicketPages))
				for _, w := range check.Warnings {
					fmt.Fprintln(out, "Warning:", w)
				}
			}
		}
		if err := writeOutput(o.ProofPath, data, o.Overwrite); err != nil {
			return err
		}
		fmt.Fprintln(out, "Proof written:", o.ProofPath)
	}
	if o.PreviewDir != "" {
		if err := os.MkdirAll(o.PreviewDir, 0o755); err != nil {
			return fmt.Errorf("failed to create preview directory: %w", err)
		}
		for _, p := range pages {
			svg, err := proof.PageSVG(p, spacing, pcfg)
			if err != nil {
				return err
			}
			path := filepath.Join(o.PreviewDir, fmt.Sprintf("page-%03d.svg", p.PageNumber))
			if err := writeOutput(path, []byte(svg), o.Overwrite); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Previews written: %d pages in %s\n", len(pages), o.PreviewDir)
	}
	return nil
}

// buildLocal expands the run and checks the request without contacting the
// renderer. Production mode runs the golden suite first, as the generator
// does.
func buildLocal(j *job, mode vector.Mode, spacing float64) ([]series.OutputPage, vector.Metadata, error) {
	if mode == vector.ModeProduction {
		if err := detect.AssertGoldenSuite(); err != nil {
			return nil, vector.Metadata{}, err
		}
	}
	if j.Region == nil {
		return nil, vector.Metadata{}, layouterr.New(layouterr.ErrRegionMissing, layouterr.CategoryPrecondition,
			"ticket_region is required")
	}
	pages, err := series.Expand(*j.Region, j.Slots, j.Pages)
	if err != nil {
		return nil, vector.Metadata{}, err
	}
	crop := vector.CropFromRect(*j.Region)
	meta, err := vector.BuildMetadata(vector.Input{
		DocumentID:    j.DocumentID,
		FileType:      j.FileType,
		Pages:         pages,
		Crop:          &crop,
		SlotSpacingPt: spacing,
	})
	if err != nil {
		return nil, vector.Metadata{}, err
	}
	return pages, meta, nil
}

func writeOutput(path string, data []byte, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("output file %s already exists, use -overwrite to overwrite", path)
	}
	if err := os.WriteFile(path, data, 0o666); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
