package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/layouterr"
	"github.com/gardar/ticketseries/pkg/series"
	"github.com/gardar/ticketseries/pkg/vector"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><rect width="200" height="100" fill="#000"/></svg>`

const baseJob = `
source_key: "document:d42"
pages: 2
slot_spacing_pt: 12
ticket_region: {x: 0.1, y: 0.05, width: 0.8, height: 0.2}
slots:
  - value: "A001"
    x: 0.5
    y: 0.1
`

func writeJob(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "job.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJob(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "art.svg"), []byte(testSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeJob(t, dir, `
source_key: "d42"
file_type: svg
svg_path: art.svg
ticket_region: {x: 0, y: 0, width: 1, height: 0.25}
slots:
  - id: serial
    value: "X10"
    x: 1.4
    increment: 5
    font_family: Courier
    font_size: 18
    text_align: right
    letter_styles: [{font_size: 30}, {offset_y: -2}]
  - value: "B"
renderer:
  url: "https://render.example/"
  token: "t0k"
  timeout: 5s
`)
	j, err := loadJob(path)
	if err != nil {
		t.Fatal(err)
	}
	if j.DocumentID != "d42" || j.FileType != vector.FileSVG || j.Pages != 1 || string(j.SVG) != testSVG {
		t.Errorf("job %+v", j)
	}
	if d := cmp.Diff(&geometry.Rect{X: 0, Y: 0, Width: 1, Height: 0.25}, j.Region); d != "" {
		t.Errorf("region (-want +got):\n%s", d)
	}
	if d := cmp.Diff(vector.ClientConfig{URL: "https://render.example/", Token: "t0k", Timeout: 5 * time.Second}, j.Renderer); d != "" {
		t.Errorf("renderer (-want +got):\n%s", d)
	}

	if len(j.Slots) != 2 {
		t.Fatalf("got %d slots", len(j.Slots))
	}
	s := j.Slots[0]
	if s.ID != "serial" || s.X != 1 || s.Y != 0.4 || s.SeriesIncrement != 5 || s.FontFamily != "Courier" || s.TextAlign != series.AlignRight {
		t.Errorf("slot %+v", s)
	}
	want := []series.LetterStyle{{FontSize: 30}, {FontSize: 18, OffsetY: -2}, {FontSize: 18}}
	if d := cmp.Diff(want, s.LetterStyles); d != "" {
		t.Errorf("letter styles (-want +got):\n%s", d)
	}
	if j.Slots[1].ID == "" || j.Slots[1].Y == s.Y {
		t.Errorf("second slot should get a fresh id and a stacked position: %+v", j.Slots[1])
	}
}

func TestLoadJobErrors(t *testing.T) {
	cases := []struct {
		name, yaml, want string
	}{
		{"no source", "pages: 1\n", "source_key is required"},
		{"file type", "source_key: d\nfile_type: png\n", "unsupported file_type"},
		{"svg path", "source_key: d\nfile_type: svg\n", "svg_path is required"},
		{"missing svg", "source_key: d\nfile_type: svg\nsvg_path: nope.svg\n", "failed to read artwork"},
		{"region", "source_key: d\nticket_region: {x: 0.5, y: 0, width: 0.6, height: 0.1}\n", "REGION_INVALID"},
		{"value", "source_key: d\nslots: [{x: 0.1}]\n", "slot 1: value is required"},
		{"align", "source_key: d\nslots: [{value: A1, text_align: justify}]\n", "unsupported text_align"},
		{"letter", "source_key: d\nslots: [{value: A1, letter_styles: [{}, {}, {font_size: 9}]}]\n", "slot 1: letter 3"},
		{"duplicate", "source_key: d\nslots: [{id: s, value: A1}, {id: s, value: B1}]\n", "duplicate id"},
		{"yaml", "source_key: [\n", "yaml"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := loadJob(writeJob(t, t.TempDir(), c.yaml))
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("got %v, want error containing %q", err, c.want)
			}
		})
	}
}

func TestRunLocal(t *testing.T) {
	dir := t.TempDir()
	o := options{
		JobPath:      writeJob(t, dir, baseJob),
		MetadataPath: filepath.Join(dir, "meta.json"),
		ProofPath:    filepath.Join(dir, "proof.pdf"),
		PreviewDir:   filepath.Join(dir, "preview"),
		Mode:         vector.ModeProduction,
	}
	var out bytes.Buffer
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Generated 2 pages, 8 tickets (A001 → A008)") {
		t.Errorf("output %q", out.String())
	}

	raw, err := os.ReadFile(o.MetadataPath)
	if err != nil {
		t.Fatal(err)
	}
	var meta vector.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatal(err)
	}
	if meta.SourceKey != "document:d42" || meta.Layout.TotalPages != 2 || meta.Layout.SlotSpacingPt != 12 {
		t.Errorf("metadata %+v", meta)
	}
	if len(meta.Series) != 1 || meta.Series[0].Prefix != "A" || meta.Series[0].PadLength != 3 {
		t.Errorf("series %+v", meta.Series)
	}

	pdf, err := os.ReadFile(o.ProofPath)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("proof: %v", err)
	}
	for _, name := range []string{"page-001.svg", "page-002.svg"} {
		if _, err := os.Stat(filepath.Join(o.PreviewDir, name)); err != nil {
			t.Errorf("preview: %v", err)
		}
	}

	if err := run(context.Background(), o, &out); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second run without -overwrite: %v", err)
	}
	o.Overwrite = true
	if err := run(context.Background(), o, &out); err != nil {
		t.Errorf("second run with -overwrite: %v", err)
	}
}

func TestRunLocalPlacesSlotsOnLockedArtwork(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "art.svg"), []byte(testSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	o := options{
		JobPath:    writeJob(t, dir, baseJob+"file_type: svg\nsvg_path: art.svg\n"),
		ProofPath:  filepath.Join(dir, "proof.pdf"),
		PreviewDir: filepath.Join(dir, "preview"),
		Mode:       vector.ModeDevelopment,
	}
	var out bytes.Buffer
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatal(err)
	}
	// 200x100 artwork is scaled by 2.9764 and centered vertically, so the
	// slot lands below the ticket region and its glyphs grow with the lock.
	if !strings.Contains(out.String(), "Artwork locked: 200x100 at scale 2.9764") {
		t.Errorf("output %q", out.String())
	}
	if !strings.Contains(out.String(), "lies outside the ticket region") {
		t.Errorf("slot placed without the artwork lock: %q", out.String())
	}
	svg, err := os.ReadFile(filepath.Join(o.PreviewDir, "page-001.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `font-size="71.434"`) {
		t.Errorf("preview lacks lock-scaled glyphs:\n%s", svg)
	}
}

func TestRunLocalNeedsRegion(t *testing.T) {
	dir := t.TempDir()
	o := options{
		JobPath:      writeJob(t, dir, "source_key: d\nslots: [{value: A1}]\n"),
		MetadataPath: filepath.Join(dir, "meta.json"),
		Mode:         vector.ModeDevelopment,
	}
	err := run(context.Background(), o, &bytes.Buffer{})
	if !layouterr.HasCode(err, layouterr.ErrRegionMissing) {
		t.Errorf("got %v", err)
	}
	if _, statErr := os.Stat(o.MetadataPath); statErr == nil {
		t.Error("metadata written despite the missing region")
	}
}

func TestRunClampsSpacing(t *testing.T) {
	dir := t.TempDir()
	job := strings.Replace(baseJob, "slot_spacing_pt: 12", "slot_spacing_pt: 500", 1)
	o := options{JobPath: writeJob(t, dir, job), MetadataPath: filepath.Join(dir, "m.json"), Mode: vector.ModeDevelopment}
	var out bytes.Buffer
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Warning: slot spacing clamped from 500 pt to 37.226 pt") {
		t.Errorf("output %q", out.String())
	}
}

func TestRunRender(t *testing.T) {
	var auth string
	var body struct {
		VectorMetadata vector.Metadata `json:"vectorMetadata"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"pdfUrl":"https://files.example/run.pdf","key":"run.pdf"}`))
	}))
	defer srv.Close()
	t.Setenv(tokenEnv, "from-env")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "art.svg"), []byte(testSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	job := baseJob + "file_type: svg\nsvg_path: art.svg\nrenderer:\n  url: " + srv.URL + "\n  token: from-file\n"
	o := options{JobPath: writeJob(t, dir, job), Render: true, Mode: vector.ModeDevelopment}

	var out bytes.Buffer
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		"Artwork locked: 200x100 at scale 2.9764",
		"Vector PDF: https://files.example/run.pdf (key run.pdf, preview ",
		"Generated 2 pages, 8 tickets (A001 → A008)",
	} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output lacks %q:\n%s", s, out.String())
		}
	}
	if auth != "Bearer from-env" {
		t.Errorf("Authorization = %q", auth)
	}
	if body.VectorMetadata.FileType != vector.FileSVG || body.VectorMetadata.Layout.TotalPages != 2 {
		t.Errorf("request %+v", body.VectorMetadata)
	}
}
