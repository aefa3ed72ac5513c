package pdf

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"nbreport/config"
	"nbreport/render"
	"nbreport/report"
	"nbreport/textflow"
	"nbreport/utils/images"
	"nbreport/visual"
)

func testConfig() config.PDFConfig {
	return config.PDFConfig{Author: "Notebook Report Weaver"}
}

func newDoc(blocks ...report.Block) *render.Document {
	req := &report.Request{
		Title:    "Demo",
		Content:  blocks,
		Metadata: &report.Metadata{ProjectID: "p1", DataSources: []string{"sales.csv"}},
	}
	return render.NewDocument(req, nil, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestRenderValidPDF(t *testing.T) {
	idx := 3
	doc := newDoc(
		report.Block{Kind: report.KindText, Content: "<h1>Überblick</h1><p>Grüße aus München, naïve café</p>"},
		report.Block{Kind: report.KindMarkdown, Source: "## Details\n" + strings.Repeat("some words here\n", 200)},
		report.Block{Kind: report.KindCode, Source: "plot()", Origin: &report.Origin{NotebookName: "a.ipynb", CellIndex: &idx}},
	)
	doc.Assets[2] = &visual.Asset{Kind: visual.KindRaster, Data: images.Placeholder(40, 20, images.PlaceholderColor), Width: 40, Height: 20}

	buf := new(bytes.Buffer)
	res, err := NewRenderer(testConfig(), zaptest.NewLogger(t)).Render(context.Background(), doc, buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pages, err := Validate(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if pages != res.Pages {
		t.Errorf("PDF has %d pages, renderer reported %d", pages, res.Pages)
	}
	if len(res.Entries) != 2 || res.Entries[0].Page != 3 {
		t.Errorf("got entries %+v", res.Entries)
	}
	if len(res.References) != 1 || res.References[0] != "a.ipynb#cell-3" {
		t.Errorf("got references %v", res.References)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output does not look like PDF")
	}
}

func TestRenderEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	res, err := NewRenderer(testConfig(), zaptest.NewLogger(t)).Render(context.Background(), newDoc(), buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pages, err := Validate(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if pages != 3 || res.Pages != 3 {
		t.Errorf("got %d pages (reported %d), want title, toc and references", pages, res.Pages)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	doc := newDoc()
	doc.Template = filepath.Join(t.TempDir(), "nope.pptx")
	_, err := NewRenderer(testConfig(), zaptest.NewLogger(t)).Render(context.Background(), doc, new(bytes.Buffer))
	if !errors.Is(err, render.ErrTemplateMissing) {
		t.Errorf("got %v, want ErrTemplateMissing", err)
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(testConfig(), zaptest.NewLogger(t)).Render(ctx, newDoc(), new(bytes.Buffer))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestSurfaceBookmarks(t *testing.T) {
	s, err := newSurface(report.DefaultStyle(), config.FontsConfig{})
	if err != nil {
		t.Fatalf("newSurface: %v", err)
	}
	s.AddPage()
	s.Bookmark("toc", "Table of Contents", 0)
	s.AddPage()
	s.Bookmark("sec-A", "A", 0)
	for name, want := range map[string]int{"toc": 1, "sec-A": 2} {
		if got, ok := s.Destination(name); !ok || got != want {
			t.Errorf("%s: got page %d, want %d", name, got, want)
		}
	}
	if _, ok := s.Destination("missing"); ok {
		t.Error("unknown bookmark resolved")
	}
}

func TestSurfaceMeasure(t *testing.T) {
	s, err := newSurface(report.DefaultStyle(), config.FontsConfig{})
	if err != nil {
		t.Fatalf("newSurface: %v", err)
	}
	regular := textflow.Face{Size: 12}
	bold := textflow.Face{Bold: true, Size: 12}
	w := s.StringWidth("Hello", regular)
	if w <= 0 {
		t.Fatalf("got width %v", w)
	}
	if got := s.StringWidth("Hello", textflow.Face{Size: 24}); got < 1.99*w || got > 2.01*w {
		t.Errorf("doubling size: got %v, want %v", got, 2*w)
	}
	if got := s.StringWidth("Hello", bold); got <= w {
		t.Errorf("bold %v is not wider than regular %v", got, w)
	}
	if got := s.StringWidth("", regular); got != 0 {
		t.Errorf("empty string width %v", got)
	}
}

func TestMissingFont(t *testing.T) {
	_, err := newSurface(report.DefaultStyle(), config.FontsConfig{Regular: filepath.Join(t.TempDir(), "none.ttf")})
	if err == nil {
		t.Error("got nil error for missing font")
	}
}
