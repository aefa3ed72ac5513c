// Package pdf draws paged documents with gofpdf.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"nbreport/config"
	"nbreport/report"
	"nbreport/textflow"
	"nbreport/visual"
)

const (
	coreFamily = "Helvetica"
	ttfFamily  = "nbreport"
)

// face is a registered font.
type face struct {
	family, style string
	utf8          bool
}

// Surface implements render.Surface on top of gofpdf document.
type Surface struct {
	p     *gofpdf.Fpdf
	tr    func(string) string
	faces [2]face // regular, bold
	cur   face

	images map[*visual.Asset]string
	dests  map[string]int
}

func newSurface(st report.Style, fonts config.FontsConfig) (*Surface, error) {
	p := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: st.PageWidth, Ht: st.PageHeight},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)

	s := &Surface{
		p:      p,
		tr:     p.UnicodeTranslatorFromDescriptor(""),
		faces:  [2]face{{family: coreFamily}, {family: coreFamily, style: "B"}},
		images: make(map[*visual.Asset]string),
		dests:  make(map[string]int),
	}

	// missing bold falls back to regular
	bold := fonts.Bold
	if len(bold) == 0 {
		bold = fonts.Regular
	}
	if len(fonts.Regular) > 0 {
		p.AddUTF8Font(ttfFamily, "", fonts.Regular)
		s.faces[0] = face{family: ttfFamily, utf8: true}
	}
	if len(bold) > 0 {
		p.AddUTF8Font(ttfFamily, "B", bold)
		s.faces[1] = face{family: ttfFamily, style: "B", utf8: true}
	}
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("unable to register fonts: %w", err)
	}
	return s, nil
}

func (s *Surface) setFace(f textflow.Face) face {
	ff := s.faces[0]
	if f.Bold {
		ff = s.faces[1]
	}
	s.p.SetFont(ff.family, ff.style, f.Size)
	s.cur = ff
	return ff
}

func (s *Surface) encode(ff face, text string) string {
	if ff.utf8 {
		return text
	}
	return s.tr(text)
}

// StringWidth measures text in points.
func (s *Surface) StringWidth(text string, f textflow.Face) float64 {
	ff := s.setFace(f)
	return s.p.GetStringWidth(s.encode(ff, text))
}

func (s *Surface) AddPage() {
	s.p.AddPage()
}

func (s *Surface) Text(x, y float64, text string, f textflow.Face) {
	ff := s.setFace(f)
	s.p.Text(x, y, s.encode(ff, text))
}

func (s *Surface) Image(a *visual.Asset, pl visual.Placement) {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	name, ok := s.images[a]
	if !ok {
		name = fmt.Sprintf("asset-%d", len(s.images))
		s.images[a] = name
		s.p.RegisterImageOptionsReader(name, opts, bytes.NewReader(a.Data))
	}
	s.p.ImageOptions(name, pl.X, pl.Y, pl.W, pl.H, false, opts, 0, "")
}

// Bookmark adds outline entry. Outline entries and internal links point to
// pages, names are kept to resolve pages by bookmark.
func (s *Surface) Bookmark(name, title string, level int) {
	s.dests[name] = s.p.PageNo()
	// gofpdf encodes outline text according to the current font
	s.p.Bookmark(s.encode(s.cur, title), level, 0)
}

func (s *Surface) LinkPage(x, y, w, h float64, page int) {
	id := s.p.AddLink()
	s.p.SetLink(id, 0, page)
	s.p.Link(x, y, w, h, id)
}

// Destination returns page of named bookmark.
func (s *Surface) Destination(name string) (int, bool) {
	page, ok := s.dests[name]
	return page, ok
}
