// Package render lays content blocks out onto pages or slides. Paged output
// is produced in two passes: Layout discovers on which pages headings land
// and Emit draws the final document with table of contents. Slide decks
// are produced in a single pass by Present.
package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"nbreport/report"
	"nbreport/textflow"
	"nbreport/visual"
)

var (
	// ErrTemplateMissing is reported when referenced template does not exist
	// or cannot be used.
	ErrTemplateMissing = errors.New("template is missing")
	// ErrDiverged means second pass produced different page sequence, which
	// is a bug.
	ErrDiverged = errors.New("pagination diverged between passes")
)

// Fixed bookmark names and outline titles.
const (
	BookmarkTOC        = "toc"
	BookmarkSummary    = "summary"
	BookmarkReferences = "references"

	TitleTOC        = "Table of Contents"
	TitleSummary    = "Executive Summary"
	TitleReferences = "References"
)

// Document is everything needed to render a request. Visual assets are
// resolved in advance so every pass sees identical bitmaps.
type Document struct {
	Title     string
	Meta      *report.Metadata
	Style     report.Style
	Blocks    []report.Block
	Assets    []*visual.Asset // parallel to Blocks, nil when block has no visual
	Template  string
	Generated time.Time
}

// NewDocument prepares request for rendering. assets may be shorter than
// request content.
func NewDocument(req *report.Request, assets []*visual.Asset, generated time.Time) *Document {
	doc := &Document{
		Title:     req.Title,
		Meta:      req.Meta(),
		Style:     req.Style(),
		Blocks:    req.Content,
		Assets:    make([]*visual.Asset, len(req.Content)),
		Template:  req.TemplatePath,
		Generated: generated.UTC(),
	}
	copy(doc.Assets, assets)
	return doc
}

// TitleLines are metadata lines shown under document title. Empty fields
// are omitted, generation time is always present.
func (d *Document) TitleLines() []string {
	var lines []string
	m := d.Meta
	if len(m.Author) > 0 {
		lines = append(lines, "Author: "+m.Author)
	}
	if len(m.ProjectID) > 0 {
		lines = append(lines, "Project: "+m.ProjectID)
	}
	if len(m.ProjectName) > 0 {
		lines = append(lines, "ProjectName: "+m.ProjectName)
	}
	if len(m.DataSources) > 0 {
		lines = append(lines, "Sources: "+strings.Join(m.DataSources, ", "))
	}
	return append(lines, "Generated: "+d.Generated.Format("2006-01-02 15:04:05Z"))
}

// CheckTemplate verifies that template file exists and is a regular file.
// Empty path means no template.
func CheckTemplate(path string) error {
	if len(path) == 0 {
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTemplateMissing, path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a file", ErrTemplateMissing, path)
	}
	return nil
}

// Surface is paged drawing capability. Coordinates are in points, origin in
// the top left corner of the page, y of text is its baseline.
type Surface interface {
	textflow.Measurer
	// AddPage starts a new page, the first call starts page 1.
	AddPage()
	Text(x, y float64, text string, face textflow.Face)
	Image(asset *visual.Asset, p visual.Placement)
	// Bookmark registers named destination on the current page and outline
	// entry pointing to it.
	Bookmark(name, title string, level int)
	// LinkPage makes rectangle on the current page a link to another page.
	LinkPage(x, y, w, h float64, page int)
}

// Deck is slide drawing capability.
type Deck interface {
	TitleSlide(title, subtitle string)
	// Slide starts a content slide, empty title leaves placeholder empty.
	Slide(title string)
	// Body adds text box to the current slide.
	Body(text string)
	// Picture adds image to the current slide.
	Picture(asset *visual.Asset)
	// Notes sets notes of the current slide.
	Notes(text string)
}
