package render

import (
	"fmt"

	"nbreport/report"
	"nbreport/textflow"
	"nbreport/visual"
)

// Options tune paged output.
type Options struct {
	// NestedOutline uses heading level for outline nesting instead of
	// keeping every entry on the top level.
	NestedOutline bool
}

// Entry is table of contents line: heading of a block and page the block
// starts on.
type Entry struct {
	Title string
	Level int
	Page  int
	Name  string
}

// Plan is result of layout pass.
type Plan struct {
	Entries  []Entry
	TOCPages int
	// Pages is total number of pages in the document
	Pages int
}

// Result describes emitted document.
type Result struct {
	Pages      int
	TOCPages   int
	Entries    []Entry
	References []string
}

// Number of TOC pages depends on number of entries only and entries do not
// depend on number of TOC pages, so second round always agrees.
const maxLayoutRounds = 2

// Layout is the first pass. It walks the document exactly as Emit does
// without drawing anything and records heading pages.
func Layout(doc *Document, m textflow.Measurer) *Plan {
	toc := 1
	for round := 1; ; round++ {
		p := newPaginator(doc, discard{m}, Options{})
		p.document(func() { p.reserve(toc) })
		need := tocPageCount(doc.Style, len(p.entries))
		if need == toc || round == maxLayoutRounds {
			return &Plan{Entries: p.entries, TOCPages: toc, Pages: p.page}
		}
		toc = need
	}
}

// Emit is the second pass. It draws title page, table of contents listing
// plan entries, content and references, then verifies that pages match the
// plan.
func Emit(doc *Document, plan *Plan, s Surface, opts Options) (*Result, error) {
	p := newPaginator(doc, s, opts)
	p.document(func() { p.tocPage(plan.Entries) })

	if p.tocPages != plan.TOCPages {
		return nil, fmt.Errorf("%w: table of contents takes %d pages, planned %d", ErrDiverged, p.tocPages, plan.TOCPages)
	}
	if len(p.entries) != len(plan.Entries) {
		return nil, fmt.Errorf("%w: %d headings, planned %d", ErrDiverged, len(p.entries), len(plan.Entries))
	}
	for i, e := range p.entries {
		if e.Page != plan.Entries[i].Page {
			return nil, fmt.Errorf("%w: heading %q on page %d, planned %d", ErrDiverged, e.Title, e.Page, plan.Entries[i].Page)
		}
	}
	return &Result{Pages: p.page, TOCPages: p.tocPages, Entries: p.entries, References: p.refs.Sorted()}, nil
}

// discard is a surface which only measures.
type discard struct {
	textflow.Measurer
}

func (discard) AddPage()                                         {}
func (discard) Text(float64, float64, string, textflow.Face)     {}
func (discard) Image(*visual.Asset, visual.Placement)            {}
func (discard) Bookmark(string, string, int)                     {}
func (discard) LinkPage(float64, float64, float64, float64, int) {}

// paginator owns page creation and page number tracking of a single pass.
type paginator struct {
	doc   *Document
	s     Surface
	opts  Options
	style report.Style
	flow  textflow.Flow

	body, head, title textflow.Face

	page      int
	tocPages  int
	entries   []Entry
	refs      References
	summary   bool
	lastLevel int
}

func newPaginator(doc *Document, s Surface, opts Options) *paginator {
	st := doc.Style
	return &paginator{
		doc:       doc,
		s:         s,
		opts:      opts,
		style:     st,
		flow:      textflow.Flow{Columns: st.Columns, Gap: st.ColumnGap, Leading: st.BodyLeading},
		body:      textflow.Face{Size: st.BodySize},
		head:      textflow.Face{Bold: true, Size: st.HeadingSize},
		title:     textflow.Face{Bold: true, Size: st.TitleSize},
		lastLevel: -1,
	}
}

// document walks title page, toc page(s), content pages and references
// page.
func (p *paginator) document(toc func()) {
	p.titlePage()
	toc()
	for i, b := range p.doc.Blocks {
		p.block(Dispatch(b, p.doc.Assets[i]))
	}
	p.referencesPage()
}

// reserve leaves empty pages for table of contents.
func (p *paginator) reserve(pages int) {
	for range pages {
		p.newPage()
	}
	p.tocPages = pages
}

func (p *paginator) newPage() {
	p.s.AddPage()
	p.page++
}

// box is the content area of a page.
func (p *paginator) box() textflow.Box {
	st := p.style
	return textflow.Box{X: st.MarginLeft, Y: st.MarginTop, W: st.ContentWidth(), H: st.ContentHeight()}
}

// Line and PageBreak make paginator textflow.Sink for body text.
func (p *paginator) Line(x, y float64, text string) {
	p.s.Text(x, y, text, p.body)
}

func (p *paginator) PageBreak() {
	p.newPage()
}

func (p *paginator) titlePage() {
	p.newPage()
	st := p.style
	y := st.MarginTop * 0.75
	for i, line := range textflow.Wrap(p.doc.Title, st.ContentWidth(), p.title, p.s) {
		if i > 0 {
			y += st.TitleSize * 1.2
		}
		p.s.Text(st.MarginLeft, y, line, p.title)
	}
	y = max(st.MarginTop*1.2, y+st.BodyLeading)
	for _, line := range p.doc.TitleLines() {
		p.s.Text(st.MarginLeft, y, line, p.body)
		y += st.BodyLeading
	}
}

// tocSlot is position of a TOC line, page is offset from the first TOC page.
type tocSlot struct {
	page int
	y    float64
}

// tocSlots places n TOC lines. The first page starts below its caption,
// continuation pages start at the top of content area.
func tocSlots(st report.Style, n int) ([]tocSlot, int) {
	slots := make([]tocSlot, n)
	page, y := 0, st.MarginTop*1.2
	limit := st.PageHeight - st.MarginBottom
	for i := range slots {
		slots[i] = tocSlot{page: page, y: y}
		y += st.BodyLeading
		if y > limit && i < n-1 {
			page++
			y = st.MarginTop + st.BodyLeading
		}
	}
	return slots, page + 1
}

func tocPageCount(st report.Style, n int) int {
	_, pages := tocSlots(st, n)
	return pages
}

func tocLine(e Entry) string {
	return fmt.Sprintf("%s ....... %d", e.Title, e.Page)
}

func (p *paginator) tocPage(entries []Entry) {
	st := p.style
	p.newPage()
	first := p.page
	p.s.Text(st.MarginLeft, st.MarginTop*0.75, TitleTOC, p.head)
	p.bookmark(BookmarkTOC, TitleTOC, 0)

	slots, pages := tocSlots(st, len(entries))
	for i, e := range entries {
		for p.page < first+slots[i].page {
			p.newPage()
		}
		x := st.MarginLeft + 12*float64(max(e.Level, 1)-1)
		line := tocLine(e)
		p.s.Text(x, slots[i].y, line, p.body)
		p.s.LinkPage(x, slots[i].y-st.BodySize, p.s.StringWidth(line, p.body), st.BodyLeading, e.Page)
	}
	p.tocPages = pages
}

// outlineLevel keeps levels consecutive, an entry is never nested deeper
// than one level below its predecessor.
func (p *paginator) outlineLevel(level int) int {
	if !p.opts.NestedOutline {
		return 0
	}
	lvl := min(max(level-1, 0), p.lastLevel+1)
	return lvl
}

func (p *paginator) bookmark(name, title string, level int) {
	p.s.Bookmark(name, title, level)
	p.lastLevel = level
}

func (p *paginator) block(c Content) {
	st := p.style
	full := p.box()

	p.newPage()
	start := p.page

	// bookmarks point to the page block starts on
	if c.HasHeading {
		name := BookmarkName(c.Heading.Text)
		p.entries = append(p.entries, Entry{Title: c.Heading.Text, Level: c.Heading.Level, Page: start, Name: name})
		p.bookmark(name, c.Heading.Text, p.outlineLevel(c.Heading.Level))
	}
	if c.Summary && !p.summary {
		p.bookmark(BookmarkSummary, TitleSummary, 0)
		p.summary = true
	}

	top, bottom := full.Y, full.Y+full.H
	if c.HasHeading {
		for _, line := range textflow.Wrap(c.Heading.Text, full.W, p.head, p.s) {
			if top > full.Y && top+st.HeadingLeading() > bottom {
				p.newPage()
				top = full.Y
			}
			top += st.HeadingLeading()
			p.s.Text(full.X, top, line, p.head)
		}
	}

	if c.Asset != nil {
		if pl, ok := visual.Fit(c.Asset.Width, c.Asset.Height, full); ok {
			p.s.Image(c.Asset, pl)
		}
		if len(c.Source) > 0 {
			p.newPage()
			p.text(c.Source, full, full)
		}
	} else {
		first := full
		first.Y, first.H = top, bottom-top
		// body needs room for at least one unclamped line under heading
		if len(c.Body) > 0 && first.H < 3*p.flow.Leading {
			p.newPage()
			first = full
		}
		p.text(c.Body, first, full)
	}
	p.refs.Add(c.Reference)
}

func (p *paginator) text(text string, first, rest textflow.Box) {
	lines := textflow.Wrap(text, p.flow.ColumnWidth(rest.W), p.body, p.s)
	p.flow.Draw(lines, first, rest, p)
}

func (p *paginator) referencesPage() {
	p.newPage()
	p.bookmark(BookmarkReferences, TitleReferences, 0)
	full := p.box()
	p.text(p.refs.Text(), full, full)
}
