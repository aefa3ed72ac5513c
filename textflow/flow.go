package textflow

import "math"

// Box is a rectangular region on a page, Y grows downwards from the top edge.
type Box struct {
	X, Y, W, H float64
}

// Sink receives drawing instructions produced by Flow.
type Sink interface {
	// Line draws text with baseline at (x, y).
	Line(x, y float64, text string)
	// PageBreak finishes current page and starts a new one.
	PageBreak()
}

// Flow distributes lines over evenly sized columns, left to right, top to
// bottom, breaking pages when all columns are full. Drawing and estimation
// share the same capacity arithmetic so they always agree.
type Flow struct {
	Columns int
	Gap     float64
	Leading float64
}

func (f Flow) columns() int {
	return max(f.Columns, 1)
}

func (f Flow) gap() float64 {
	return max(f.Gap, 0)
}

// ColumnWidth is (width - gap*(columns-1)) / columns.
func (f Flow) ColumnWidth(width float64) float64 {
	n := f.columns()
	return (width - f.gap()*float64(n-1)) / float64(n)
}

// LinesPerColumn is floor(height/leading) - 2, but at least 1.
func (f Flow) LinesPerColumn(height float64) int {
	if f.Leading <= 0 {
		return 1
	}
	return max(int(math.Floor(height/f.Leading))-2, 1)
}

// Capacity returns number of lines fitting on a page region of given height.
func (f Flow) Capacity(height float64) int {
	return f.LinesPerColumn(height) * f.columns()
}

// Pages returns how many pages n lines occupy when the first page offers
// region of height first and every following page region of height rest. Even
// no lines occupy the current page.
func (f Flow) Pages(n int, first, rest float64) int {
	c := f.Capacity(first)
	if n <= c {
		return 1
	}
	r := f.Capacity(rest)
	return 1 + (n-c+r-1)/r
}

// Draw lays lines out starting in box first. After page break flow
// continues in box rest. Both boxes are expected to have the same width,
// lines are wrapped once for it. It returns number of pages touched (including the
// current one) and baseline of the last drawn line (first.Y if nothing was
// drawn).
func (f Flow) Draw(lines []string, first, rest Box, sink Sink) (pages int, bottom float64) {
	pages, bottom = 1, first.Y
	box := first
	for idx := 0; idx < len(lines); {
		if idx > 0 {
			sink.PageBreak()
			pages++
			box = rest
		}
		per := f.LinesPerColumn(box.H)
		colW := f.ColumnWidth(box.W)
		for ci := 0; ci < f.columns() && idx < len(lines); ci++ {
			x := box.X + float64(ci)*(colW+f.gap())
			for row := 0; row < per && idx < len(lines); row++ {
				bottom = box.Y + float64(row+1)*f.Leading
				sink.Line(x, bottom, lines[idx])
				idx++
			}
		}
	}
	return pages, bottom
}

// EstimatePageCount wraps text to column width of box and returns number of
// pages it occupies when every page offers the full box.
func EstimatePageCount(text string, box Box, f Flow, face Face, m Measurer) int {
	lines := Wrap(text, f.ColumnWidth(box.W), face, m)
	return f.Pages(len(lines), box.H, box.H)
}
