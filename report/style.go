package report

// A4 in points.
const (
	PageWidthA4  = 595.2755905511812
	PageHeightA4 = 841.8897637795277
)

// Default style values, points.
const (
	DefaultMargin      = 72.0
	DefaultBodyLeading = 14.0
	DefaultTitleSize   = 24.0
	DefaultHeadingSize = 16.0
	DefaultBodySize    = 12.0
	DefaultColumns     = 1
	DefaultColumnGap   = 12.0
)

// PDFStyle is wire representation of layout overrides. Every field is
// optional.
type PDFStyle struct {
	MarginLeft      *float64 `json:"marginLeft,omitempty"`
	MarginRight     *float64 `json:"marginRight,omitempty"`
	MarginTop       *float64 `json:"marginTop,omitempty"`
	MarginBottom    *float64 `json:"marginBottom,omitempty"`
	BodyLeading     *float64 `json:"bodyLeading,omitempty"`
	TitleFontSize   *float64 `json:"titleFontSize,omitempty"`
	HeadingFontSize *float64 `json:"headingFontSize,omitempty"`
	BodyFontSize    *float64 `json:"bodyFontSize,omitempty"`
	Columns         *int     `json:"columns,omitempty"`
	ColumnGap       *float64 `json:"columnGap,omitempty"`
}

// Style is resolved page geometry and typography.
type Style struct {
	PageWidth, PageHeight float64

	MarginLeft, MarginRight, MarginTop, MarginBottom float64

	BodyLeading float64
	TitleSize   float64
	HeadingSize float64
	BodySize    float64

	Columns   int
	ColumnGap float64
}

// DefaultStyle returns A4 style with all defaults.
func DefaultStyle() Style {
	return Style{
		PageWidth:    PageWidthA4,
		PageHeight:   PageHeightA4,
		MarginLeft:   DefaultMargin,
		MarginRight:  DefaultMargin,
		MarginTop:    DefaultMargin,
		MarginBottom: DefaultMargin,
		BodyLeading:  DefaultBodyLeading,
		TitleSize:    DefaultTitleSize,
		HeadingSize:  DefaultHeadingSize,
		BodySize:     DefaultBodySize,
		Columns:      DefaultColumns,
		ColumnGap:    DefaultColumnGap,
	}
}

func nonNegative(v *float64, def float64) float64 {
	if v == nil || *v < 0 {
		return def
	}
	return *v
}

func positive(v *float64, def float64) float64 {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

// Style resolves overrides on top of defaults. Absent or out of range values
// never fail, they fall back to defaults (columns are clamped to at least one,
// gap to zero).
func (p *PDFStyle) Style() Style {
	s := DefaultStyle()
	if p == nil {
		return s
	}
	s.MarginLeft = nonNegative(p.MarginLeft, s.MarginLeft)
	s.MarginRight = nonNegative(p.MarginRight, s.MarginRight)
	s.MarginTop = nonNegative(p.MarginTop, s.MarginTop)
	s.MarginBottom = nonNegative(p.MarginBottom, s.MarginBottom)
	s.BodyLeading = positive(p.BodyLeading, s.BodyLeading)
	s.TitleSize = positive(p.TitleFontSize, s.TitleSize)
	s.HeadingSize = positive(p.HeadingFontSize, s.HeadingSize)
	s.BodySize = positive(p.BodyFontSize, s.BodySize)
	if p.Columns != nil {
		s.Columns = max(*p.Columns, 1)
	}
	if p.ColumnGap != nil {
		s.ColumnGap = max(*p.ColumnGap, 0)
	}

	// margins eating the whole page make no sense
	if s.ContentWidth() <= 0 || s.ContentHeight() <= 0 {
		s.MarginLeft, s.MarginRight = DefaultMargin, DefaultMargin
		s.MarginTop, s.MarginBottom = DefaultMargin, DefaultMargin
	}
	return s
}

// ContentWidth is page width between left and right margins.
func (s Style) ContentWidth() float64 {
	return s.PageWidth - s.MarginLeft - s.MarginRight
}

// ContentHeight is page height between top and bottom margins.
func (s Style) ContentHeight() float64 {
	return s.PageHeight - s.MarginTop - s.MarginBottom
}

// HeadingLeading is line advance used for block headings.
func (s Style) HeadingLeading() float64 {
	return s.BodyLeading + 4
}
