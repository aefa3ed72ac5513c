package render

import (
	"regexp"
	"slices"
	"strings"

	"nbreport/heading"
	"nbreport/report"
	"nbreport/visual"
)

// summaryMarkers select block which gets executive summary bookmark.
var summaryMarkers = []string{"Executive Summary", "エグゼクティブサマリー"}

// Content is what single block contributes to the document.
type Content struct {
	Kind    report.Kind
	Heading heading.Heading
	// HasHeading is set when Heading was detected
	HasHeading bool
	// Body is text of the (first) page or slide of the block.
	Body string
	// Asset is picture drawn instead of Body.
	Asset *visual.Asset
	// Source of code block drawn on a page following its picture.
	Source string
	// Reference is provenance of the block, empty when unknown.
	Reference string
	// Summary is set when block carries executive summary marker.
	Summary bool
}

// Dispatch turns block into its content. asset is the resolved visual of a
// code block. Dispatch is pure, both passes call it for every block.
func Dispatch(b report.Block, asset *visual.Asset) Content {
	c := Content{Kind: b.Kind, Reference: b.Origin.Reference()}
	c.Heading, c.HasHeading = heading.First(b)

	switch b.Kind {
	case report.KindText:
		c.Summary = hasSummaryMarker(b.Content)
		if c.HasHeading {
			c.Body = heading.HTMLBody(b.Content)
		} else {
			c.Body = heading.StripTags(b.Content)
		}
	case report.KindMarkdown:
		c.Summary = hasSummaryMarker(b.Source)
		c.Body = b.Source
		if c.HasHeading {
			c.Body = heading.RemoveMarkdownHeading(b.Source)
		}
	case report.KindCode:
		if asset != nil {
			c.Asset = asset
			c.Source = b.Source
		} else {
			c.Body = b.Source
		}
	default:
		c.Body = b.String()
	}
	return c
}

func hasSummaryMarker(text string) bool {
	for _, m := range summaryMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

var nonSlug = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

const maxBookmarkSlug = 60

// BookmarkName returns "sec-" followed by heading text with every run of
// characters other than ASCII letters, digits, '_' and '-' replaced by '-',
// truncated to 60 characters.
func BookmarkName(title string) string {
	s := nonSlug.ReplaceAllString(title, "-")
	if len(s) > maxBookmarkSlug {
		// s is ASCII now
		s = s[:maxBookmarkSlug]
	}
	return "sec-" + s
}

// References accumulates unique provenance strings.
type References struct {
	seen map[string]struct{}
}

func (r *References) Add(ref string) {
	if len(ref) == 0 {
		return
	}
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	r.seen[ref] = struct{}{}
}

// Sorted returns unique references in ascending order.
func (r *References) Sorted() []string {
	out := make([]string, 0, len(r.seen))
	for ref := range r.seen {
		out = append(out, ref)
	}
	slices.Sort(out)
	return out
}

// Text is body of the references page.
func (r *References) Text() string {
	refs := r.Sorted()
	if len(refs) == 0 {
		return "References: (none)"
	}
	return "References:\n" + strings.Join(refs, "\n")
}
