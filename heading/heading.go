// Package heading infers a single leading heading of a content block.
package heading

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"nbreport/report"
	"nbreport/textflow"
)

// Heading is text and level (1..6) of a detected heading.
type Heading struct {
	Text  string
	Level int
}

var (
	markdownHeading = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.+)$`)
	markdownPrefix  = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)

	// keeps only elements which affect line structure, drops scripts,
	// styles and attributes. Policies are safe for concurrent use.
	structural = bluemonday.NewPolicy().AllowElements(
		"p", "div", "br", "li", "ul", "ol", "tr", "table", "pre", "blockquote",
		"section", "article", "header", "footer", "h1", "h2", "h3", "h4", "h5", "h6",
	)
)

// First returns leading heading of the block. It has no side effects and
// returns identical result for identical input. Generic and code blocks
// never have headings.
func First(b report.Block) (Heading, bool) {
	switch b.Kind {
	case report.KindMarkdown:
		return Markdown(b.Source)
	case report.KindText:
		return HTML(b.Content)
	default:
		return Heading{}, false
	}
}

// Markdown returns first line that looks like ATX heading: up to 3 leading
// spaces, 1 to 6 '#' characters, whitespace, text.
func Markdown(src string) (Heading, bool) {
	for _, line := range textflow.SplitLines(src) {
		if m := markdownHeading.FindStringSubmatch(line); m != nil {
			return Heading{Text: strings.TrimSpace(m[2]), Level: len(m[1])}, true
		}
	}
	return Heading{}, false
}

// HTML prefers first h1 or h2 element (level 1 for h1, 2 otherwise) and
// falls back to the first line of tag stripped text at level 2. Heading
// elements without any text are skipped.
func HTML(markup string) (Heading, bool) {
	if h, ok := headingElement(markup); ok {
		return h, true
	}
	for _, line := range textflow.SplitLines(StripTags(markup)) {
		if line = strings.TrimSpace(line); len(line) > 0 {
			return Heading{Text: line, Level: 2}, true
		}
	}
	return Heading{}, false
}

func headingElement(markup string) (Heading, bool) {
	z := html.NewTokenizer(strings.NewReader(markup))

	var (
		inside bool
		level  int
		text   strings.Builder
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input, unterminated element does not count
			return Heading{}, false
		case html.StartTagToken:
			if inside {
				continue
			}
			switch tn, _ := z.TagName(); atom.Lookup(tn) {
			case atom.H1:
				inside, level = true, 1
			case atom.H2:
				inside, level = true, 2
			}
			text.Reset()
		case html.EndTagToken:
			if !inside {
				continue
			}
			tn, _ := z.TagName()
			if a := atom.Lookup(tn); a != atom.H1 && a != atom.H2 {
				continue
			}
			inside = false
			if t := strings.TrimSpace(text.String()); len(t) > 0 {
				return Heading{Text: t, Level: level}, true
			}
		case html.TextToken:
			if inside {
				text.Write(z.Text())
			}
		}
	}
}

// StripTags removes all markup and decodes entities. Block level elements
// start new lines, whitespace inside lines is collapsed and empty lines are
// dropped.
func StripTags(markup string) string {
	return plainText(markup, false)
}

// HTMLBody is StripTags without the heading HTML would report: text of the
// first non-empty h1/h2 element or, when fallback was used, the first line.
func HTMLBody(markup string) string {
	if _, ok := headingElement(markup); ok {
		return plainText(markup, true)
	}
	lines := strings.Split(plainText(markup, false), "\n")
	if len(lines) <= 1 {
		return ""
	}
	return strings.Join(lines[1:], "\n")
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Tr: true, atom.Table: true, atom.Pre: true, atom.Blockquote: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

func plainText(markup string, skipHeading bool) string {
	z := html.NewTokenizer(strings.NewReader(structural.Sanitize(markup)))

	var (
		out     strings.Builder
		head    strings.Builder
		inside  bool
		skipped bool
	)
	write := func(s string) {
		if inside {
			head.WriteString(s)
			return
		}
		out.WriteString(s)
	}
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			write(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if blockElements[a] {
				write("\n")
			}
			if skipHeading && !skipped && !inside && (a == atom.H1 || a == atom.H2) {
				inside = true
				head.Reset()
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if inside && (a == atom.H1 || a == atom.H2) {
				inside = false
				if len(strings.TrimSpace(head.String())) > 0 {
					skipped = true
				} else {
					out.WriteString(head.String())
				}
			}
			if blockElements[a] {
				write("\n")
			}
		}
	}
	if inside {
		out.WriteString(head.String())
	}

	var lines []string
	for line := range strings.SplitSeq(out.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// RemoveMarkdownHeading drops the first heading line from markdown source.
func RemoveMarkdownHeading(src string) string {
	lines := textflow.SplitLines(src)
	out := make([]string, 0, len(lines))
	used := false
	for _, line := range lines {
		if !used && markdownPrefix.MatchString(line) {
			used = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
