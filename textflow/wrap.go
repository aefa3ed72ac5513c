// Package textflow implements greedy word wrapping and multi-column flow of
// wrapped lines over fixed size pages.
package textflow

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Face selects font for measuring and drawing.
type Face struct {
	Family string
	Bold   bool
	Size   float64
}

// Measurer returns rendered width of text. It must be a pure function of
// its arguments.
type Measurer interface {
	StringWidth(text string, face Face) float64
}

// MeasureFunc adapts plain function to Measurer.
type MeasureFunc func(text string, face Face) float64

func (f MeasureFunc) StringWidth(text string, face Face) float64 {
	return f(text, face)
}

// SplitLines breaks text on explicit line breaks. Blank lines are kept, a
// single trailing line break does not produce extra empty line.
func SplitLines(text string) []string {
	if len(text) == 0 {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Wrap greedily packs space separated words into lines no wider than width.
// A word wider than width on its own is placed alone on its line, text is
// never hyphenated. Empty text produces no lines.
func Wrap(text string, width float64, face Face, m Measurer) []string {
	text = norm.NFC.String(text)

	var out []string
	for _, raw := range SplitLines(text) {
		cur := ""
		for _, w := range strings.Split(raw, " ") {
			trial := w
			if len(cur) > 0 {
				trial = cur + " " + w
			}
			trial = strings.TrimSpace(trial)
			if m.StringWidth(trial, face) <= width {
				cur = trial
				continue
			}
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = w
		}
		out = append(out, cur)
	}
	return out
}
