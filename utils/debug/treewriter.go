// Package debug has helpers producing human readable dumps of program
// structures for troubleshooting and terse CLI output.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const stampLayout = time.RFC3339

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value, so control characters stay visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Field writes unquoted label and value, empty values are omitted.
func (tw TreeWriter) Field(depth int, label, value string) {
	if len(value) == 0 {
		return
	}
	tw.Line(depth, "%s: %s", label, value)
}

// Stamp writes time in UTC, zero time is omitted.
func (tw TreeWriter) Stamp(depth int, label string, t time.Time) {
	if t.IsZero() {
		return
	}
	tw.Field(depth, label, t.UTC().Format(stampLayout))
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
