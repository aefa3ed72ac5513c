package report

import (
	"slices"
	"strings"

	"nbreport/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns readable tree of the request. Output payloads are listed by
// mime type and size only.
func (r *Request) String() string {
	if r == nil {
		return "<nil Request>"
	}
	return treeWriter{debug.NewTreeWriter()}.request(r).String()
}

func (tw treeWriter) request(r *Request) treeWriter {
	tw.Line(0, "Request format=%s blocks=%d", r.Format, len(r.Content))
	tw.TextBlock(1, "Title", r.Title)
	if len(r.TemplatePath) > 0 {
		tw.TextBlock(1, "TemplatePath", r.TemplatePath)
	}
	if m := r.Metadata; m != nil {
		tw.Line(1, "Metadata")
		tw.Field(2, "ProjectID", m.ProjectID)
		tw.Field(2, "ProjectName", m.ProjectName)
		tw.Field(2, "ReportID", m.ReportID)
		tw.Field(2, "Author", m.Author)
		if len(m.DataSources) > 0 {
			tw.Field(2, "DataSources", strings.Join(m.DataSources, ", "))
		}
		if m.PDFStyle != nil {
			tw.Line(2, "PDFStyle %+v", m.PDFStyle.Style())
		}
	}
	for i := range r.Content {
		tw.block(1, i, &r.Content[i])
	}
	return tw
}

func (tw treeWriter) block(depth, i int, b *Block) {
	tw.Line(depth, "Block[%d] kind=%s", i, b.Kind)
	if b.Kind == KindGeneric {
		tw.TextBlock(depth+1, "Raw", b.String())
		return
	}
	if !b.Origin.IsZero() {
		tw.Field(depth+1, "Origin", b.Origin.Reference())
	}
	tw.TextBlock(depth+1, "Text", b.Text())
	for j, o := range b.Outputs {
		tw.Line(depth+1, "Output[%d] type=%q text=%d", j, o.OutputType, len(o.Text))
		mimes := make([]string, 0, len(o.Data))
		for k := range o.Data {
			mimes = append(mimes, k)
		}
		slices.Sort(mimes)
		for _, k := range mimes {
			tw.Line(depth+2, "%s bytes=%d", k, len(o.Data[k]))
		}
	}
}
