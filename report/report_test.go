package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nbreport/common"
)

const sampleRequest = `{
  "title": "Demo",
  "format": "pdf",
  "metadata": {"projectId": "p1", "author": "Ann", "dataSources": ["s3://a", "db"],
               "pdfStyle": {"columns": 2, "columnGap": 0, "bodyLeading": -3}},
  "content": [
    {"type": "notebook_markdown", "source": ["# Title\n", "body"]},
    {"type": "notebook_code", "source": "print(1)",
     "outputs": [{"output_type": "stream", "text": ["1\n"]},
                 {"output_type": "display_data", "data": {"image/png": "iVBORw0KGgo="}}],
     "origin": {"notebookName": "a.ipynb", "cellIndex": 1}},
    {"type": "text_box", "content": "<h1>Intro</h1><p>x</p>"},
    {"type": "kpi", "value": 42}
  ]
}`

func TestDecode(t *testing.T) {
	req, err := Decode(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Title != "Demo" || req.Format != common.FormatPdf {
		t.Errorf("Decode() title/format = %q/%v", req.Title, req.Format)
	}
	if len(req.Content) != 4 {
		t.Fatalf("len(Content) = %d, want 4", len(req.Content))
	}

	kinds := []Kind{KindMarkdown, KindCode, KindText, KindGeneric}
	for i, k := range kinds {
		if req.Content[i].Kind != k {
			t.Errorf("Content[%d].Kind = %v, want %v", i, req.Content[i].Kind, k)
		}
	}
	if got := req.Content[0].Source; got != "# Title\nbody" {
		t.Errorf("joined source = %q", got)
	}
	code := req.Content[1]
	if got := code.Origin.Reference(); got != "a.ipynb#cell-1" {
		t.Errorf("Reference() = %q, want %q", got, "a.ipynb#cell-1")
	}
	if string(code.Outputs[0].Text) != "1\n" {
		t.Errorf("stream text = %q", code.Outputs[0].Text)
	}
	if !code.Outputs[1].Has(MimePNG) {
		t.Error("second output should carry png payload")
	}
	if s, err := code.Outputs[1].String(MimePNG); err != nil || s != "iVBORw0KGgo=" {
		t.Errorf("String(png) = %q, %v", s, err)
	}
	if got := req.Content[3].String(); got != `{"type":"kpi","value":42}` {
		t.Errorf("generic coercion = %q", got)
	}
	if got := req.Content[3].Text(); got != req.Content[3].String() {
		t.Errorf("generic Text() = %q, want string coercion", got)
	}
}

func TestDecode_DefaultsToSlides(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"title": "x", "content": []}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Format != common.FormatPptx {
		t.Errorf("Format = %v, want pptx", req.Format)
	}
	if req.Meta() == nil {
		t.Error("Meta() must never return nil")
	}
}

func TestDecode_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"not json", `{"title": `, ErrMalformed},
		{"wrong type", `{"title": 5}`, ErrMalformed},
		{"unknown format", `{"title": "x", "format": "docx"}`, ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	req, err := Decode(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	buf := new(bytes.Buffer)
	if err := Encode(buf, req); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() of encoded request error = %v", err)
	}
	if len(back.Content) != len(req.Content) || back.Format != req.Format {
		t.Fatalf("round trip lost data: %+v", back)
	}
	for i := range req.Content {
		if back.Content[i].Kind != req.Content[i].Kind || back.Content[i].Text() != req.Content[i].Text() {
			t.Errorf("block %d changed: got %v %q, want %v %q", i,
				back.Content[i].Kind, back.Content[i].Text(), req.Content[i].Kind, req.Content[i].Text())
		}
	}
}

func TestOrigin(t *testing.T) {
	zero := 0
	tests := []struct {
		name   string
		origin *Origin
		want   string
	}{
		{"nil", nil, ""},
		{"empty", &Origin{}, ""},
		{"index zero", &Origin{NotebookName: "b.ipynb", CellIndex: &zero}, "b.ipynb#cell-0"},
		{"no index", &Origin{NotebookName: "c.ipynb"}, "c.ipynb#cell-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.origin.Reference(); got != tt.want {
				t.Errorf("Reference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStyle(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }

	tests := []struct {
		name  string
		style *PDFStyle
		check func(t *testing.T, s Style)
	}{
		{"nil gives defaults", nil, func(t *testing.T, s Style) {
			if s != DefaultStyle() {
				t.Errorf("Style() = %+v, want defaults", s)
			}
		}},
		{"overrides", &PDFStyle{MarginLeft: f(36), BodyFontSize: f(10), Columns: i(3), ColumnGap: f(0)}, func(t *testing.T, s Style) {
			if s.MarginLeft != 36 || s.BodySize != 10 || s.Columns != 3 || s.ColumnGap != 0 {
				t.Errorf("Style() = %+v", s)
			}
		}},
		{"out of range falls back", &PDFStyle{BodyLeading: f(-1), TitleFontSize: f(0), Columns: i(-4), ColumnGap: f(-2)}, func(t *testing.T, s Style) {
			if s.BodyLeading != DefaultBodyLeading || s.TitleSize != DefaultTitleSize || s.Columns != 1 || s.ColumnGap != 0 {
				t.Errorf("Style() = %+v", s)
			}
		}},
		{"margins eating page", &PDFStyle{MarginLeft: f(400), MarginRight: f(400)}, func(t *testing.T, s Style) {
			if s.MarginLeft != DefaultMargin || s.ContentWidth() <= 0 {
				t.Errorf("Style() = %+v", s)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.style.Style())
		})
	}
}

func TestStyle_HeadingLeading(t *testing.T) {
	if got := DefaultStyle().HeadingLeading(); got != 18 {
		t.Errorf("HeadingLeading() = %v, want 18", got)
	}
}

func TestRequestString(t *testing.T) {
	req, err := Decode(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := req.String()
	for _, want := range []string{
		"Request format=pdf blocks=4\n",
		"  Title: \"Demo\"\n",
		"    ProjectID: p1\n",
		"    DataSources: s3://a, db\n",
		"  Block[1] kind=notebook_code\n",
		"    Origin: a.ipynb#cell-1\n",
		"      image/png bytes=14\n",
		"    Raw: \"{\\\"type\\\":\\\"kpi\\\",\\\"value\\\":42}\"\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() does not contain %q:\n%s", want, got)
		}
	}
	if got := (*Request)(nil).String(); got != "<nil Request>" {
		t.Errorf("nil String() = %q", got)
	}
}

func TestDecode_GenericBlocksAreOpaque(t *testing.T) {
	tests := []struct {
		name   string
		block  string
		want   string
		origin string
	}{
		{"object content", `{"type":"table","content":{"rows":[[1,2]]}}`, `{"type":"table","content":{"rows":[[1,2]]}}`, ""},
		{"numeric source", `{"type":"metric","source":42}`, `{"type":"metric","source":42}`, ""},
		{"string outputs", `{"type":"log","outputs":"x"}`, `{"type":"log","outputs":"x"}`, ""},
		{"non object", `[1, 2]`, `[1,2]`, ""},
		{"bare string", `"note"`, `"note"`, ""},
		{"tag not a string", `{"type": 7, "v": 1}`, `{"type":7,"v":1}`, ""},
		{"origin kept", `{"type":"kpi","origin":{"notebookName":"a.ipynb","cellIndex":3}}`,
			`{"type":"kpi","origin":{"notebookName":"a.ipynb","cellIndex":3}}`, "a.ipynb#cell-3"},
		{"bad origin ignored", `{"type":"kpi","origin":"a.ipynb"}`, `{"type":"kpi","origin":"a.ipynb"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Decode(strings.NewReader(`{"title": "x", "content": [` + tt.block + `]}`))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			b := req.Content[0]
			if b.Kind != KindGeneric {
				t.Errorf("Kind = %v, want generic", b.Kind)
			}
			if got := b.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if got := b.Origin.Reference(); got != tt.origin {
				t.Errorf("Reference() = %q, want %q", got, tt.origin)
			}
		})
	}
}

func TestDecode_TypedBlockFieldsStayStrict(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"title": "x", "content": [{"type":"notebook_code","outputs":"x"}]}`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want %v", err, ErrMalformed)
	}
}
