// Package report defines export request model: report title, metadata and an
// ordered list of content blocks extracted from computational notebooks.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"nbreport/common"
)

// Kind is closed set of content block variants. Anything not recognized
// becomes KindGeneric.
type Kind int

const (
	KindGeneric Kind = iota
	KindText
	KindMarkdown
	KindCode
)

// Block type tags as they appear in requests.
const (
	TypeTextBox  = "text_box"
	TypeMarkdown = "notebook_markdown"
	TypeCode     = "notebook_code"
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return TypeTextBox
	case KindMarkdown:
		return TypeMarkdown
	case KindCode:
		return TypeCode
	default:
		return "generic"
	}
}

// Mime types of recognized output payloads.
const (
	MimeText   = "text/plain"
	MimePNG    = "image/png"
	MimeSVG    = "image/svg+xml"
	MimePlotly = "application/vnd.plotly.v1+json"
)

// Text accepts both a JSON string and a list of strings (notebook format
// splits multiline values into lines).
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '[' {
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*t = Text(strings.Join(parts, ""))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// Origin identifies notebook cell block was sourced from. It is used for
// provenance only and never affects layout.
type Origin struct {
	NotebookName string `json:"notebookName"`
	CellIndex    *int   `json:"cellIndex,omitempty"`
}

// IsZero reports absence of any provenance information.
func (o *Origin) IsZero() bool {
	return o == nil || (len(o.NotebookName) == 0 && o.CellIndex == nil)
}

// Reference returns "{notebookName}#cell-{cellIndex}".
func (o *Origin) Reference() string {
	if o.IsZero() {
		return ""
	}
	idx := ""
	if o.CellIndex != nil {
		idx = strconv.Itoa(*o.CellIndex)
	}
	return o.NotebookName + "#cell-" + idx
}

// Output is a single notebook cell output with payloads keyed by mime type.
type Output struct {
	OutputType string                     `json:"output_type,omitempty"`
	Text       Text                       `json:"text,omitempty"`
	Data       map[string]json.RawMessage `json:"data,omitempty"`
	Metadata   map[string]json.RawMessage `json:"metadata,omitempty"`
}

// Has reports whether output carries payload of requested type.
func (o Output) Has(mime string) bool {
	_, ok := o.Data[mime]
	return ok
}

// String returns payload of requested type as text, joining line lists.
func (o Output) String(mime string) (string, error) {
	raw, ok := o.Data[mime]
	if !ok {
		return "", fmt.Errorf("no %s payload", mime)
	}
	var t Text
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", fmt.Errorf("unable to decode %s payload: %w", mime, err)
	}
	return string(t), nil
}

// Raw returns payload of requested type as is.
func (o Output) Raw(mime string) json.RawMessage {
	return o.Data[mime]
}

// Block is one unit of report content.
type Block struct {
	Kind Kind
	// Type is request tag, kept for generic blocks
	Type string
	// Content is HTML-ish markup of text boxes
	Content string
	// Source is markdown or code text
	Source  string
	Outputs []Output
	Origin  *Origin
	// Raw keeps original JSON object, generic blocks are rendered from it
	Raw json.RawMessage
}

type wireBlock struct {
	Type    string   `json:"type"`
	Content Text     `json:"content"`
	Source  Text     `json:"source"`
	Outputs []Output `json:"outputs"`
	Origin  *Origin  `json:"origin"`
}

type wireTag struct {
	Type   json.RawMessage `json:"type"`
	Origin json.RawMessage `json:"origin"`
}

type wireFields struct {
	Content Text     `json:"content"`
	Source  Text     `json:"source"`
	Outputs []Output `json:"outputs"`
}

// UnmarshalJSON reads typed fields of known block types only. Any other value,
// objects of unknown type and non-objects alike, becomes generic block.
func (b *Block) UnmarshalJSON(data []byte) error {
	raw := append(json.RawMessage(nil), data...)

	var tag wireTag
	if err := json.Unmarshal(data, &tag); err != nil {
		*b = Block{Kind: KindGeneric, Raw: raw}
		return nil
	}
	var typ string
	_ = json.Unmarshal(tag.Type, &typ)

	*b = Block{Type: typ, Origin: lenientOrigin(tag.Origin), Raw: raw}
	switch typ {
	case TypeTextBox:
		b.Kind = KindText
	case TypeMarkdown:
		b.Kind = KindMarkdown
	case TypeCode:
		b.Kind = KindCode
	default:
		b.Kind = KindGeneric
		return nil
	}

	var w wireFields
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Content, b.Source, b.Outputs = string(w.Content), string(w.Source), w.Outputs
	return nil
}

// lenientOrigin ignores provenance it cannot read.
func lenientOrigin(data json.RawMessage) *Origin {
	if len(data) == 0 {
		return nil
	}
	var o Origin
	if err := json.Unmarshal(data, &o); err != nil || o.IsZero() {
		return nil
	}
	return &o
}

func (b Block) MarshalJSON() ([]byte, error) {
	if b.Kind == KindGeneric && len(b.Raw) > 0 {
		return b.Raw, nil
	}
	return json.Marshal(wireBlock{
		Type:    b.Kind.String(),
		Content: Text(b.Content),
		Source:  Text(b.Source),
		Outputs: b.Outputs,
		Origin:  b.Origin,
	})
}

// Text returns textual source of the block: markup for text boxes, source
// for notebook cells, string coercion for everything else.
func (b Block) Text() string {
	switch b.Kind {
	case KindText:
		return b.Content
	case KindMarkdown, KindCode:
		return b.Source
	default:
		return b.String()
	}
}

// String coerces block to text. Generic blocks are shown as compact JSON of
// their original value.
func (b Block) String() string {
	if len(b.Raw) > 0 {
		buf := new(bytes.Buffer)
		if err := json.Compact(buf, b.Raw); err == nil {
			return buf.String()
		}
		return string(b.Raw)
	}
	data, err := json.Marshal(b)
	if err != nil {
		return b.Type
	}
	return string(data)
}

// Metadata describes report and its project. PDFStyle tunes paged output.
type Metadata struct {
	ProjectID   string    `json:"projectId,omitempty"`
	ProjectName string    `json:"projectName,omitempty"`
	ReportID    string    `json:"reportId,omitempty"`
	Author      string    `json:"author,omitempty"`
	DataSources []string  `json:"dataSources,omitempty"`
	PDFStyle    *PDFStyle `json:"pdfStyle,omitempty"`
}

// Request is immutable input of a single export.
type Request struct {
	Title        string
	Content      []Block
	Metadata     *Metadata
	TemplatePath string
	Format       common.Format
}

// Meta never returns nil.
func (r *Request) Meta() *Metadata {
	if r.Metadata == nil {
		return &Metadata{}
	}
	return r.Metadata
}

// Style returns layout style derived from request metadata.
func (r *Request) Style() Style {
	return r.Meta().PDFStyle.Style()
}
